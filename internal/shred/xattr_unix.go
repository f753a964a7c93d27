//go:build linux || darwin

package shred

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// stripExtendedAttributes removes all extended attributes from path so
// no provenance or tagging metadata survives independently of the data
// blocks. Best effort per attribute: a single removal failure does not
// stop the others.
func stripExtendedAttributes(path string) {
	names, err := listExtendedAttributes(path)
	if err != nil {
		slog.Debug("failed to list extended attributes", "path", path, "error", err)
		return
	}

	for _, name := range names {
		if err := unix.Lremovexattr(path, name); err != nil {
			slog.Debug("failed to remove extended attribute", "path", path, "name", name, "error", err)
		}
	}
}

func listExtendedAttributes(path string) ([]string, error) {
	buf := make([]byte, 4096)
	for {
		n, err := unix.Llistxattr(path, buf)
		if err == unix.ERANGE {
			buf = make([]byte, len(buf)*2)
			continue
		}
		if err != nil {
			return nil, err
		}
		return splitXattrNames(buf[:n]), nil
	}
}

// splitXattrNames parses the NUL-separated name list returned by listxattr
func splitXattrNames(buf []byte) []string {
	var names []string
	start := 0
	for i, b := range buf {
		if b == 0 {
			if i > start {
				names = append(names, string(buf[start:i]))
			}
			start = i + 1
		}
	}
	return names
}
