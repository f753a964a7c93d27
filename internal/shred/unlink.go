package shred

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// UnlinkOnlyEraser performs no content destruction. It is selected for
// network volumes, where the server decides what happens to old blocks
// and no overwrite guarantee is possible. The file's strategy in the
// result is how callers learn that only removal happened.
type UnlinkOnlyEraser struct{}

// Erase is a no-op; the orchestrator's secure unlink removes the entry.
func (UnlinkOnlyEraser) Erase(ctx context.Context, file DiscoveredFile, opts EraseOptions) error {
	opts.progress(1)
	return nil
}

// SecureUnlink removes the directory entry of an already-erased (or
// erasure-exempt) file. Immutability flags are cleared and extended
// attributes stripped first, both best effort, so no sidecar metadata
// outlives the data blocks. The removal is direct and non-recoverable,
// never a move to any trash.
func SecureUnlink(path string) error {
	if err := clearImmutableFlags(path); err != nil {
		slog.Debug("could not clear immutability flags", "path", path, "error", err)
	}

	stripExtendedAttributes(path)

	if err := os.Remove(path); err != nil {
		if os.IsPermission(err) {
			return NewShredError("remove", path, ErrPermissionDenied)
		}
		if os.IsNotExist(err) {
			return NewShredError("remove", path, ErrNotFound)
		}
		return NewShredError("remove", path, err)
	}
	return nil
}

// RemoveEmptyDirs prunes root and any now-empty directories under it,
// deepest first. Cleanup only, not part of the erasure guarantee:
// failures (non-empty directories included) are swallowed.
func RemoveEmptyDirs(root string) {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Type()&os.ModeSymlink == 0 {
			dirs = append(dirs, path)
		}
		return nil
	})

	// deepest paths first so parents empty out before their own removal
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	for _, dir := range dirs {
		if err := os.Remove(dir); err == nil {
			slog.Debug("removed empty directory", "path", dir)
		}
	}
}
