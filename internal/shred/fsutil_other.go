//go:build !linux && !darwin

package shred

import "os"

// openNoFollow approximates O_NOFOLLOW with an Lstat check. The check
// is not atomic against a concurrent replace, which the unix builds
// close properly.
func openNoFollow(path string, flag int) (*os.File, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, ErrSymlinkRefused
	}
	return os.OpenFile(path, flag, 0)
}

func clearImmutableFlags(path string) error {
	return nil
}

func syncToMedia(f *os.File) error {
	return f.Sync()
}

func dropCache(f *os.File) {}
