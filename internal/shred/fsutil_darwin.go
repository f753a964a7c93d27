package shred

import (
	"os"

	"golang.org/x/sys/unix"
)

// openNoFollow opens path with the given access mode, refusing to
// follow a symbolic link in the final component.
func openNoFollow(path string, flag int) (*os.File, error) {
	fd, err := unix.Open(path, flag|unix.O_NOFOLLOW, 0)
	if err != nil {
		if err == unix.ELOOP {
			return nil, ErrSymlinkRefused
		}
		if err == unix.EACCES {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// clearImmutableFlags drops the user and system immutability flags so
// the file can be overwritten and removed. Clearing the system flags
// needs elevated privileges; callers treat failure as best effort.
func clearImmutableFlags(path string) error {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return err
	}

	cleared := st.Flags &^ uint32(unix.UF_IMMUTABLE|unix.UF_APPEND|unix.SF_IMMUTABLE|unix.SF_APPEND)
	if cleared == st.Flags {
		return nil
	}
	return unix.Chflags(path, int(cleared))
}

// syncToMedia flushes the file all the way to the storage device.
// Plain fsync on darwin stops at the OS cache; F_FULLFSYNC asks the
// drive to flush its own cache as well. Falls back to fsync on
// filesystems that do not support it.
func syncToMedia(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err != nil {
		return f.Sync()
	}
	return nil
}

// dropCache disables write-back caching for the descriptor so pattern
// data does not crowd the unified buffer cache. Advisory only.
func dropCache(f *os.File) {
	_, _ = unix.FcntlInt(f.Fd(), unix.F_NOCACHE, 1)
}
