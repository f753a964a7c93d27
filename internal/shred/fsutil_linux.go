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

// clearImmutableFlags drops the immutable and append-only attributes so
// the file can be overwritten and removed. Callers treat failure as
// best effort: not every filesystem implements the flags ioctl.
func clearImmutableFlags(path string) error {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_NONBLOCK, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	attrs, err := unix.IoctlGetInt(fd, unix.FS_IOC_GETFLAGS)
	if err != nil {
		return err
	}

	cleared := attrs &^ (unix.FS_IMMUTABLE_FL | unix.FS_APPEND_FL)
	if cleared == attrs {
		return nil
	}
	return unix.IoctlSetPointerInt(fd, unix.FS_IOC_SETFLAGS, cleared)
}

// syncToMedia flushes the file all the way to the storage device. On
// Linux fsync includes the device write barrier.
func syncToMedia(f *os.File) error {
	return f.Sync()
}

// dropCache tells the kernel the written pages will not be reused, so
// pattern data does not crowd the page cache. Advisory only.
func dropCache(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
