package shred

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lookupVolume resolves the mount backing path via statfs. Locality
// comes from the MNT_LOCAL flag, which is independent of the type
// string: an apfs type with MNT_LOCAL unset is still a network share.
func lookupVolume(path string) (VolumeInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("failed to get absolute path: %w", err)
	}

	var st unix.Statfs_t
	if err := unix.Statfs(absPath, &st); err != nil {
		return VolumeInfo{}, fmt.Errorf("statfs %s: %w", absPath, err)
	}

	return VolumeInfo{
		FSType:      nulTerminated(st.Fstypename[:]),
		MountPoint:  nulTerminated(st.Mntonname[:]),
		IsNetwork:   st.Flags&unix.MNT_LOCAL == 0,
		IsRemovable: st.Flags&unix.MNT_REMOVABLE != 0,
	}, nil
}

// nulTerminated converts a NUL-terminated statfs name field
func nulTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
