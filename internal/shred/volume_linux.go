package shred

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/moby/sys/mountinfo"
)

// Filesystem types backed by a remote server. Overwriting through these
// gives no guarantee about what the server does with the old blocks.
var networkFSTypes = map[string]bool{
	"nfs":        true,
	"nfs4":       true,
	"cifs":       true,
	"smbfs":      true,
	"smb3":       true,
	"sshfs":      true,
	"fuse.sshfs": true,
	"9p":         true,
	"ceph":       true,
	"afs":        true,
	"glusterfs":  true,
	"davfs":      true,
	"fuse.davfs": true,
	"ncpfs":      true,
}

// lookupVolume resolves the mount backing path via /proc/self/mountinfo,
// matching the longest mount point prefix.
func lookupVolume(path string) (VolumeInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("failed to get absolute path: %w", err)
	}

	mounts, err := mountinfo.GetMounts(nil)
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("failed to get mount info: %w", err)
	}

	// Find the longest matching mount point
	var longest string
	var fstype string
	for _, m := range mounts {
		if strings.HasPrefix(absPath, m.Mountpoint) {
			if len(m.Mountpoint) > len(longest) {
				longest = m.Mountpoint
				fstype = m.FSType
			}
		}
	}

	if longest == "" {
		// If no mount point matched, the path must be on the root filesystem
		longest = "/"
		fstype = "unknown"
	}

	return VolumeInfo{
		FSType:     fstype,
		MountPoint: longest,
		IsNetwork:  isNetworkFSType(fstype),
		// Desktop automounters place removable media under /media or
		// /run/media; there is no cheaper portable signal.
		IsRemovable: strings.HasPrefix(longest, "/media/") ||
			strings.HasPrefix(longest, "/run/media/"),
	}, nil
}

func isNetworkFSType(fstype string) bool {
	if networkFSTypes[strings.ToLower(fstype)] {
		return true
	}
	// fuse network filesystems report as "fuse.<helper>"
	return strings.HasPrefix(fstype, "fuse.nfs") || strings.HasPrefix(fstype, "fuse.smb")
}
