package shred

import (
	"log/slog"
	"strings"
)

// Filesystem families recognized by the classifier. Matching is a
// case-insensitive substring test against the raw type string, so
// "ext4", "ext3" and "fuseblk.ext4" all land in the ext family.
var (
	// copy-on-write filesystems: an in-place write allocates new blocks,
	// so only crypto-shredding destroys the old ones
	cowFSTypes = []string{"apfs", "zfs", "btrfs"}

	// traditional filesystems that overwrite data blocks in place
	traditionalFSTypes = []string{"hfs", "exfat", "fat", "ntfs", "ext"}
)

// Classifier resolves the volume backing a path. The orchestrator uses
// ClassifyPath by default; tests substitute their own.
type Classifier func(path string) VolumeInfo

// ClassifyPath returns the VolumeInfo for the volume backing path.
// There is no error path: an unresolvable volume classifies as
// unknown/local/non-removable, which maps to the conservative
// Overwrite strategy.
func ClassifyPath(path string) VolumeInfo {
	v, err := lookupVolume(path)
	if err != nil {
		slog.Debug("volume lookup failed, defaulting to unknown/local", "path", path, "error", err)
		return VolumeInfo{FSType: "unknown", MountPoint: "/"}
	}
	return v
}

// StrategyFor maps a volume to its erasure strategy. Pure and total:
// network volumes get UnlinkOnly regardless of type, local
// copy-on-write types get Crypto, and everything else, including
// unrecognized local types, gets Overwrite.
func StrategyFor(v VolumeInfo) Strategy {
	if v.IsNetwork {
		return StrategyUnlinkOnly
	}
	if matchesFSFamily(v.FSType, cowFSTypes) {
		return StrategyCrypto
	}
	return StrategyOverwrite
}

func matchesFSFamily(fstype string, family []string) bool {
	fstype = strings.ToLower(fstype)
	for _, t := range family {
		if strings.Contains(fstype, t) {
			return true
		}
	}
	return false
}
