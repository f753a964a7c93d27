//go:build !windows

package shred

import (
	"os"
	"syscall"
)

// hardLinkCount returns the number of directory entries referencing the
// file's data blocks.
func hardLinkCount(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Nlink)
	}
	return 1
}
