package shred

import "os"

// hardLinkCount is not derivable from FileInfo on Windows; report one
// link so no file is flagged spuriously.
func hardLinkCount(info os.FileInfo) uint64 {
	return 1
}
