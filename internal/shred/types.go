// Package shred provides the core erasure engine: filesystem
// classification, file discovery, the overwrite and crypto erasure
// backends, secure unlinking, and the orchestrator that drives a run.
package shred

import (
	"fmt"
	"time"
)

// Pattern identifies the fill pattern written during a single overwrite pass.
type Pattern int

const (
	// PatternZeros fills every byte with 0x00
	PatternZeros Pattern = iota

	// PatternOnes fills every byte with 0xFF
	PatternOnes

	// PatternRandom fills the buffer from a cryptographically secure source
	PatternRandom
)

func (p Pattern) String() string {
	switch p {
	case PatternZeros:
		return "zeros"
	case PatternOnes:
		return "ones"
	case PatternRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Strategy is the erasure method selected for a file based on its volume.
type Strategy int

const (
	// StrategyOverwrite performs an in-place multi-pass pattern overwrite.
	// Used on traditional local filesystems where a write reuses the
	// file's existing data blocks.
	StrategyOverwrite Strategy = iota

	// StrategyCrypto re-encrypts the contents with a throwaway key.
	// Used on copy-on-write filesystems where an in-place write would
	// allocate new blocks and leave the old ones intact.
	StrategyCrypto

	// StrategyUnlinkOnly removes the directory entry without touching
	// the contents. Used on network volumes where no overwrite
	// guarantee is possible; callers must surface this to the user.
	StrategyUnlinkOnly
)

func (s Strategy) String() string {
	switch s {
	case StrategyOverwrite:
		return "overwrite"
	case StrategyCrypto:
		return "crypto"
	case StrategyUnlinkOnly:
		return "unlink-only"
	default:
		return "unknown"
	}
}

// VolumeInfo describes the volume backing a path. It is derived on
// demand and never cached across runs.
type VolumeInfo struct {
	// FSType is the raw filesystem type string as reported by the OS
	// (e.g. "ext4", "btrfs", "apfs", "nfs4")
	FSType string

	// MountPoint is the root of the mount the path lives on
	MountPoint string

	// IsNetwork reports whether the volume is backed by a remote server
	IsNetwork bool

	// IsRemovable reports whether the volume lives on removable media
	IsRemovable bool
}

// DiscoveredFile is one regular file selected for erasure. Immutable
// once created by discovery.
type DiscoveredFile struct {
	// Path is the absolute path of the file
	Path string

	// Size is the file size in bytes at discovery time
	Size int64

	// Nlink is the hard-link count. A count above one means the data
	// blocks stay reachable through another directory entry after this
	// path is erased and removed.
	Nlink uint64
}

// Config holds the per-run erasure settings.
type Config struct {
	// Passes is the number of overwrite passes
	Passes int

	// ChunkSize is the I/O block size in bytes
	ChunkSize int

	// Verify enables post-write verification
	Verify bool
}

// Validate reports whether the configuration can start a run.
func (c Config) Validate() error {
	if c.Passes <= 0 {
		return fmt.Errorf("%w: passes must be positive, got %d", ErrInvalidConfig, c.Passes)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	return nil
}

// Progress is a one-way notification emitted while a run executes.
// Consumers must not block: a dropped update is acceptable, a stalled
// erasure loop is not.
type Progress struct {
	// Fraction is overall run progress in [0, 1]
	Fraction float64

	// Status is a short human-readable description of the current step
	Status string
}

// FileResult is the outcome for a single discovered file. Every
// discovered file that processing reached gets exactly one.
type FileResult struct {
	// Path is the absolute path of the file
	Path string

	// Strategy is the erasure method that was selected
	Strategy Strategy

	// Size is the file size in bytes at discovery time
	Size int64

	// Err is nil on success, or the per-file failure
	Err error
}

// Succeeded reports whether the file was erased and unlinked.
func (r FileResult) Succeeded() bool {
	return r.Err == nil
}

// Result aggregates a whole run. It is built incrementally by the
// orchestrator and never mutated after Run returns.
type Result struct {
	// FilesProcessed is the number of files that received an outcome
	FilesProcessed int

	// FilesSucceeded is the number of files erased and removed
	FilesSucceeded int

	// FilesFailed is the number of files with a recorded failure
	FilesFailed int

	// BytesShredded is the total size of succeeded files
	BytesShredded int64

	// Files holds the per-file outcomes in processing order
	Files []FileResult

	// HardLinkedFiles lists processed files whose hard-link count was
	// above one. Not failures, but their data may persist through the
	// other links.
	HardLinkedFiles []string

	// WasCancelled reports whether the run stopped at a cancellation point
	WasCancelled bool

	// Duration is the wall-clock time of the run
	Duration time.Duration
}

// OperationState is the mutable per-run state. It is owned exclusively
// by the orchestrator's worker for the lifetime of a run and must not
// be read concurrently; listeners observe the run through Progress
// notifications instead.
type OperationState struct {
	Fraction     float64
	CurrentIndex int
	CurrentFile  string
	Status       string
	Running      bool
}
