package shred

import "errors"

// Common errors returned by the erasure engine
var (
	// ErrInvalidConfig is returned when a run is started with a
	// non-positive pass count or chunk size
	ErrInvalidConfig = errors.New("invalid shred configuration")

	// ErrNotFound is returned when an input path does not exist
	ErrNotFound = errors.New("no such file or directory")

	// ErrPermissionDenied is returned when the OS denies an operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSymlinkRefused is returned when an erasure target turns out to
	// be a symbolic link at open time
	ErrSymlinkRefused = errors.New("refusing to follow symbolic link")

	// ErrShortWrite is returned when a write consumed fewer bytes than
	// requested without reporting an error
	ErrShortWrite = errors.New("short write")

	// ErrVerificationFailed is returned when read-back data does not
	// match what was written
	ErrVerificationFailed = errors.New("verification failed")

	// ErrCancelled is returned from an eraser when cancellation was
	// observed at a suspension point. The orchestrator treats it as the
	// run's stop signal, not as a per-file failure.
	ErrCancelled = errors.New("operation cancelled")
)

// ShredError wraps an error with the operation and path that caused it
type ShredError struct {
	// Op is the operation that failed (e.g. "open", "write", "verify")
	Op string

	// Path is the file that caused the error
	Path string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *ShredError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ShredError) Unwrap() error {
	return e.Err
}

// NewShredError creates a new ShredError
func NewShredError(op, path string, err error) error {
	return &ShredError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPermissionDenied returns true if the error is ErrPermissionDenied
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsSymlinkRefused returns true if the error is ErrSymlinkRefused
func IsSymlinkRefused(err error) bool {
	return errors.Is(err, ErrSymlinkRefused)
}

// IsVerificationFailed returns true if the error is ErrVerificationFailed
func IsVerificationFailed(err error) bool {
	return errors.Is(err, ErrVerificationFailed)
}

// IsCancelled returns true if the error is ErrCancelled
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
