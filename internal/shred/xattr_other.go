//go:build !linux && !darwin

package shred

// stripExtendedAttributes is a no-op on platforms without an xattr API.
func stripExtendedAttributes(path string) {}
