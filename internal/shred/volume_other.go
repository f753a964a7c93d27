//go:build !linux && !darwin

package shred

import "errors"

// lookupVolume has no implementation on this platform. ClassifyPath
// turns the error into the unknown/local default, which maps to the
// conservative Overwrite strategy.
func lookupVolume(path string) (VolumeInfo, error) {
	return VolumeInfo{}, errors.New("volume lookup not supported on this platform")
}
