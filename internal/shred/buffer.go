package shred

import "runtime"

// zeroBytes clears b before the buffer is released. The KeepAlive call
// keeps the stores observable so the compiler cannot treat them as dead
// and elide the clear; without it erasure data could linger in process
// memory after the buffer is garbage.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
