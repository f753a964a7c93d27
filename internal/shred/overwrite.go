package shred

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"hash"
	"io"
	"log/slog"
	"os"
)

// Eraser destroys the recoverable contents of a single file. Erasers
// never remove the directory entry; that is SecureUnlink's job.
type Eraser interface {
	Erase(ctx context.Context, file DiscoveredFile, opts EraseOptions) error
}

// EraseOptions carries the per-file erasure settings.
type EraseOptions struct {
	// Passes is the number of overwrite passes
	Passes int

	// ChunkSize is the I/O block size in bytes
	ChunkSize int

	// Verify enables post-write verification
	Verify bool

	// Progress receives the file-local completion fraction in [0, 1].
	// Invoked at every chunk boundary; must not block.
	Progress func(fraction float64)
}

func (o EraseOptions) progress(frac float64) {
	if o.Progress != nil {
		o.Progress(frac)
	}
}

// OverwriteEraser destroys contents by writing the pattern sequence
// over the file's existing data blocks in place. Only effective on
// filesystems that reuse blocks on write.
type OverwriteEraser struct{}

// Erase overwrites the file with the pattern sequence for opts.Passes,
// flushing to media after every pass. When verification is on, the
// final pass is read back and checked: byte-for-byte against the
// expected constant, or by hash comparison for a random pass.
func (OverwriteEraser) Erase(ctx context.Context, file DiscoveredFile, opts EraseOptions) error {
	if file.Size == 0 {
		opts.progress(1)
		return nil
	}

	if err := clearImmutableFlags(file.Path); err != nil {
		// system-protected flags need privileges we may not have
		slog.Debug("could not clear immutability flags", "path", file.Path, "error", err)
	}

	f, err := openNoFollow(file.Path, os.O_RDWR)
	if err != nil {
		return NewShredError("open", file.Path, err)
	}
	defer f.Close()
	dropCache(f)

	patterns := PassPatterns(opts.Passes)
	total := len(patterns)

	buf := make([]byte, opts.ChunkSize)
	defer zeroBytes(buf)

	var writeSum hash.Hash
	for i, pat := range patterns {
		final := i == total-1
		if final && pat == PatternRandom && opts.Verify {
			writeSum = sha256.New()
		}

		passProgress := func(passFrac float64) {
			opts.progress((float64(i) + passFrac) / float64(total))
		}
		if err := writePass(ctx, f, file, pat, buf, writeSum, passProgress); err != nil {
			return err
		}
		if err := syncToMedia(f); err != nil {
			return NewShredError("sync", file.Path, err)
		}
	}

	if opts.Verify {
		return verifyFinal(f, file, patterns[total-1], buf, writeSum)
	}
	return nil
}

// writePass streams one full pattern pass over the file, accumulating
// the written bytes into sum when one is supplied. Cancellation is
// checked at every chunk boundary.
func writePass(ctx context.Context, f *os.File, file DiscoveredFile, pat Pattern, buf []byte, sum hash.Hash, progress func(float64)) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return NewShredError("seek", file.Path, err)
	}

	var written int64
	for written < file.Size {
		if ctx.Err() != nil {
			return ErrCancelled
		}

		n := int64(len(buf))
		if rem := file.Size - written; rem < n {
			n = rem
		}
		b := buf[:n]
		if err := fillPattern(b, pat); err != nil {
			return NewShredError("fill", file.Path, err)
		}

		nw, err := f.Write(b)
		if err != nil {
			return NewShredError("write", file.Path, err)
		}
		if int64(nw) != n {
			return NewShredError("write", file.Path, ErrShortWrite)
		}
		if sum != nil {
			sum.Write(b)
		}

		written += int64(nw)
		if progress != nil {
			progress(float64(written) / float64(file.Size))
		}
	}
	return nil
}

// verifyFinal re-reads the file and checks it against the final pass.
func verifyFinal(f *os.File, file DiscoveredFile, pat Pattern, buf []byte, writeSum hash.Hash) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return NewShredError("seek", file.Path, err)
	}

	switch pat {
	case PatternZeros:
		return verifyConstant(f, file, buf, 0x00)
	case PatternOnes:
		return verifyConstant(f, file, buf, 0xFF)
	case PatternRandom:
		if writeSum == nil {
			return NewShredError("verify", file.Path, errors.New("no write hash captured"))
		}
		readSum := sha256.New()
		if err := readChunks(f, file, buf, func(b []byte) error {
			readSum.Write(b)
			return nil
		}); err != nil {
			return err
		}
		if !bytes.Equal(readSum.Sum(nil), writeSum.Sum(nil)) {
			return NewShredError("verify", file.Path, ErrVerificationFailed)
		}
		return nil
	}
	return nil
}

func verifyConstant(f *os.File, file DiscoveredFile, buf []byte, want byte) error {
	return readChunks(f, file, buf, func(b []byte) error {
		for _, got := range b {
			if got != want {
				return NewShredError("verify", file.Path, ErrVerificationFailed)
			}
		}
		return nil
	})
}

func readChunks(f *os.File, file DiscoveredFile, buf []byte, fn func([]byte) error) error {
	var read int64
	for read < file.Size {
		n := int64(len(buf))
		if rem := file.Size - read; rem < n {
			n = rem
		}
		if _, err := io.ReadFull(f, buf[:n]); err != nil {
			return NewShredError("verify", file.Path, err)
		}
		if err := fn(buf[:n]); err != nil {
			return err
		}
		read += n
	}
	return nil
}
