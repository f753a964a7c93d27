package shred

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
)

// CryptoChunkOverhead is the fixed per-chunk growth of the sealed
// output: the nonce prefix plus the authentication tag.
const CryptoChunkOverhead = chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// CryptoEraser destroys contents by re-encrypting them with a freshly
// generated key that is discarded when the operation returns. Old data
// blocks retained by a copy-on-write filesystem then hold ciphertext
// whose key no longer exists; no decryption path remains.
type CryptoEraser struct{}

// Erase streams the file through XChaCha20-Poly1305 into a temporary
// file in the same directory, sealing each chunk under a fresh random
// nonce, then atomically renames the temp file over the original. The
// directory entry and identity survive, the data blocks are new
// ciphertext. The temp file is removed on every exit path; on success
// the rename consumes it.
func (CryptoEraser) Erase(ctx context.Context, file DiscoveredFile, opts EraseOptions) error {
	if file.Size == 0 {
		opts.progress(1)
		return nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return NewShredError("keygen", file.Path, err)
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return NewShredError("cipher", file.Path, err)
	}

	src, err := openNoFollow(file.Path, os.O_RDONLY)
	if err != nil {
		return NewShredError("open", file.Path, err)
	}
	defer src.Close()

	tmpPath := filepath.Join(filepath.Dir(file.Path), fmt.Sprintf(".scrub-%s.tmp", uuid.NewString()))
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return NewShredError("tempfile", tmpPath, err)
	}

	committed := false
	defer func() {
		tmp.Close()
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	buf := make([]byte, opts.ChunkSize)
	defer zeroBytes(buf)

	// sealed chunk layout: nonce || ciphertext || tag
	out := make([]byte, chacha20poly1305.NonceSizeX, opts.ChunkSize+CryptoChunkOverhead)

	var processed int64
	for {
		if ctx.Err() != nil {
			return ErrCancelled
		}

		n, err := src.Read(buf)
		if n > 0 {
			nonce := out[:chacha20poly1305.NonceSizeX]
			if _, err := rand.Read(nonce); err != nil {
				return NewShredError("nonce", file.Path, err)
			}
			sealed := aead.Seal(nonce, nonce, buf[:n], nil)
			if _, werr := tmp.Write(sealed); werr != nil {
				return NewShredError("write", tmpPath, werr)
			}
			processed += int64(n)
			if file.Size > 0 {
				opts.progress(float64(processed) / float64(file.Size))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return NewShredError("read", file.Path, err)
		}
	}

	if err := syncToMedia(tmp); err != nil {
		return NewShredError("sync", tmpPath, err)
	}

	if opts.Verify {
		st, err := tmp.Stat()
		if err != nil {
			return NewShredError("verify", tmpPath, err)
		}
		// ciphertext must be strictly larger than the plaintext
		if st.Size() <= 0 || st.Size() < processed {
			return NewShredError("verify", file.Path, ErrVerificationFailed)
		}
	}

	if err := clearImmutableFlags(file.Path); err != nil {
		slog.Debug("could not clear immutability flags", "path", file.Path, "error", err)
	}

	if err := tmp.Close(); err != nil {
		return NewShredError("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, file.Path); err != nil {
		return NewShredError("replace", file.Path, err)
	}
	committed = true

	return nil
}
