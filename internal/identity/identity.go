// Package identity computes stable content identities for files.
// The SHA-256 digest of a file's bytes is the deduplication key for the
// whole library: equal digests mean byte-identical content, regardless of
// the file's name or location.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashChunkSize is the read buffer used when streaming file contents.
// Files are never loaded into memory whole.
const hashChunkSize = 64 * 1024

// HashFile computes the SHA-256 digest of the file at path and returns it
// as a lowercase hex string. The file is streamed in fixed-size chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashString computes the SHA-256 digest of a string as lowercase hex.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first n hex characters of a digest, used for
// canonical file names. Digests shorter than n are returned unchanged.
func ShortHash(digest string, n int) string {
	if len(digest) <= n {
		return digest
	}
	return digest[:n]
}
