package util

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// HashingReader counts and sha256-hashes everything read through it.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

// Size returns the number of bytes read so far.
func (hr *HashingReader) Size() int64 {
	return hr.n
}

// Sum returns the hex sha256 of the bytes read so far.
func (hr *HashingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}
