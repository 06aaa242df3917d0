// Package keysum computes the content addresses used as keys across the
// catalog: a weak, deterministic keysum over a small metadata tuple, and
// full-content cryptographic checksums.
package keysum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"time"
)

// delimiter joins keysum parts so that ("ab", "c") and ("a", "bc")
// hash differently.
const delimiter = "|"

// Keysum reduces an ordered tuple of strings to a short base-36 digest.
// It is a pure function of its inputs: two files that share every part
// (typically filename and size) collide by design. It is a join/index
// key, not an integrity check.
func Keysum(parts ...string) string {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			io.WriteString(h, delimiter)
		}
		io.WriteString(h, p)
	}
	return strconv.FormatUint(h.Sum64(), 36)
}

// ForFile computes the keysum of a (filename, size) pair, the tuple used
// for both archives and container members.
func ForFile(filename string, size int64) string {
	return Keysum(filename, strconv.FormatInt(size, 10))
}

// ChecksumResult holds the full-content digests of one stream, plus how
// long the pass took so the indexer can aggregate run statistics.
type ChecksumResult struct {
	MD5      string // hex
	SHA      string // hex SHA-1
	Size     int64
	Duration time.Duration
}

// Checksums streams r through MD5 and SHA-1 in a single pass.
// The reader is consumed exactly once.
func Checksums(r io.Reader) (*ChecksumResult, error) {
	start := time.Now()

	md5h := md5.New()
	shah := sha1.New()

	n, err := io.Copy(io.MultiWriter(md5h, shah), r)
	if err != nil {
		return nil, fmt.Errorf("reading content for checksums: %w", err)
	}

	return &ChecksumResult{
		MD5:      hex.EncodeToString(md5h.Sum(nil)),
		SHA:      hex.EncodeToString(shah.Sum(nil)),
		Size:     n,
		Duration: time.Since(start),
	}, nil
}
