package testutil

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
)

// MD5Hex returns the MD5 checksum of data as a lowercase hex string.
func MD5Hex(data []byte) string {
	h := md5.Sum(data)
	return hex.EncodeToString(h[:])
}

// SHA1Hex returns the SHA-1 checksum of data as a lowercase hex string.
func SHA1Hex(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}
