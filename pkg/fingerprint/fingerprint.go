package fingerprint

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Of returns a short hex digest of data, suitable for an ETag.
func Of(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// ETag wraps the digest of data in quotes as HTTP expects.
func ETag(data []byte) string {
	return `"` + Of(data) + `"`
}
