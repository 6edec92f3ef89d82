package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is mixed into every derived key. Bump it when the cached
// value layout changes so old entries are never decoded.
const keyVersion = "v1"

// hashKey derives "prefix:<sha256>" from the JSON encoding of parts.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	h.Write([]byte(keyVersion))
	h.Write([]byte{0})
	// Encoding plain values and tagged structs cannot fail.
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Image content hashes use it so that
// identical uploads share cache entries whatever their file name.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
