package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// canonicalSHA256 hashes a value over its canonical JSON form. Struct field
// order is stable under encoding/json, so the digest is deterministic for a
// given value.
func canonicalSHA256(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
