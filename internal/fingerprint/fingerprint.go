package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// New hashes the normalized (title, description, location) triple into a
// stable content-addressed key. Fields are length-prefixed before hashing
// so ("ab","c") and ("a","bc") cannot collide.
func New(title, description, location string) string {
	h := sha256.New()
	for _, field := range []string{title, description, location} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
