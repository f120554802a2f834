package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// RandomHex returns Size random bytes hex encoded (16 when Size is zero).
type RandomHex struct {
	Size int
}

func (g RandomHex) New() string {
	size := g.Size
	if size <= 0 {
		size = 16
	}
	buf := make([]byte, size)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
