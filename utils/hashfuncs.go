package utils

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// HashB calculates keccak256(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(b)
	return hasher.Sum(nil)
}

// WindowDraw returns a deterministic pseudo random value for the given seed
// and window, it is keccak256(seed || bigEndian(window)) truncated to its
// first eight bytes.
func WindowDraw(seed []byte, window uint64) uint64 {
	buf := make([]byte, len(seed)+8)
	copy(buf, seed)
	binary.BigEndian.PutUint64(buf[len(seed):], window)
	return binary.BigEndian.Uint64(HashB(buf)[:8])
}
