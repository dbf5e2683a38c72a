// Package ident generates 64-bit composite identifiers without a central
// sequence: seconds since a fixed epoch shifted left, OR'd with random
// bits. IDs are roughly time-ordered; same-second collisions are possible
// but vanishingly rare and are absorbed by the storage uniqueness
// constraint.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const (
	// epochOffset is subtracted from the unix timestamp to keep the
	// time component small. 1994-01-02T12:00:00Z.
	epochOffset int64 = 757512000

	randomBits = 23
	randomMask = 1<<randomBits - 1
)

// New returns a fresh composite identifier for the current time.
func New() int64 {
	return At(time.Now())
}

// At returns a composite identifier for the given time.
func At(t time.Time) int64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	r := int64(binary.BigEndian.Uint64(buf[:])) & randomMask
	return (t.Unix()-epochOffset)<<randomBits | r
}

// Timestamp recovers the creation time embedded in an identifier.
func Timestamp(id int64) time.Time {
	return time.Unix(id>>randomBits+epochOffset, 0)
}
