package sampling

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// NewRNG builds the random source for one generation call. A non-nil seed
// yields a deterministic PCG stream; otherwise the stream is seeded from
// process entropy. The source is owned by the call, never shared, so
// concurrent generations with different seeds cannot disturb each other.
func NewRNG(seed *int64) *rand.Rand {
	if seed != nil {
		s := uint64(*seed)
		return rand.New(rand.NewPCG(s, s))
	}
	var buf [16]byte
	_, _ = crand.Read(buf[:])
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(buf[:8]),
		binary.LittleEndian.Uint64(buf[8:]),
	))
}
