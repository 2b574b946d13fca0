// Package scatter selects which post-header samples carry payload bits.
//
// The selection is a pure function of the public salt stored in the header:
// seed = big-endian uint32 of SHA-256(salt || "scatter")[:4], an MT19937
// generator seeded with it shuffles [0, total) with a reverse Fisher-Yates
// pass, and the first count entries are used. The generator and the bounded
// draw are part of the container format.
package scatter

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Dharsan2024/AudioCryptor/models"
)

const domainTag = "scatter"

// Seed derives the 32-bit shuffle seed from the salt.
func Seed(salt []byte) uint32 {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(domainTag))
	return binary.BigEndian.Uint32(h.Sum(nil)[:4])
}

// GenerateIndices returns count distinct indices in [0, totalAvailable).
func GenerateIndices(count, totalAvailable int, salt []byte) ([]int, error) {
	if count < 0 || totalAvailable < 0 {
		return nil, fmt.Errorf("%w: count %d, total %d", models.ErrInvalidArgument, count, totalAvailable)
	}
	if count > totalAvailable {
		return nil, &models.CapacityError{Required: count, Available: totalAvailable}
	}

	if totalAvailable > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d samples exceed the scatter range", models.ErrInvalidArgument, totalAvailable)
	}

	perm := make([]int32, totalAvailable)
	for i := range perm {
		perm[i] = int32(i)
	}
	shuffle(perm, newMT19937(uint64(Seed(salt))))

	indices := make([]int, count)
	for i := range indices {
		indices[i] = int(perm[i])
	}
	return indices, nil
}

func shuffle(x []int32, rng *mt19937) {
	for i := len(x) - 1; i > 0; i-- {
		j := int(rng.Below(uint64(i + 1)))
		x[i], x[j] = x[j], x[i]
	}
}
