// Package random provides seedable shuffling for game setup.
//
// Engines take a *rand.Rand so tests can fix the seed and replay the same
// deck or token order.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// New returns a generator for seed. A zero seed draws one from crypto/rand.
func New(seed uint64) (*rand.Rand, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), nil
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](r *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Sample picks n distinct items without replacement.
func Sample[T any](r *rand.Rand, items []T, n int) ([]T, error) {
	if n > len(items) {
		return nil, fmt.Errorf("sample %d from %d items", n, len(items))
	}
	return Shuffled(r, items)[:n], nil
}

// Pick returns one item chosen uniformly.
func Pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}
