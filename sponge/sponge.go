// Package sponge implements a field-level sponge over the Poseidon2
// permutation of BN254's scalar field, absorbing and squeezing field elements
// directly rather than bytes.
package sponge

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Config fixes the shape of the sponge: rate, capacity and the round numbers
// of the underlying permutation. It is immutable once built and safe to share
// across concurrent transcripts; per-call state lives in Transcript.
//
// The Poseidon2 permutation of BN254's scalar field only comes in widths 2
// and 3, so rate+capacity is limited to those.
type Config struct {
	rate     int
	capacity int
	perm     *poseidon2.Permutation
}

// NewConfig builds a sponge configuration of width rate+capacity over the
// Poseidon2 permutation with the given number of full and partial rounds.
// The width must be 2 or 3; anything else is a configuration error and
// panics.
func NewConfig(rate, capacity, nbFullRounds, nbPartialRounds int) *Config {
	if rate < 1 || capacity < 1 {
		panic("sponge: rate and capacity must be positive")
	}
	if w := rate + capacity; w != 2 && w != 3 {
		panic("sponge: the permutation only supports widths 2 and 3")
	}
	return &Config{
		rate:     rate,
		capacity: capacity,
		perm:     poseidon2.NewPermutation(rate+capacity, nbFullRounds, nbPartialRounds),
	}
}

// DefaultConfig returns the width-3 parameterization (rate 2, capacity 1,
// 8 full and 56 partial rounds) commonly used for BN254.
func DefaultConfig() *Config {
	return NewConfig(2, 1, 8, 56)
}

// Rate returns the number of elements absorbed between two permutations.
func (c *Config) Rate() int { return c.rate }

// Capacity returns the number of state elements never exposed to input.
func (c *Config) Capacity() int { return c.capacity }

// Transcript is the mutable absorb/squeeze state of one sponge invocation.
// It is not safe for concurrent use; build one per call.
type Transcript struct {
	cfg   *Config
	state []fr.Element
	pos   int // next free slot in the rate section
}

// NewTranscript starts a fresh transcript over c.
func (c *Config) NewTranscript() *Transcript {
	return &Transcript{
		cfg:   c,
		state: make([]fr.Element, c.rate+c.capacity),
	}
}

// Absorb adds the elements into the rate section of the state, running the
// permutation each time the section fills up.
func (t *Transcript) Absorb(elems ...fr.Element) {
	for i := range elems {
		if t.pos == t.cfg.rate {
			t.permute()
			t.pos = 0
		}
		slot := t.cfg.capacity + t.pos
		t.state[slot].Add(&t.state[slot], &elems[i])
		t.pos++
	}
}

// Squeeze runs the permutation over the pending state and returns the first
// element of the rate section.
func (t *Transcript) Squeeze() fr.Element {
	t.permute()
	t.pos = 0
	return t.state[t.cfg.capacity]
}

func (t *Transcript) permute() {
	// the permutation only errors when the buffer width does not match its
	// own, which NewTranscript rules out
	if err := t.cfg.perm.Permutation(t.state); err != nil {
		panic(err)
	}
}
