// Package nonnative re-encodes elements of BN254's scalar field into elements
// of a foreign prime field.
//
// The signature scheme hashes with a permutation that is native to the curve's
// base field, while the values it needs (challenges, exponents) live in the
// curve's scalar field. Reencode bridges the two: it reads the canonical
// little-endian bit decomposition of the source element and reduces successive
// chunks of it into the target field.
package nonnative

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Margin is the default number of extra bits read per chunk before reduction.
//
// Reducing a uniform (w+k)-bit integer modulo q spreads the 2^(w+k) preimages
// over the q residues, so each residue's probability deviates from 1/q by less
// than 2^-(w+k), and the statistical distance from uniform on [0,q) is at most
// q/2^(w+k+2). Since every width w satisfies q < 2^(w+1), the distance is
// bounded by 2^-(k+1) per chunk. With k = 2 that bound is 2^-3: small, and
// matching the behavior other implementations of the scheme reproduce, but not
// cryptographically negligible. Callers needing a tighter bound should use
// ReencodeWithMargin with a larger k.
const Margin = 2

// Reencode partitions the little-endian bits of e into len(widths) successive
// chunks and reduces each modulo the given modulus, producing one target field
// element per requested width. It is shorthand for ReencodeWithMargin with the
// default Margin.
func Reencode(e *fr.Element, widths []uint, modulus *big.Int) []big.Int {
	return ReencodeWithMargin(e, widths, modulus, Margin)
}

// ReencodeWithMargin is Reencode with an explicit margin: chunk i reads
// widths[i]+margin bits starting at the running offset, but the offset only
// advances by widths[i], so the margin bits overlap the start of the next
// chunk.
//
// Each width must be at most modulus.BitLen()-1 so the chunk fits the target
// field's capacity, and the chunks must not run past the bit-length of the
// source field; both are configuration errors and panic.
func ReencodeWithMargin(e *fr.Element, widths []uint, modulus *big.Int, margin uint) []big.Int {
	if len(widths) == 0 {
		return nil
	}

	capacity := uint(modulus.BitLen() - 1)
	window := bitWindow(e)

	res := make([]big.Int, len(widths))
	offset := uint(0)
	var chunk big.Int
	for i, w := range widths {
		if w > capacity {
			panic(fmt.Sprintf("nonnative: chunk width %d exceeds target field capacity %d", w, capacity))
		}
		if offset+w+margin > fr.Bits {
			panic(fmt.Sprintf("nonnative: chunk [%d, %d) runs past the %d-bit source element", offset, offset+w+margin, fr.Bits))
		}
		chunk.SetUint64(0)
		for j := uint(0); j < w+margin; j++ {
			if window.Test(offset + j) {
				chunk.SetBit(&chunk, int(j), 1)
			}
		}
		res[i].Mod(&chunk, modulus)
		offset += w
	}

	return res
}

// bitWindow returns the canonical (non Montgomery) value of e as a
// little-endian bit set.
func bitWindow(e *fr.Element) *bitset.BitSet {
	b := e.Bytes() // big-endian regular form
	words := make([]uint64, fr.Limbs)
	for i := range words {
		words[i] = binary.BigEndian.Uint64(b[fr.Bytes-8*(i+1) : fr.Bytes-8*i])
	}
	return bitset.From(words)
}
