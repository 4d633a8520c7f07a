/*
Copyright © 2020 ConsenSys

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package eddsa implements an EdDSA signature scheme over the twisted Edwards
// companion curve of BN254, hashing the challenge with an algebraic sponge so
// that verification is cheap to express as constraints over BN254's scalar
// field. Messages are single elements of that field.
//
// cf https://en.wikipedia.org/wiki/EdDSA for notation
package eddsa

import (
	"errors"
	"hash"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	edbn254 "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"golang.org/x/crypto/blake2b"

	"github.com/consensys/eddsa-poseidon/nonnative"
	"github.com/consensys/eddsa-poseidon/sponge"
	"github.com/consensys/eddsa-poseidon/twistededwards"
)

var (
	// ErrVerify is returned when a signature does not check out against the
	// public key and message; it is the only error a verifier should expect
	// in normal operation.
	ErrVerify = errors.New("signature verification failed")

	// ErrBadDigestOutput is returned by key generation when the configured
	// digest is too short to cover the subgroup order; this is a static
	// configuration error, checked once, never retried.
	ErrBadDigestOutput = errors.New("digest output is shorter than the subgroup order")
)

// PublicKey is the signer's verifying key A = scalar*Base.
type PublicKey struct {
	A edbn254.PointAffine
}

// Signature is the wire-level output of Sign.
type Signature struct {
	R edbn254.PointAffine
	S big.Int // reduced mod the subgroup order
}

// SigningKey owns the secret scalar and the seed it was derived from, along
// with the digest the key was generated with, so that nonce derivation always
// matches key derivation. It is immutable after GenerateKey.
type SigningKey struct {
	seed   []byte
	scalar big.Int
	hNew   func() hash.Hash
}

// GenerateKey draws a seed covering the subgroup order's bit-length from rand
// and derives the secret scalar as hNew()(seed) reduced mod the order. The
// digest constructor is recorded on the key. Returns ErrBadDigestOutput when
// the digest output is too short to reduce safely.
func GenerateKey(rand io.Reader, hNew func() hash.Hash) (*SigningKey, error) {
	c := twistededwards.GetEdwardsCurve()

	if hNew().Size()*8 < c.Order.BitLen() {
		return nil, ErrBadDigestOutput
	}

	seed := make([]byte, (c.Order.BitLen()+7)/8)
	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, err
	}

	sk := &SigningKey{seed: seed, hNew: hNew}
	h := hNew()
	h.Write(seed)
	reduceLE(&sk.scalar, h.Sum(nil), &c.Order)

	return sk, nil
}

// GenerateKeyBlake2b is GenerateKey with blake2b-512 as the key and nonce
// derivation digest.
func GenerateKeyBlake2b(rand io.Reader) (*SigningKey, error) {
	return GenerateKey(rand, func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	})
}

// Public computes the verifying key scalar*Base. It is pure; callers wanting
// memoization do it on their side.
func (sk *SigningKey) Public() PublicKey {
	c := twistededwards.GetEdwardsCurve()
	var pub PublicKey
	pub.A.ScalarMultiplication(&c.Base, &sk.scalar)
	return pub
}

// Sign produces a deterministic signature on message.
//
// The nonce is derived from the recorded digest over the secret scalar bytes
// followed by the message bytes (the concatenation order separates this
// transcript from key derivation), the challenge from a sponge transcript over
// (R, A, message) re-encoded into the scalar field.
func (sk *SigningKey) Sign(conf *sponge.Config, message fr.Element) Signature {
	c := twistededwards.GetEdwardsCurve()

	h := sk.hNew()
	var buf [fr.Bytes]byte
	sk.scalar.FillBytes(buf[:])
	h.Write(buf[:])
	msgBytes := message.Bytes()
	h.Write(msgBytes[:])
	var r big.Int
	reduceLE(&r, h.Sum(nil), &c.Order)

	var sig Signature
	sig.R.ScalarMultiplication(&c.Base, &r)

	pub := sk.Public()
	hram := challenge(conf, &sig.R, &pub.A, &message, &c.Order)

	// S = r + hram*scalar mod the subgroup order
	sig.S.Mul(hram, &sk.scalar).
		Add(&sig.S, &r).
		Mod(&sig.S, &c.Order)

	return sig
}

// Verify checks sig against pub and message: it recomputes the challenge the
// way Sign does and accepts iff S*Base == R + challenge*A under affine
// equality. It never panics on well-typed input; degenerate points or scalars
// simply fail the equality check.
func Verify(pub PublicKey, conf *sponge.Config, message fr.Element, sig Signature) error {
	c := twistededwards.GetEdwardsCurve()

	if !sig.R.IsOnCurve() || !pub.A.IsOnCurve() {
		return ErrVerify
	}
	// reject non-canonical scalars, else S+Order would also pass
	if sig.S.Sign() < 0 || sig.S.Cmp(&c.Order) >= 0 {
		return ErrVerify
	}

	hram := challenge(conf, &sig.R, &pub.A, &message, &c.Order)

	var lhs, rhs edbn254.PointAffine
	lhs.ScalarMultiplication(&c.Base, &sig.S)
	rhs.ScalarMultiplication(&pub.A, hram).
		Add(&rhs, &sig.R)

	if !lhs.Equal(&rhs) {
		return ErrVerify
	}
	return nil
}

// challenge absorbs (R, A, message) into a fresh sponge transcript and
// squeezes one element of the curve's base field, then re-encodes it into the
// scalar field as a single chunk of Order.BitLen()-1 bits.
func challenge(conf *sponge.Config, r, a *edbn254.PointAffine, message *fr.Element, order *big.Int) *big.Int {
	t := conf.NewTranscript()
	t.Absorb(r.X, r.Y, a.X, a.Y, *message)
	e := t.Squeeze()
	out := nonnative.Reencode(&e, []uint{uint(order.BitLen() - 1)}, order)
	return &out[0]
}

// reduceLE sets z to the little-endian integer encoded by b, reduced mod n.
func reduceLE(z *big.Int, b []byte, n *big.Int) *big.Int {
	rev := make([]byte, len(b))
	for i := range b {
		rev[i] = b[len(b)-1-i]
	}
	z.SetBytes(rev)
	return z.Mod(z, n)
}
