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

package eddsa

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/eddsa-poseidon/twistededwards"
)

const (
	sizeFr = fr.Bytes

	// SizeSignature is the byte length of Signature.Bytes.
	SizeSignature = 3 * sizeFr

	// SizePublicKey is the byte length of PublicKey.Bytes.
	SizePublicKey = 2 * sizeFr
)

var (
	errWrongSize    = errors.New("wrong size buffer")
	errNonCanonical = errors.New("encoding is not in the canonical range")
	errNotOnCurve   = errors.New("point is not on the curve")
)

// Bytes returns the fixed-width binary form of sig: R.X || R.Y || S, each
// padded to sizeFr bytes, big-endian.
func (sig *Signature) Bytes() []byte {
	var res [SizeSignature]byte
	rx := sig.R.X.Bytes()
	ry := sig.R.Y.Bytes()
	copy(res[:sizeFr], rx[:])
	copy(res[sizeFr:2*sizeFr], ry[:])
	sig.S.FillBytes(res[2*sizeFr:])
	return res[:]
}

// SetBytes parses sig from the form produced by Bytes. It rejects buffers of
// the wrong length, non-canonical field encodings, an R off the curve and an
// S outside [0, Order).
func (sig *Signature) SetBytes(buf []byte) error {
	if len(buf) != SizeSignature {
		return errWrongSize
	}
	if err := setElementCanonical(&sig.R.X, buf[:sizeFr]); err != nil {
		return err
	}
	if err := setElementCanonical(&sig.R.Y, buf[sizeFr:2*sizeFr]); err != nil {
		return err
	}
	if !sig.R.IsOnCurve() {
		return errNotOnCurve
	}
	c := twistededwards.GetEdwardsCurve()
	sig.S.SetBytes(buf[2*sizeFr:])
	if sig.S.Cmp(&c.Order) >= 0 {
		return errNonCanonical
	}
	return nil
}

// Bytes returns the fixed-width binary form of pub: A.X || A.Y, each padded
// to sizeFr bytes, big-endian.
func (pub *PublicKey) Bytes() []byte {
	var res [SizePublicKey]byte
	ax := pub.A.X.Bytes()
	ay := pub.A.Y.Bytes()
	copy(res[:sizeFr], ax[:])
	copy(res[sizeFr:], ay[:])
	return res[:]
}

// SetBytes parses pub from the form produced by Bytes, rejecting
// non-canonical coordinates and points off the curve.
func (pub *PublicKey) SetBytes(buf []byte) error {
	if len(buf) != SizePublicKey {
		return errWrongSize
	}
	if err := setElementCanonical(&pub.A.X, buf[:sizeFr]); err != nil {
		return err
	}
	if err := setElementCanonical(&pub.A.Y, buf[sizeFr:]); err != nil {
		return err
	}
	if !pub.A.IsOnCurve() {
		return errNotOnCurve
	}
	return nil
}

// setElementCanonical sets z from a big-endian buffer, refusing values at or
// above the field modulus rather than reducing them.
func setElementCanonical(z *fr.Element, buf []byte) error {
	var v big.Int
	v.SetBytes(buf)
	if v.Cmp(fr.Modulus()) >= 0 {
		return errNonCanonical
	}
	z.SetBigInt(&v)
	return nil
}
