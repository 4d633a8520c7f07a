// Package twistededwards describes the companion twisted Edwards curve used
// by the signature scheme, defined over the scalar field of BN254.
//
// Because the curve's base field is BN254's Fr, affine coordinates of its
// points are consumed natively as witnesses by a circuit defined over that
// field. The flip side is that the curve's own scalar field (integers modulo
// Order) is non-native relative to Fr: key scalars, nonces and challenges
// that must re-enter Fr go through the nonnative package.
package twistededwards

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	edbn254 "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	"github.com/consensys/eddsa-poseidon/logger"
)

// CurveParams curve parameters: ax^2 + y^2 = 1 + d*x^2*y^2
type CurveParams struct {
	A, D     fr.Element
	Cofactor uint64
	Order    big.Int // prime order of the subgroup generated by Base
	Base     edbn254.PointAffine
}

var curve CurveParams

// GetEdwardsCurve returns the twisted Edwards curve on BN254's Fr
func GetEdwardsCurve() CurveParams {

	// copy to keep Order private
	var res CurveParams

	res.A.Set(&curve.A)
	res.D.Set(&curve.D)
	res.Cofactor = curve.Cofactor
	res.Order.Set(&curve.Order)
	res.Base.Set(&curve.Base)

	return res
}

func init() {
	ed := edbn254.GetEdwardsCurve()
	curve.A.Set(&ed.A)
	curve.D.Set(&ed.D)
	curve.Order.Set(&ed.Order)
	curve.Base.Set(&ed.Base)

	// upstream stores the cofactor in raw (non Montgomery) form, so it is
	// restated here rather than converted
	curve.Cofactor = 8
}

// IsIdentity returns true if p is the neutral element (0,1)
func IsIdentity(p *edbn254.PointAffine) bool {
	return p.X.IsZero() && p.Y.IsOne()
}

// IsInSubGroup returns true if p is on the curve and in the subgroup of
// prime order c.Order
func (c *CurveParams) IsInSubGroup(p *edbn254.PointAffine) bool {
	if !p.IsOnCurve() {
		return false
	}
	var q edbn254.PointAffine
	q.ScalarMultiplication(p, &c.Order)
	return IsIdentity(&q)
}

// Validate checks the contract a twisted Edwards curve must satisfy to be
// usable by the signature scheme: nonzero distinct coefficients, a a square
// and d a non-square in the base field (so the unified addition law is
// complete), an odd prime subgroup order, a small power-of-two cofactor, and
// a base point generating the prime-order subgroup.
func (c *CurveParams) Validate() error {
	var err error
	switch {
	case c.A.IsZero() || c.D.IsZero():
		err = errors.New("coefficients a and d must be nonzero")
	case c.A.Equal(&c.D):
		err = errors.New("a == d gives a singular curve")
	case c.A.Legendre() != 1:
		err = errors.New("a must be a square in the base field")
	case c.D.Legendre() != -1:
		err = errors.New("d must be a non-square in the base field")
	case c.Cofactor == 0 || c.Cofactor&(c.Cofactor-1) != 0 || c.Cofactor > 8:
		err = errors.New("cofactor must be a small power of two")
	case c.Order.Bit(0) == 0 || !c.Order.ProbablyPrime(32):
		err = errors.New("subgroup order must be an odd prime")
	case !c.Base.IsOnCurve():
		err = errors.New("base point is not on the curve")
	case IsIdentity(&c.Base):
		err = errors.New("base point is the neutral element")
	case !c.IsInSubGroup(&c.Base):
		err = errors.New("base point is not in the prime-order subgroup")
	}
	if err != nil {
		log := logger.Logger()
		log.Err(err).Str("curve", "ed-on-bn254").Msg("curve parameter validation")
		return fmt.Errorf("invalid curve parameters: %w", err)
	}
	return nil
}
