// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Fixed-point scaling constants. The source drafts spell these as floating
// point literals (0.0, 1e18, 1e36, 1e13); there are no floating-point
// operations anywhere in this package, so they are exact integer constants
// here.
var (
	scale18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	scale36 = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// checkWidth faults if v does not fit in an unsigned 256-bit word. Every
// intermediate the rate kernel produces is expected to fit given the input
// invariants; this is the enforcement point.
func checkWidth(op string, v *big.Int) error {
	if v.Sign() < 0 {
		return newFault(FaultArithmetic, op, ErrNegativeConversion)
	}
	if v.Cmp(maxUint256) > 0 {
		return newFault(FaultArithmetic, op, ErrOverflow)
	}
	return nil
}

// CheckedAdd returns a+b, faulting if the result overflows 256 bits.
func CheckedAdd(op string, a, b *big.Int) (*big.Int, error) {
	r := new(big.Int).Add(a, b)
	if err := checkWidth(op, r); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckedSub returns a-b for unsigned operands, faulting on underflow.
func CheckedSub(op string, a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, newFault(FaultArithmetic, op, ErrOverflow)
	}
	return new(big.Int).Sub(a, b), nil
}

// CheckedMul returns a*b, faulting if the result overflows 256 bits.
func CheckedMul(op string, a, b *big.Int) (*big.Int, error) {
	r := new(big.Int).Mul(a, b)
	if err := checkWidth(op, r); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckedDiv performs floor division, faulting on division by zero. Both
// operands are assumed non-negative; big.Int's Div/Mod pair is Euclidean,
// which coincides with floor division for non-negative operands.
func CheckedDiv(op string, a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, newFault(FaultArithmetic, op, ErrDivisionByZero)
	}
	return new(big.Int).Div(a, b), nil
}

// SignedAdd adds a signed delta to an otherwise-unsigned value with no width
// fence; the result may be negative and must be re-validated with
// ToUnsigned before it is used as a magnitude.
func SignedAdd(a, delta *big.Int) *big.Int {
	return new(big.Int).Add(a, delta)
}

// ToUnsigned asserts v is non-negative, faulting otherwise. It is the
// conversion point every signed delta must cross before re-entering
// unsigned arithmetic; a negative value here is always a fatal fault.
func ToUnsigned(op string, v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, newFault(FaultArithmetic, op, ErrNegativeConversion)
	}
	return new(big.Int).Set(v), nil
}

// NarrowToUint64 round-trips v through a checked 256-bit word and a uint64,
// faulting if v does not fit. It returns a fresh *big.Int rebuilt from the
// uint64 so that callers observe the exact post-narrowing value, matching
// the source drafts, which genuinely store these intermediates as u64
// before promoting them back to the wide type for further arithmetic.
func NarrowToUint64(op string, v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, newFault(FaultArithmetic, op, ErrNegativeConversion)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, newFault(FaultArithmetic, op, ErrOverflow)
	}
	if !u.IsUint64() {
		return nil, newFault(FaultArithmetic, op, ErrOverflow)
	}
	return new(big.Int).SetUint64(u.Uint64()), nil
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}

func maxBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) > 0 {
		return a
	}
	return b
}
