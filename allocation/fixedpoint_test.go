// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import (
	"errors"
	"math/big"
	"testing"
)

func bigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test literal: " + s)
	}
	return v
}

func faultKind(t *testing.T, err error) FaultKind {
	t.Helper()
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("expected *Fault, got %T: %v", err, err)
	}
	return f.Kind
}

func TestCheckedAdd(t *testing.T) {
	sum, err := CheckedAdd("test", big.NewInt(2), big.NewInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("expected 5, got %v", sum)
	}
}

func TestCheckedAdd_Overflow(t *testing.T) {
	_, err := CheckedAdd("test", maxUint256, big.NewInt(1))
	if err == nil {
		t.Fatal("expected overflow fault")
	}
	if kind := faultKind(t, err); kind != FaultArithmetic {
		t.Errorf("expected FaultArithmetic, got %v", kind)
	}
}

func TestCheckedSub_Underflow(t *testing.T) {
	_, err := CheckedSub("test", big.NewInt(1), big.NewInt(2))
	if err == nil {
		t.Fatal("expected underflow fault")
	}
	if kind := faultKind(t, err); kind != FaultArithmetic {
		t.Errorf("expected FaultArithmetic, got %v", kind)
	}
}

func TestCheckedDiv_ByZero(t *testing.T) {
	_, err := CheckedDiv("test", big.NewInt(10), big.NewInt(0))
	if err == nil {
		t.Fatal("expected division-by-zero fault")
	}
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero in chain, got %v", err)
	}
}

func TestCheckedDiv_Floors(t *testing.T) {
	q, err := CheckedDiv("test", big.NewInt(7), big.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Cmp(big.NewInt(3)) != 0 {
		t.Errorf("expected floor(7/2) = 3, got %v", q)
	}
}

func TestToUnsigned_Negative(t *testing.T) {
	_, err := ToUnsigned("test", big.NewInt(-1))
	if err == nil {
		t.Fatal("expected negative-conversion fault")
	}
	if !errors.Is(err, ErrNegativeConversion) {
		t.Errorf("expected ErrNegativeConversion in chain, got %v", err)
	}
}

func TestNarrowToUint64_RoundTrips(t *testing.T) {
	v, err := NarrowToUint64("test", big.NewInt(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Uint64() != 42 {
		t.Errorf("expected 42, got %v", v)
	}
}

func TestNarrowToUint64_Overflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 64)
	_, err := NarrowToUint64("test", tooBig)
	if err == nil {
		t.Fatal("expected overflow fault")
	}
	if kind := faultKind(t, err); kind != FaultArithmetic {
		t.Errorf("expected FaultArithmetic, got %v", kind)
	}
}

func TestNarrowToUint64_NegativeIsFault(t *testing.T) {
	_, err := NarrowToUint64("test", big.NewInt(-1))
	if err == nil {
		t.Fatal("expected fault for negative input")
	}
}
