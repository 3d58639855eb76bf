// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import "errors"

// FaultKind tags which row of the fault table a *Fault corresponds to, so a
// caller can log or branch on the kind without matching error strings.
type FaultKind int

const (
	// FaultDecode marks input bytes that do not match the declared ABI
	// schema.
	FaultDecode FaultKind = iota
	// FaultArithmetic marks division by zero, 256-bit overflow, or a
	// signed-to-unsigned conversion of a negative value.
	FaultArithmetic
	// FaultCapExhausted marks a chunk for which every silo's cap would be
	// exceeded, or for which the best observed APR is exactly zero (see
	// Allocate).
	FaultCapExhausted
)

func (k FaultKind) String() string {
	switch k {
	case FaultDecode:
		return "decode"
	case FaultArithmetic:
		return "arithmetic"
	case FaultCapExhausted:
		return "cap_exhausted"
	default:
		return "unknown"
	}
}

// Fault is a fatal error: the run must abort with no journal committed.
// There is no recoverable-fault case in this package; every Fault is fatal
// by construction.
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return f.Kind.String() + " fault in " + f.Op
	}
	return f.Kind.String() + " fault in " + f.Op + ": " + f.Err.Error()
}

func (f *Fault) Unwrap() error { return f.Err }

func newFault(kind FaultKind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

// Sentinel causes wrapped by arithmetic faults.
var (
	ErrDivisionByZero     = errors.New("division by zero")
	ErrOverflow           = errors.New("256-bit overflow")
	ErrNegativeConversion = errors.New("negative value in unsigned conversion")
	ErrChunkCountZero     = errors.New("chunk count is zero")
	ErrNoEligibleSilo     = errors.New("no silo eligible for this chunk")
	ErrLengthMismatch     = errors.New("initial/strategy/silo vectors have different lengths")
)
