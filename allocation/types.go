// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package allocation computes an optimal reallocation of vault debt across a
// set of lending silos so that the blended APR earned by the vault is
// maximized, subject to per-silo debt caps. The package is pure: every
// function here is a deterministic function of its arguments, with no
// persistent state, no I/O, and no concurrency. It is meant to be driven by
// a single-shot host such as cmd/guest, which owns the input/output bytes.
package allocation

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// SecondsPerYear is the Julian year in seconds used to annualize a
// per-second rate into an APR. It is a hard constant, not derived from any
// input field, and must be applied identically everywhere an APR is
// computed so that APRs stay directly comparable.
var SecondsPerYear = big.NewInt(31_556_952)

// aprScale converts the rate kernel's internal scale into the APR scale
// used by the blended-APR evaluator. Cosmetic floating point literals in
// the source drafts (1e13) are this exact integer constant.
var aprScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(13), nil)

// Position is a (strategy, debt) pair. Positions are value objects: they
// are created, copied and reordered, but never aliased across the pipeline.
type Position struct {
	Strategy common.Address
	Debt     *big.Int
}

// Clone returns a deep copy of p so that callers may freely mutate the
// result without aliasing the original's *big.Int.
func (p Position) Clone() Position {
	return Position{Strategy: p.Strategy, Debt: new(big.Int).Set(p.Debt)}
}

// SiloRateParams holds the 17 fields of a single silo's variable-rate curve,
// in the field order ABI-encoded on the wire (see abi.go).
type SiloRateParams struct {
	CurTimestamp        *big.Int
	LastTimestamp       *big.Int
	RatePerSec          *big.Int
	FullUtilizationRate *big.Int
	TotalAsset          *big.Int
	TotalBorrow         *big.Int
	UtilPrec            *big.Int
	MinTargetUtil       *big.Int
	MaxTargetUtil       *big.Int
	VertexUtilization   *big.Int
	MinFullUtilRate     *big.Int
	MaxFullUtilRate     *big.Int
	ZeroUtilRate        *big.Int
	RateHalfLife        *big.Int
	VertexRatePercent   *big.Int
	RatePrec            *big.Int
	IsInterestPaused    bool
}

// StrategyParams is the subset of a vault's strategy bookkeeping the core
// consults. Activation and LastReport are carried through for symmetry with
// the wire format but are not read by the allocator.
type StrategyParams struct {
	Activation  *big.Int
	LastReport  *big.Int
	CurrentDebt *big.Int
	MaxDebt     *big.Int
}

// AllocationInput is the fully decoded request to the allocator.
type AllocationInput struct {
	ChunkCount           uint64
	TotalInitialAmount   *big.Int
	TotalAvailableAmount *big.Int
	Initial              []Position
	Strategies           []StrategyParams
	Silos                []SiloRateParams
}

// AllocationOutput is the journal committed back to the host.
type AllocationOutput struct {
	Allocations []Position
	NewAPR      *big.Int
	CurrentAPR  *big.Int
	Success     bool
}
