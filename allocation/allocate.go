// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import "math/big"

// Allocate distributes the incremental deposit (totalAvailable -
// totalInitial) across silos in chunkCount equal chunks, each chunk placed
// in the silo whose resulting APR is maximal and whose cap is not exceeded.
//
// It returns an empty slice (not an error) when the increment floor-divides
// to zero chunks — that is a normal no-op, not a fault. It returns a
// *Fault of kind FaultCapExhausted when a chunk finds no eligible silo; the
// sentinel for "no eligible silo" is an observed-APR of exactly zero for
// the whole scan, matching the source's `max_apr == 0` check bit-for-bit —
// including the edge case where the one eligible silo's own APR is
// genuinely zero (e.g. a paused silo with rate_per_sec == 0). This is a
// deliberately preserved ambiguity in the source behavior; it is kept
// rather than "fixed" so results stay comparable against the original
// journal bytes.
func Allocate(chunkCount uint64, totalInitial, totalAvailable *big.Int, initial []Position, silos []SiloRateParams, strategies []StrategyParams) ([]Position, error) {
	n := len(initial)
	if len(silos) != n || len(strategies) != n {
		return nil, newFault(FaultDecode, "allocate.lengths", ErrLengthMismatch)
	}
	if chunkCount == 0 {
		return nil, newFault(FaultArithmetic, "allocate.chunk_count", ErrChunkCountZero)
	}

	b := make([]*big.Int, n)
	for i, pos := range initial {
		b[i] = new(big.Int).Set(pos.Debt)
	}

	increment, err := CheckedSub("allocate.increment", totalAvailable, totalInitial)
	if err != nil {
		return nil, err
	}

	c := new(big.Int).SetUint64(chunkCount)
	unit, err := CheckedDiv("allocate.unit", increment, c)
	if err != nil {
		return nil, err
	}

	if unit.Sign() == 0 {
		return []Position{}, nil
	}

	unitTimesCMinus1 := new(big.Int).Mul(unit, new(big.Int).Sub(c, big.NewInt(1)))

	for k := uint64(0); k < chunkCount; k++ {
		chunkUnit := unit
		if k == chunkCount-1 {
			chunkUnit, err = CheckedSub("allocate.last_chunk", increment, unitTimesCMinus1)
			if err != nil {
				return nil, err
			}
		}

		bestAPR := big.NewInt(0)
		bestIdx := 0

		for j := 0; j < n; j++ {
			candidateDebt, err := CheckedAdd("allocate.candidate_debt", b[j], chunkUnit)
			if err != nil {
				return nil, err
			}
			if candidateDebt.Cmp(strategies[j].MaxDebt) > 0 {
				continue
			}

			deltaSigned := new(big.Int).Sub(candidateDebt, strategies[j].CurrentDebt)
			apr, err := APRAfterDebtChange(silos[j], deltaSigned)
			if err != nil {
				return nil, err
			}

			if bestAPR.Cmp(apr) >= 0 {
				continue
			}
			bestAPR = apr
			bestIdx = j
		}

		if bestAPR.Sign() == 0 {
			return nil, newFault(FaultCapExhausted, "allocate.chunk", ErrNoEligibleSilo)
		}

		b[bestIdx], err = CheckedAdd("allocate.commit", b[bestIdx], chunkUnit)
		if err != nil {
			return nil, err
		}
	}

	result := make([]Position, n)
	for i := range initial {
		result[i] = Position{Strategy: initial[i].Strategy, Debt: b[i]}
	}
	return result, nil
}
