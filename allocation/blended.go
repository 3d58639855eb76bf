// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// Blended computes the debt-weighted current and projected APR for a vault.
// If optimal is empty it returns (0, 0) without consulting the silos.
//
// The new-APR loop stops accumulating (does not skip and continue) the
// first time an optimal entry's strategy cannot be found among initial.
// This is a deliberately preserved quirk of the observed source behavior,
// possibly unintended upstream, kept here rather than "fixed" so results
// stay comparable against the original.
//
// The strategy→index lookup is a map built once up front rather than a
// linear scan per optimal entry. The map keeps the first index of each
// strategy, so it finds the same entry a linear scan would, and the
// break-on-missing behavior above is unchanged.
func Blended(initial []Position, silos []SiloRateParams, strategies []StrategyParams, optimal []Position) (currentAPR, newAPR *big.Int, err error) {
	if len(optimal) == 0 {
		return big.NewInt(0), big.NewInt(0), nil
	}

	currentAPR, err = weightedAPR(len(initial), func(i int) (*big.Int, *big.Int, error) {
		apr, err := APRAfterDebtChange(silos[i], big.NewInt(0))
		if err != nil {
			return nil, nil, err
		}
		return apr, strategies[i].CurrentDebt, nil
	})
	if err != nil {
		return nil, nil, err
	}

	index := make(map[common.Address]int, len(initial))
	for i, pos := range initial {
		if _, seen := index[pos.Strategy]; !seen {
			index[pos.Strategy] = i
		}
	}

	num := big.NewInt(0)
	den := big.NewInt(0)
	for _, opt := range optimal {
		j, ok := index[opt.Strategy]
		if !ok {
			break
		}

		deltaSigned := new(big.Int).Sub(opt.Debt, strategies[j].CurrentDebt)
		apr, err := APRAfterDebtChange(silos[j], deltaSigned)
		if err != nil {
			return nil, nil, err
		}

		term, err := CheckedMul("blended.new.term", apr, opt.Debt)
		if err != nil {
			return nil, nil, err
		}
		num, err = CheckedAdd("blended.new.num", num, term)
		if err != nil {
			return nil, nil, err
		}
		den, err = CheckedAdd("blended.new.den", den, opt.Debt)
		if err != nil {
			return nil, nil, err
		}
	}

	newAPR = big.NewInt(0)
	if num.Sign() != 0 && den.Sign() != 0 {
		newAPR, err = CheckedDiv("blended.new.div", num, den)
		if err != nil {
			return nil, nil, err
		}
	}

	return currentAPR, newAPR, nil
}

// weightedAPR accumulates Σ apr(i)*weight(i) / Σ weight(i) over n entries,
// returning zero if either accumulator is zero.
func weightedAPR(n int, term func(i int) (apr, weight *big.Int, err error)) (*big.Int, error) {
	num := big.NewInt(0)
	den := big.NewInt(0)
	for i := 0; i < n; i++ {
		apr, weight, err := term(i)
		if err != nil {
			return nil, err
		}
		scaled, err := CheckedMul("blended.current.term", apr, weight)
		if err != nil {
			return nil, err
		}
		num, err = CheckedAdd("blended.current.num", num, scaled)
		if err != nil {
			return nil, err
		}
		den, err = CheckedAdd("blended.current.den", den, weight)
		if err != nil {
			return nil, err
		}
	}
	if num.Sign() == 0 || den.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return CheckedDiv("blended.current.div", num, den)
}

// decide applies the emission gate: a plan is only committed when it
// strictly improves the blended APR.
func decide(optimal []Position, currentAPR, newAPR *big.Int) AllocationOutput {
	if newAPR.Cmp(currentAPR) > 0 {
		return AllocationOutput{Allocations: optimal, NewAPR: newAPR, CurrentAPR: currentAPR, Success: true}
	}
	return AllocationOutput{Allocations: []Position{}, NewAPR: newAPR, CurrentAPR: currentAPR, Success: false}
}
