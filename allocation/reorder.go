// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

// Reorder partitions the raw allocation vector into withdraws (current
// debt exceeds the new debt) followed by deposits, so that when a host
// applies the plan sequentially, capital freed by a withdraw is always
// available before a deposit that needs it. Withdraws keep their input
// order; deposits are emitted in reverse input order.
func Reorder(raw []Position, strategies []StrategyParams) []Position {
	withdraws := make([]Position, 0, len(raw))
	deposits := make([]Position, 0, len(raw))

	for i, p := range raw {
		if strategies[i].CurrentDebt.Cmp(p.Debt) > 0 {
			withdraws = append(withdraws, p)
		} else {
			deposits = append(deposits, p)
		}
	}

	for i, j := 0, len(deposits)-1; i < j; i, j = i+1, j-1 {
		deposits[i], deposits[j] = deposits[j], deposits[i]
	}

	return append(withdraws, deposits...)
}
