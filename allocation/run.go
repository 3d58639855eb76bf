// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import "math/big"

// Run decodes a request, computes the reallocation plan, and encodes the
// journal — the full decode/allocate/reorder/evaluate/encode pipeline a
// guest entrypoint drives. Any error returned is a *Fault; callers must
// not commit a journal for a non-nil error.
func Run(data []byte) ([]byte, error) {
	in, err := Decode(data)
	if err != nil {
		return nil, err
	}

	optimal, err := Allocate(in.ChunkCount, in.TotalInitialAmount, in.TotalAvailableAmount, in.Initial, in.Silos, in.Strategies)
	if err != nil {
		return nil, err
	}

	if len(optimal) == 0 {
		return Encode(AllocationOutput{
			Allocations: []Position{},
			NewAPR:      big.NewInt(0),
			CurrentAPR:  big.NewInt(0),
			Success:     false,
		})
	}

	reordered := Reorder(optimal, in.Strategies)

	currentAPR, newAPR, err := Blended(in.Initial, in.Silos, in.Strategies, reordered)
	if err != nil {
		return nil, err
	}

	return Encode(decide(reordered, currentAPR, newAPR))
}
