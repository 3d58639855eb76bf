// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import "math/big"

// APRAfterDebtChange annualizes a silo's per-second rate under a
// hypothetical signed debt delta. delta is signed: positive means more
// debt is parked in the silo, negative means debt is pulled out.
//
// Grounded on the teacher's GetBorrowAPR/GetSupplyAPR (interest_rate.go),
// which both multiply a per-block rate by a blocks-per-year constant; here
// the constant is SecondsPerYear and the normalization from the kernel's
// internal scale to the comparable APR scale (division by 1e13) is applied
// identically on every return path so APRs stay directly comparable.
func APRAfterDebtChange(p SiloRateParams, delta *big.Int) (*big.Int, error) {
	if delta.Sign() == 0 || p.IsInterestPaused {
		return annualize(p.RatePerSec)
	}

	assetAmountSigned := SignedAdd(p.TotalAsset, delta)
	assetAmount, err := ToUnsigned("apr.asset_amount", assetAmountSigned)
	if err != nil {
		return nil, err
	}

	deltaTime, err := CheckedSub("apr.delta_time", p.CurTimestamp, p.LastTimestamp)
	if err != nil {
		return nil, err
	}

	var utilization *big.Int
	if assetAmount.Sign() == 0 {
		utilization = big.NewInt(0)
	} else {
		num, err := CheckedMul("apr.utilization.mul", p.UtilPrec, p.TotalBorrow)
		if err != nil {
			return nil, err
		}
		utilization, err = CheckedDiv("apr.utilization.div", num, assetAmount)
		if err != nil {
			return nil, err
		}
	}

	ratePerSec, _, err := NewRate(deltaTime, utilization, p)
	if err != nil {
		return nil, err
	}
	return annualize(ratePerSec)
}

// annualize returns ratePerSec * SecondsPerYear / 1e13, applied identically
// on the paused/zero-delta short-circuit and the general path.
func annualize(ratePerSec *big.Int) (*big.Int, error) {
	annual, err := CheckedMul("apr.annualize.mul", ratePerSec, SecondsPerYear)
	if err != nil {
		return nil, err
	}
	return CheckedDiv("apr.annualize.div", annual, aprScale)
}
