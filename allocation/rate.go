// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import "math/big"

// NewRate computes a silo's per-second interest rate and updated
// full-utilization ceiling for a hypothetical utilization.
//
// It generalizes the teacher's single-kink GetBorrowRate (interest_rate.go)
// into the two-branch decaying-ceiling model: the full-utilization rate
// itself moves (decays toward MinFullUtilRate, grows toward
// MaxFullUtilRate) before the piecewise-linear vertex curve is evaluated
// against it.
func NewRate(deltaTime, utilization *big.Int, p SiloRateParams) (ratePerSec, newFullUtilRate *big.Int, err error) {
	fPrime, err := fullUtilizationCeiling(deltaTime, utilization, p)
	if err != nil {
		return nil, nil, err
	}

	// vertex_interest = ((F' - Z) * P) / R + Z
	diff, err := CheckedSub("vertex_interest.diff", fPrime, p.ZeroUtilRate)
	if err != nil {
		return nil, nil, err
	}
	scaled, err := CheckedMul("vertex_interest.scale", diff, p.VertexRatePercent)
	if err != nil {
		return nil, nil, err
	}
	scaledOverPrec, err := CheckedDiv("vertex_interest.div", scaled, p.RatePrec)
	if err != nil {
		return nil, nil, err
	}
	vertexInterest, err := CheckedAdd("vertex_interest.add", scaledOverPrec, p.ZeroUtilRate)
	if err != nil {
		return nil, nil, err
	}

	var rate *big.Int
	if utilization.Cmp(p.VertexUtilization) < 0 {
		// rate = Z + (u * (vertex_interest - Z)) / V
		vMinusZ, err := CheckedSub("rate.below.diff", vertexInterest, p.ZeroUtilRate)
		if err != nil {
			return nil, nil, err
		}
		num, err := CheckedMul("rate.below.mul", utilization, vMinusZ)
		if err != nil {
			return nil, nil, err
		}
		term, err := CheckedDiv("rate.below.div", num, p.VertexUtilization)
		if err != nil {
			return nil, nil, err
		}
		rate, err = CheckedAdd("rate.below.add", p.ZeroUtilRate, term)
		if err != nil {
			return nil, nil, err
		}
	} else {
		// rate = vertex_interest + ((u - V) * (F' - vertex_interest)) / (U - V)
		uMinusV, err := CheckedSub("rate.above.u_minus_v", utilization, p.VertexUtilization)
		if err != nil {
			return nil, nil, err
		}
		fMinusVertex, err := CheckedSub("rate.above.f_minus_vertex", fPrime, vertexInterest)
		if err != nil {
			return nil, nil, err
		}
		num, err := CheckedMul("rate.above.mul", uMinusV, fMinusVertex)
		if err != nil {
			return nil, nil, err
		}
		uMinusVertexUtil, err := CheckedSub("rate.above.denom", p.UtilPrec, p.VertexUtilization)
		if err != nil {
			return nil, nil, err
		}
		term, err := CheckedDiv("rate.above.div", num, uMinusVertexUtil)
		if err != nil {
			return nil, nil, err
		}
		rate, err = CheckedAdd("rate.above.add", vertexInterest, term)
		if err != nil {
			return nil, nil, err
		}
	}

	narrowedRate, err := NarrowToUint64("rate.narrow", rate)
	if err != nil {
		return nil, nil, err
	}
	return narrowedRate, fPrime, nil
}

// fullUtilizationCeiling decays F toward MinFullUtilRate when utilization
// sits below the target band, grows it toward MaxFullUtilRate when
// utilization sits above it, and leaves it unchanged inside the band —
// before clamping to [MinFullUtilRate, MaxFullUtilRate] and narrowing to
// 64 bits.
func fullUtilizationCeiling(deltaTime, utilization *big.Int, p SiloRateParams) (*big.Int, error) {
	var fPrime *big.Int

	switch {
	case utilization.Cmp(p.MinTargetUtil) < 0:
		// deltaUtil = ((min_target_util - u) * 1e18) / min_target_util
		diff, err := CheckedSub("ceiling.below.diff", p.MinTargetUtil, utilization)
		if err != nil {
			return nil, err
		}
		deltaUtil, err := scaledRatio(diff, p.MinTargetUtil, "ceiling.below")
		if err != nil {
			return nil, err
		}
		growth, err := decayGrowth(p.RateHalfLife, deltaUtil, deltaTime, "ceiling.below")
		if err != nil {
			return nil, err
		}
		// F' = (F * H * 1e36) / growth
		halfLifeScaled, err := CheckedMul("ceiling.below.hl_scale", p.RateHalfLife, scale36)
		if err != nil {
			return nil, err
		}
		numerator, err := CheckedMul("ceiling.below.num", p.FullUtilizationRate, halfLifeScaled)
		if err != nil {
			return nil, err
		}
		fPrime, err = CheckedDiv("ceiling.below.div", numerator, growth)
		if err != nil {
			return nil, err
		}

	case utilization.Cmp(p.MaxTargetUtil) > 0:
		// deltaUtil = ((u - max_target_util) * 1e18) / (util_prec - max_target_util)
		diff, err := CheckedSub("ceiling.above.diff", utilization, p.MaxTargetUtil)
		if err != nil {
			return nil, err
		}
		denom, err := CheckedSub("ceiling.above.denom", p.UtilPrec, p.MaxTargetUtil)
		if err != nil {
			return nil, err
		}
		deltaUtil, err := scaledRatio(diff, denom, "ceiling.above")
		if err != nil {
			return nil, err
		}
		growth, err := decayGrowth(p.RateHalfLife, deltaUtil, deltaTime, "ceiling.above")
		if err != nil {
			return nil, err
		}
		// F' = (F * growth) / (H * 1e36)
		numerator, err := CheckedMul("ceiling.above.num", p.FullUtilizationRate, growth)
		if err != nil {
			return nil, err
		}
		halfLifeScaled, err := CheckedMul("ceiling.above.hl_scale", p.RateHalfLife, scale36)
		if err != nil {
			return nil, err
		}
		fPrime, err = CheckedDiv("ceiling.above.div", numerator, halfLifeScaled)
		if err != nil {
			return nil, err
		}

	default:
		fPrime = new(big.Int).Set(p.FullUtilizationRate)
	}

	fPrime = maxBig(minBig(fPrime, p.MaxFullUtilRate), p.MinFullUtilRate)
	return NarrowToUint64("ceiling.narrow", fPrime)
}

// scaledRatio computes (numerator * 1e18) / denominator.
func scaledRatio(numerator, denominator *big.Int, op string) (*big.Int, error) {
	scaled, err := CheckedMul(op+".scaled_ratio.mul", numerator, scale18)
	if err != nil {
		return nil, err
	}
	return CheckedDiv(op+".scaled_ratio.div", scaled, denominator)
}

// decayGrowth computes H*1e36 + deltaUtil^2 * deltaTime, the shared
// "growth" term of both ceiling branches.
func decayGrowth(halfLife, deltaUtil, deltaTime *big.Int, op string) (*big.Int, error) {
	halfLifeScaled, err := CheckedMul(op+".growth.hl_scale", halfLife, scale36)
	if err != nil {
		return nil, err
	}
	deltaSquared, err := CheckedMul(op+".growth.delta_sq", deltaUtil, deltaUtil)
	if err != nil {
		return nil, err
	}
	deltaSquaredTime, err := CheckedMul(op+".growth.delta_sq_time", deltaSquared, deltaTime)
	if err != nil {
		return nil, err
	}
	return CheckedAdd(op+".growth.add", halfLifeScaled, deltaSquaredTime)
}
