// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import (
	"math/big"
	"testing"
)

func TestRun_EndToEnd_ImprovingPlanSucceeds(t *testing.T) {
	method := schema.Methods[methodName]

	positions := []testPositionTuple{
		{Strategy: strategyA, Debt: big.NewInt(100)},
		{Strategy: strategyB, Debt: big.NewInt(100)},
	}
	strategies := []testStrategyTuple{
		{Activation: big.NewInt(0), LastReport: big.NewInt(0), CurrentDebt: big.NewInt(100), MaxDebt: bigInt("1000000")},
		{Activation: big.NewInt(0), LastReport: big.NewInt(0), CurrentDebt: big.NewInt(100), MaxDebt: bigInt("1000000")},
	}
	siloA := defaultSilo()
	siloA.IsInterestPaused = true
	siloA.RatePerSec = big.NewInt(400_000_000)
	siloB := defaultSilo()
	siloB.IsInterestPaused = true
	siloB.RatePerSec = big.NewInt(800_000_000)
	silos := []testSiloTuple{siloTuple(siloA), siloTuple(siloB)}

	data, err := method.Inputs.Pack(big.NewInt(1), big.NewInt(200), big.NewInt(300), positions, strategies, silos)
	if err != nil {
		t.Fatalf("failed to pack test input: %v", err)
	}

	journal, err := Run(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values, err := method.Outputs.Unpack(journal)
	if err != nil {
		t.Fatalf("failed to unpack journal: %v", err)
	}
	success, ok := values[3].(bool)
	if !ok || !success {
		t.Errorf("expected a successful reallocation, got %v", values[3])
	}
}

func TestRun_DecodeFault_ReturnsNoJournal(t *testing.T) {
	_, err := Run([]byte{0xff})
	if err == nil {
		t.Fatal("expected a fault for malformed input")
	}
	if kind := faultKind(t, err); kind != FaultDecode {
		t.Errorf("expected FaultDecode, got %v", kind)
	}
}

func siloTuple(s SiloRateParams) testSiloTuple {
	return testSiloTuple{
		CurTimestamp:        s.CurTimestamp,
		LastTimestamp:       s.LastTimestamp,
		RatePerSec:          s.RatePerSec,
		FullUtilizationRate: s.FullUtilizationRate,
		TotalAsset:          s.TotalAsset,
		TotalBorrow:         s.TotalBorrow,
		UtilPrec:            s.UtilPrec,
		MinTargetUtil:       s.MinTargetUtil,
		MaxTargetUtil:       s.MaxTargetUtil,
		VertexUtilization:   s.VertexUtilization,
		MinFullUtilRate:     s.MinFullUtilRate,
		MaxFullUtilRate:     s.MaxFullUtilRate,
		ZeroUtilRate:        s.ZeroUtilRate,
		RateHalfLife:        s.RateHalfLife,
		VertexRatePercent:   s.VertexRatePercent,
		RatePrec:            s.RatePrec,
		IsInterestPaused:    s.IsInterestPaused,
	}
}
