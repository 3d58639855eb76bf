// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocation

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// schemaJSON is the embedded ABI fragment for the allocator's single
// entrypoint. It is not a deployed contract method — there is no selector
// dispatch, and decode/encode never see or emit the 4-byte method id — but
// shaping it as a method lets this package reuse
// github.com/luxfi/geth/accounts/abi's Method.Inputs/Outputs exactly the
// way the teacher's ExtendedABI (warp/abi_ext.go: UnpackInput/PackOutput)
// does, rather than hand-rolling a codec.
const schemaJSON = `[{
  "type": "function",
  "name": "allocate",
  "stateMutability": "nonpayable",
  "inputs": [
    {"name": "chunk_count", "type": "uint256"},
    {"name": "total_initial_amount", "type": "uint256"},
    {"name": "total_available_amount", "type": "uint256"},
    {"name": "initial_positions", "type": "tuple[]", "components": [
      {"name": "strategy", "type": "address"},
      {"name": "debt", "type": "uint256"}
    ]},
    {"name": "strategy_params", "type": "tuple[]", "components": [
      {"name": "activation", "type": "uint256"},
      {"name": "last_report", "type": "uint256"},
      {"name": "current_debt", "type": "uint256"},
      {"name": "max_debt", "type": "uint256"}
    ]},
    {"name": "silo_rate_params", "type": "tuple[]", "components": [
      {"name": "cur_timestamp", "type": "uint256"},
      {"name": "last_timestamp", "type": "uint256"},
      {"name": "rate_per_sec", "type": "uint256"},
      {"name": "full_utilization_rate", "type": "uint256"},
      {"name": "total_asset", "type": "uint256"},
      {"name": "total_borrow", "type": "uint256"},
      {"name": "util_prec", "type": "uint256"},
      {"name": "min_target_util", "type": "uint256"},
      {"name": "max_target_util", "type": "uint256"},
      {"name": "vertex_utilization", "type": "uint256"},
      {"name": "min_full_util_rate", "type": "uint256"},
      {"name": "max_full_util_rate", "type": "uint256"},
      {"name": "zero_util_rate", "type": "uint256"},
      {"name": "rate_half_life", "type": "uint256"},
      {"name": "vertex_rate_percent", "type": "uint256"},
      {"name": "rate_prec", "type": "uint256"},
      {"name": "is_interest_paused", "type": "bool"}
    ]}
  ],
  "outputs": [
    {"name": "allocations", "type": "tuple[]", "components": [
      {"name": "strategy", "type": "address"},
      {"name": "debt", "type": "uint256"}
    ]},
    {"name": "new_apr", "type": "uint256"},
    {"name": "current_apr", "type": "uint256"},
    {"name": "success", "type": "bool"}
  ]
}]`

const methodName = "allocate"

var schema = mustParseSchema()

func mustParseSchema() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("allocation: invalid embedded ABI schema: %v", err))
	}
	return parsed
}

// abiPosition is packed in place of Position for the Pack side of the ABI
// boundary. Arguments.Pack matches a struct's exported fields to a tuple's
// components by position, so this only needs to agree with Position's
// field order, not its field names.
type abiPosition struct {
	Strategy common.Address
	Debt     *big.Int
}

// Decode parses the ABI-encoded request payload against the declared
// schema. Any mismatch between the wire bytes and the schema is a decode
// fault: fatal, no journal committed.
func Decode(data []byte) (*AllocationInput, error) {
	method, ok := schema.Methods[methodName]
	if !ok {
		return nil, newFault(FaultDecode, "abi.decode", fmt.Errorf("schema missing method %q", methodName))
	}

	values, err := method.Inputs.Unpack(data)
	if err != nil {
		return nil, newFault(FaultDecode, "abi.decode", err)
	}
	if len(values) != 6 {
		return nil, newFault(FaultDecode, "abi.decode", fmt.Errorf("expected 6 top-level values, got %d", len(values)))
	}

	chunkCountBig, ok := values[0].(*big.Int)
	if !ok {
		return nil, newFault(FaultDecode, "abi.decode.chunk_count", fmt.Errorf("unexpected type %T", values[0]))
	}
	chunkCount, err := NarrowToUint64("abi.decode.chunk_count", chunkCountBig)
	if err != nil {
		return nil, err
	}

	totalInitial, ok := values[1].(*big.Int)
	if !ok {
		return nil, newFault(FaultDecode, "abi.decode.total_initial_amount", fmt.Errorf("unexpected type %T", values[1]))
	}
	totalAvailable, ok := values[2].(*big.Int)
	if !ok {
		return nil, newFault(FaultDecode, "abi.decode.total_available_amount", fmt.Errorf("unexpected type %T", values[2]))
	}

	initial, err := decodePositions(values[3])
	if err != nil {
		return nil, err
	}
	strategies, err := decodeStrategyParams(values[4])
	if err != nil {
		return nil, err
	}
	silos, err := decodeSiloParams(values[5])
	if err != nil {
		return nil, err
	}

	return &AllocationInput{
		ChunkCount:           chunkCount.Uint64(),
		TotalInitialAmount:   totalInitial,
		TotalAvailableAmount: totalAvailable,
		Initial:              initial,
		Strategies:           strategies,
		Silos:                silos,
	}, nil
}

// Encode produces the ABI-encoded journal committed as the run's result.
func Encode(out AllocationOutput) ([]byte, error) {
	method, ok := schema.Methods[methodName]
	if !ok {
		return nil, newFault(FaultDecode, "abi.encode", fmt.Errorf("schema missing method %q", methodName))
	}

	allocations := make([]abiPosition, len(out.Allocations))
	for i, p := range out.Allocations {
		allocations[i] = abiPosition{Strategy: p.Strategy, Debt: p.Debt}
	}

	packed, err := method.Outputs.Pack(allocations, out.NewAPR, out.CurrentAPR, out.Success)
	if err != nil {
		return nil, newFault(FaultDecode, "abi.encode", err)
	}
	return packed, nil
}

// decodePositions converts the dynamically-typed (address,uint256)[] value
// Unpack hands back into []Position. The element type is whatever
// reflect.StructOf the abi package built for this schema's tuple component
// list; we only rely on field order (strategy, debt), not on its exact
// (unexported) type identity.
func decodePositions(raw interface{}) ([]Position, error) {
	elems, err := tupleSlice(raw, 2, "abi.decode.positions")
	if err != nil {
		return nil, err
	}
	out := make([]Position, len(elems))
	for i, elem := range elems {
		addr, err := addressField(elem, 0, "abi.decode.positions", i)
		if err != nil {
			return nil, err
		}
		debt, err := bigField(elem, 1, "abi.decode.positions", i)
		if err != nil {
			return nil, err
		}
		out[i] = Position{Strategy: addr, Debt: debt}
	}
	return out, nil
}

func decodeStrategyParams(raw interface{}) ([]StrategyParams, error) {
	elems, err := tupleSlice(raw, 4, "abi.decode.strategy_params")
	if err != nil {
		return nil, err
	}
	out := make([]StrategyParams, len(elems))
	for i, elem := range elems {
		activation, err := bigField(elem, 0, "abi.decode.strategy_params", i)
		if err != nil {
			return nil, err
		}
		lastReport, err := bigField(elem, 1, "abi.decode.strategy_params", i)
		if err != nil {
			return nil, err
		}
		currentDebt, err := bigField(elem, 2, "abi.decode.strategy_params", i)
		if err != nil {
			return nil, err
		}
		maxDebt, err := bigField(elem, 3, "abi.decode.strategy_params", i)
		if err != nil {
			return nil, err
		}
		out[i] = StrategyParams{
			Activation:  activation,
			LastReport:  lastReport,
			CurrentDebt: currentDebt,
			MaxDebt:     maxDebt,
		}
	}
	return out, nil
}

func decodeSiloParams(raw interface{}) ([]SiloRateParams, error) {
	elems, err := tupleSlice(raw, 17, "abi.decode.silo_rate_params")
	if err != nil {
		return nil, err
	}
	out := make([]SiloRateParams, len(elems))
	for i, elem := range elems {
		fields := make([]*big.Int, 16)
		for f := 0; f < 16; f++ {
			v, err := bigField(elem, f, "abi.decode.silo_rate_params", i)
			if err != nil {
				return nil, err
			}
			fields[f] = v
		}
		paused, ok := elem.Field(16).Interface().(bool)
		if !ok {
			return nil, newFault(FaultDecode, "abi.decode.silo_rate_params", fmt.Errorf("field 16 not a bool at index %d", i))
		}
		out[i] = SiloRateParams{
			CurTimestamp:        fields[0],
			LastTimestamp:       fields[1],
			RatePerSec:          fields[2],
			FullUtilizationRate: fields[3],
			TotalAsset:          fields[4],
			TotalBorrow:         fields[5],
			UtilPrec:            fields[6],
			MinTargetUtil:       fields[7],
			MaxTargetUtil:       fields[8],
			VertexUtilization:   fields[9],
			MinFullUtilRate:     fields[10],
			MaxFullUtilRate:     fields[11],
			ZeroUtilRate:        fields[12],
			RateHalfLife:        fields[13],
			VertexRatePercent:   fields[14],
			RatePrec:            fields[15],
			IsInterestPaused:    paused,
		}
	}
	return out, nil
}

// tupleSlice validates that raw is a slice of structs with exactly
// wantFields fields and returns the per-element reflect.Values.
func tupleSlice(raw interface{}, wantFields int, op string) ([]reflect.Value, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, newFault(FaultDecode, op, fmt.Errorf("expected slice, got %T", raw))
	}
	out := make([]reflect.Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() != reflect.Struct || elem.NumField() != wantFields {
			return nil, newFault(FaultDecode, op, fmt.Errorf("unexpected tuple shape at index %d", i))
		}
		out[i] = elem
	}
	return out, nil
}

func bigField(elem reflect.Value, field int, op string, index int) (*big.Int, error) {
	v, ok := elem.Field(field).Interface().(*big.Int)
	if !ok {
		return nil, newFault(FaultDecode, op, fmt.Errorf("field %d not a uint256 at index %d", field, index))
	}
	return v, nil
}

func addressField(elem reflect.Value, field int, op string, index int) (common.Address, error) {
	v, ok := elem.Field(field).Interface().(common.Address)
	if !ok {
		return common.Address{}, newFault(FaultDecode, op, fmt.Errorf("field %d not an address at index %d", field, index))
	}
	return v, nil
}
