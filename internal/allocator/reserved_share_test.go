// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package allocator_test

import (
	"math"
	"testing"

	"github.com/blinklabs-io/shai106/internal/allocator"
	"github.com/blinklabs-io/shai106/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReservedShareTwoPoolsInSubnetZero(t *testing.T) {
	poolsBySubnet := map[domain.SubnetID][]domain.PoolKey{
		domain.SubnetZero: {"solana:p1", "solana:p2"},
	}
	a := allocator.ReservedShareAllocator{ReservedShareSubnet0: 0.25}
	weights, _ := a.Allocate(poolsBySubnet, nil, nil)

	if !almostEqual(weights["solana:p1"], 0.125) || !almostEqual(weights["solana:p2"], 0.125) {
		t.Fatalf("weights = %+v, want 0.125 each", weights)
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if !almostEqual(total, 0.25) {
		t.Errorf("total = %v, want 0.25 (unallocated 0.75)", total)
	}
}

func TestReservedShareAlphaWeightedOtherSubnets(t *testing.T) {
	poolsBySubnet := map[domain.SubnetID][]domain.PoolKey{
		domain.SubnetZero: {"solana:p0a", "solana:p0b"},
		1:                 {"solana:p1a", "solana:p1b", "solana:p1c"},
		2:                 {"solana:p2a"},
	}
	alphaPrices := map[domain.SubnetID]float64{0: 0, 1: 2, 2: 1}
	a := allocator.ReservedShareAllocator{ReservedShareSubnet0: 0.25}
	weights, _ := a.Allocate(poolsBySubnet, nil, alphaPrices)

	if !almostEqual(weights["solana:p0a"], 0.125) || !almostEqual(weights["solana:p0b"], 0.125) {
		t.Errorf("subnet-0 weights = %+v, want 0.125 each", weights)
	}
	want1 := 0.5 / 3
	for _, k := range []domain.PoolKey{"solana:p1a", "solana:p1b", "solana:p1c"} {
		if !almostEqual(weights[k], want1) {
			t.Errorf("weights[%s] = %v, want %v", k, weights[k], want1)
		}
	}
	if !almostEqual(weights["solana:p2a"], 0.25) {
		t.Errorf("weights[p2a] = %v, want 0.25", weights["solana:p2a"])
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if !almostEqual(total, 1.0) {
		t.Errorf("total = %v, want ~1.0", total)
	}
}

func TestReservedShareNoSubnetZeroPoolsClampsToZero(t *testing.T) {
	poolsBySubnet := map[domain.SubnetID][]domain.PoolKey{
		1: {"solana:p1a"},
	}
	a := allocator.ReservedShareAllocator{ReservedShareSubnet0: 0.25}
	weights, _ := a.Allocate(poolsBySubnet, nil, nil)
	if !almostEqual(weights["solana:p1a"], 1.0) {
		t.Errorf("weights[p1a] = %v, want 1.0 (all of remaining, equal split over 1 pool)", weights["solana:p1a"])
	}
}

func TestChainSplitKeepsSubnetZeroAcrossChainsAndSubnet106EVMOnly(t *testing.T) {
	poolsBySubnet := map[domain.SubnetID][]domain.PoolKey{
		domain.SubnetZero: {"solana:p0s", "ethereum:p0e"},
		domain.SubnetSelf: {"solana:p106s", "ethereum:p106e"},
	}
	poolChain := map[domain.PoolKey]domain.ChainTag{
		"solana:p0s":     domain.ChainSolana,
		"ethereum:p0e":   domain.ChainEthereum,
		"solana:p106s":   domain.ChainSolana,
		"ethereum:p106e": domain.ChainEthereum,
	}
	a := allocator.ChainSplitAllocator{ReservedShareSubnet0: 0.4, ReservedShareSubnet106: 0.2}
	weights, _ := a.Allocate(poolsBySubnet, poolChain, nil)

	if !almostEqual(weights["solana:p0s"], 0.2) || !almostEqual(weights["ethereum:p0e"], 0.2) {
		t.Errorf("subnet-0 split = %+v, want 0.2 each", weights)
	}
	if weights["solana:p106s"] != 0 {
		t.Errorf("weights[solana:p106s] = %v, want 0 (EVM-only reserve)", weights["solana:p106s"])
	}
	if !almostEqual(weights["ethereum:p106e"], 0.2) {
		t.Errorf("weights[ethereum:p106e] = %v, want 0.2", weights["ethereum:p106e"])
	}
}

func TestPoolsBySubnetGroupsByTick(t *testing.T) {
	ticks := map[domain.PoolKey]domain.PoolTick{
		"solana:p1": {Pool: "solana:p1", Tick: 5, Subnet: 106},
		"solana:p2": {Pool: "solana:p2", Tick: -5, Subnet: 0},
	}
	grouped := allocator.PoolsBySubnet(ticks)
	if len(grouped[106]) != 1 || len(grouped[0]) != 1 {
		t.Fatalf("grouped = %+v", grouped)
	}
}
