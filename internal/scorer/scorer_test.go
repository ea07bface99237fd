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

package scorer_test

import (
	"math"
	"testing"

	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/blinklabs-io/shai106/internal/scorer"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreProportionalToLiquidity(t *testing.T) {
	pool := domain.PoolKey("solana:pA")
	positions := []domain.Position{
		{Miner: "h1", Pool: pool, TokenID: "1", TickLower: -1, TickUpper: 1, Liquidity: domain.NewLiquidity(100)},
		{Miner: "h2", Pool: pool, TokenID: "2", TickLower: -1, TickUpper: 1, Liquidity: domain.NewLiquidity(100)},
		{Miner: "h3", Pool: pool, TokenID: "3", TickLower: -1, TickUpper: 1, Liquidity: domain.NewLiquidity(200)},
	}
	ticks := map[domain.PoolKey]domain.PoolTick{pool: {Pool: pool, Tick: 0, Subnet: 1}}
	weights := domain.PoolWeights{pool: 1}

	emissions := scorer.Score(positions, ticks, weights, 1)
	if len(emissions) != 3 {
		t.Fatalf("got %d emissions, want 3", len(emissions))
	}
	var sum float64
	for _, e := range emissions {
		sum += e.Emission
	}
	if !almostEqual(sum, 1.0) {
		t.Errorf("sum = %v, want 1.0", sum)
	}
	if !almostEqual(emissions[0].Emission, 0.25) || !almostEqual(emissions[1].Emission, 0.25) || !almostEqual(emissions[2].Emission, 0.5) {
		t.Errorf("emissions = %+v, want {0.25, 0.25, 0.5}", emissions)
	}
}

func TestScoreBoundaryTicksInclusiveOnBothEdges(t *testing.T) {
	pool := domain.PoolKey("solana:pB")
	positions := []domain.Position{
		{Miner: "a", Pool: pool, TokenID: "a", TickLower: 100, TickUpper: 110, Liquidity: domain.NewLiquidity(1000)},
		{Miner: "b", Pool: pool, TokenID: "b", TickLower: 90, TickUpper: 100, Liquidity: domain.NewLiquidity(1000)},
		{Miner: "c", Pool: pool, TokenID: "c", TickLower: 101, TickUpper: 110, Liquidity: domain.NewLiquidity(1000)},
		{Miner: "d", Pool: pool, TokenID: "d", TickLower: 90, TickUpper: 99, Liquidity: domain.NewLiquidity(1000)},
	}
	ticks := map[domain.PoolKey]domain.PoolTick{pool: {Pool: pool, Tick: 100, Subnet: 1}}
	weights := domain.PoolWeights{pool: 1}

	emissions := scorer.Score(positions, ticks, weights, 1)
	byToken := make(map[string]domain.PositionEmission)
	for _, e := range emissions {
		byToken[e.TokenID] = e
	}
	if byToken["a"].Emission <= 0 {
		t.Errorf("a.emission = %v, want > 0", byToken["a"].Emission)
	}
	if byToken["b"].Emission <= 0 {
		t.Errorf("b.emission = %v, want > 0", byToken["b"].Emission)
	}
	if byToken["c"].Emission != 0 {
		t.Errorf("c.emission = %v, want 0", byToken["c"].Emission)
	}
	if byToken["d"].Emission != 0 {
		t.Errorf("d.emission = %v, want 0", byToken["d"].Emission)
	}
	if !almostEqual(byToken["a"].Emission+byToken["b"].Emission, 1.0) {
		t.Errorf("a+b = %v, want 1.0", byToken["a"].Emission+byToken["b"].Emission)
	}
}

func TestScoreAllOutOfRangeYieldsZeroEmissions(t *testing.T) {
	pool := domain.PoolKey("solana:pC")
	positions := []domain.Position{
		{Miner: "a", Pool: pool, TokenID: "a", TickLower: -1, TickUpper: 1, Liquidity: domain.NewLiquidity(1000)},
	}
	ticks := map[domain.PoolKey]domain.PoolTick{pool: {Pool: pool, Tick: 10_000_001, Subnet: 1}}
	weights := domain.PoolWeights{pool: 1}

	emissions := scorer.Score(positions, ticks, weights, 1)
	if emissions[0].Score != 0 || emissions[0].Emission != 0 {
		t.Errorf("out-of-range position got score=%v emission=%v, want 0/0", emissions[0].Score, emissions[0].Emission)
	}
}

func TestScoreZeroLiquidityYieldsZeroScoreEvenInRange(t *testing.T) {
	pool := domain.PoolKey("solana:pD")
	positions := []domain.Position{
		{Miner: "a", Pool: pool, TokenID: "a", TickLower: -1, TickUpper: 1, Liquidity: domain.ZeroLiquidity},
	}
	ticks := map[domain.PoolKey]domain.PoolTick{pool: {Pool: pool, Tick: 0, Subnet: 1}}
	weights := domain.PoolWeights{pool: 1}

	emissions := scorer.Score(positions, ticks, weights, 1)
	if emissions[0].Score != 0 || emissions[0].Emission != 0 {
		t.Errorf("zero-liquidity position got score=%v emission=%v, want 0/0", emissions[0].Score, emissions[0].Emission)
	}
}

func TestScoreMonotonicWithDoubledLiquidity(t *testing.T) {
	pool := domain.PoolKey("solana:pE")
	base := domain.Position{Pool: pool, TokenID: "a", TickLower: -5, TickUpper: 5, Liquidity: domain.NewLiquidity(500)}
	doubled := base
	doubled.Liquidity = domain.NewLiquidity(1000)

	ticks := map[domain.PoolKey]domain.PoolTick{pool: {Pool: pool, Tick: 0, Subnet: 1}}
	weights := domain.PoolWeights{pool: 1}

	baseEmissions := scorer.Score([]domain.Position{base}, ticks, weights, 1)
	doubledEmissions := scorer.Score([]domain.Position{doubled}, ticks, weights, 1)

	if !almostEqual(doubledEmissions[0].Score, 2*baseEmissions[0].Score) {
		t.Errorf("doubled score = %v, want %v", doubledEmissions[0].Score, 2*baseEmissions[0].Score)
	}
}

func TestScoreMissingTickTreatedAsZero(t *testing.T) {
	pool := domain.PoolKey("solana:pF")
	positions := []domain.Position{
		{Miner: "a", Pool: pool, TokenID: "a", TickLower: -1, TickUpper: 1, Liquidity: domain.NewLiquidity(100)},
	}
	weights := domain.PoolWeights{pool: 1}

	emissions := scorer.Score(positions, nil, weights, 1)
	if emissions[0].CurrentTick != 0 {
		t.Errorf("CurrentTick = %d, want 0 for missing tick entry", emissions[0].CurrentTick)
	}
	if emissions[0].Score <= 0 {
		t.Errorf("score = %v, want > 0 (range includes 0)", emissions[0].Score)
	}
}
