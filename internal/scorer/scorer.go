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

// Package scorer computes per-position scores from tick ranges and
// current pool ticks, then distributes each pool's allocated reward
// across its in-range positions proportional to score.
package scorer

import (
	"math"
	"sort"

	"github.com/blinklabs-io/shai106/internal/domain"
)

// Score computes positions' in-range score and distributes poolWeights
// times totalReward across each pool's positions proportional to
// score. A pool missing from ticks is treated as having current tick 0.
// Iteration is in a fixed order (sorted by pool then token id) so
// floating-point accumulation is reproducible.
func Score(
	positions []domain.Position,
	ticks map[domain.PoolKey]domain.PoolTick,
	poolWeights domain.PoolWeights,
	totalReward float64,
) []domain.PositionEmission {
	sorted := make([]domain.Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Pool != sorted[j].Pool {
			return sorted[i].Pool < sorted[j].Pool
		}
		return sorted[i].TokenID < sorted[j].TokenID
	})

	byPool := make(map[domain.PoolKey][]domain.PositionEmission)
	var poolOrder []domain.PoolKey
	for _, p := range sorted {
		currentTick := ticks[p.Pool].Tick
		pe := domain.PositionEmission{Position: p, CurrentTick: currentTick}
		pe.Score = scoreOne(p, currentTick)
		if _, seen := byPool[p.Pool]; !seen {
			poolOrder = append(poolOrder, p.Pool)
		}
		byPool[p.Pool] = append(byPool[p.Pool], pe)
	}

	out := make([]domain.PositionEmission, 0, len(sorted))
	for _, pool := range poolOrder {
		pes := byPool[pool]
		poolReward := poolWeights[pool] * totalReward
		if poolReward <= 0 {
			out = append(out, pes...)
			continue
		}
		var scoreSum float64
		for _, pe := range pes {
			scoreSum += pe.Score
		}
		for i := range pes {
			if scoreSum > 0 {
				pes[i].Emission = pes[i].Score * poolReward / scoreSum
			}
		}
		out = append(out, pes...)
	}
	return out
}

func scoreOne(p domain.Position, currentTick int32) float64 {
	if !p.InRange(currentTick) {
		return 0
	}
	width := float64(p.Width())
	center := p.Center()
	distance := math.Abs(center - float64(currentTick))
	widthPenalty := 1 / math.Pow(width, 1.2)
	centerWeight := 1 / (1 + distance)
	return widthPenalty * centerWeight * p.Liquidity.Float64()
}
