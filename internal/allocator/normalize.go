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

package allocator

import (
	"math"
	"sort"

	"github.com/blinklabs-io/shai106/internal/domain"
)

const normalizeUnit = 1e-4
const normalizeUnitsTotal = 10000

// Normalize takes an allocator's PoolWeights (which may sum to less
// than 1, since unallocated share goes nowhere) and produces a complete
// decimal breakdown: every weight is first rescaled proportionally so
// the total is 1.0 (folding in any unallocated share; an all-zero input
// is split equally), then quantized to a multiple of 1e-4 by flooring
// and a largest-remainder pass, so the result always sums to exactly 1.0.
// It is a diagnostic view only; scoring uses the un-normalized weights
// so that Allocate's own reserved-share invariants hold exactly.
func Normalize(weights domain.PoolWeights) domain.PoolWeights {
	out := make(domain.PoolWeights, len(weights))
	if len(weights) == 0 {
		return out
	}

	keys := make([]domain.PoolKey, 0, len(weights))
	var sum float64
	for k, w := range weights {
		keys = append(keys, k)
		sum += w
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	// Rescale to sum to exactly 1.0 first, folding in any unallocated
	// share; an all-zero input has nothing to scale proportionally, so
	// it is spread equally instead.
	normalized := make(map[domain.PoolKey]float64, len(keys))
	if sum > 0 {
		for _, k := range keys {
			normalized[k] = weights[k] / sum
		}
	} else {
		equal := 1.0 / float64(len(keys))
		for _, k := range keys {
			normalized[k] = equal
		}
	}

	type target struct {
		key   domain.PoolKey
		units int
		rem   float64
	}
	targets := make([]target, len(keys))
	assigned := 0
	for i, k := range keys {
		scaled := normalized[k] / normalizeUnit
		floor := math.Floor(scaled)
		targets[i] = target{key: k, units: int(floor), rem: scaled - floor}
		assigned += int(floor)
	}

	leftover := normalizeUnitsTotal - assigned
	if leftover >= 0 {
		sort.SliceStable(targets, func(i, j int) bool {
			if targets[i].rem != targets[j].rem {
				return targets[i].rem > targets[j].rem
			}
			return targets[i].key < targets[j].key
		})
		for i := 0; i < leftover && i < len(targets); i++ {
			targets[i].units++
		}
	} else {
		deficit := -leftover
		sort.SliceStable(targets, func(i, j int) bool {
			if targets[i].rem != targets[j].rem {
				return targets[i].rem < targets[j].rem
			}
			return targets[i].key < targets[j].key
		})
		for i := 0; i < len(targets) && deficit > 0; i++ {
			if targets[i].units == 0 {
				continue
			}
			targets[i].units--
			deficit--
		}
	}

	for _, t := range targets {
		out[t.key] = float64(t.units) * normalizeUnit
	}
	return out
}
