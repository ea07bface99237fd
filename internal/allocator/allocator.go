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

// Package allocator distributes a run's total reward across pools,
// given which subnet each pool belongs to and the market-priced alpha
// value of each subnet.
package allocator

import "github.com/blinklabs-io/shai106/internal/domain"

// Allocator computes a PoolWeights distribution (summing to <= 1) from
// the pools seen in a run, their subnets, and subnet alpha prices. The
// concrete policy (reserved-share vs chain-split) is selected by
// configuration.
type Allocator interface {
	Allocate(
		poolsBySubnet map[domain.SubnetID][]domain.PoolKey,
		poolChain map[domain.PoolKey]domain.ChainTag,
		alphaPrices map[domain.SubnetID]float64,
	) (domain.PoolWeights, domain.AlphaShareLog)
}

// PoolsBySubnet groups the pools seen in ticks by the subnet they
// belong to. The pools within each subnet's slice are in no particular
// order.
func PoolsBySubnet(ticks map[domain.PoolKey]domain.PoolTick) map[domain.SubnetID][]domain.PoolKey {
	out := make(map[domain.SubnetID][]domain.PoolKey)
	for pool, tick := range ticks {
		out[tick.Subnet] = append(out[tick.Subnet], pool)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
