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
	"sort"

	"github.com/blinklabs-io/shai106/internal/domain"
)

// ReservedShareAllocator is the normative pool-weight allocation policy:
// two reserved shares for subnet 0 and subnet 106, the remainder split
// across other subnets in proportion to alpha price, equally within a
// subnet.
type ReservedShareAllocator struct {
	ReservedShareSubnet0   float64
	ReservedShareSubnet106 float64
}

// Allocate implements Allocator.
func (a ReservedShareAllocator) Allocate(
	poolsBySubnet map[domain.SubnetID][]domain.PoolKey,
	_ map[domain.PoolKey]domain.ChainTag,
	alphaPrices map[domain.SubnetID]float64,
) (domain.PoolWeights, domain.AlphaShareLog) {
	weights := make(domain.PoolWeights)
	alphaLog := make(domain.AlphaShareLog)

	pools0 := poolsBySubnet[domain.SubnetZero]
	pools106 := poolsBySubnet[domain.SubnetSelf]

	r0 := clamp(a.ReservedShareSubnet0, 0, 1)
	if len(pools0) == 0 {
		r0 = 0
	}
	r106 := clamp(a.ReservedShareSubnet106, 0, 1-r0)
	if len(pools106) == 0 {
		r106 = 0
	}
	remaining := 1 - r0 - r106
	if remaining < 0 {
		remaining = 0
	}

	if len(pools0) > 0 {
		share := r0 / float64(len(pools0))
		for _, p := range pools0 {
			weights[p] += share
		}
	}
	if len(pools106) > 0 {
		share := r106 / float64(len(pools106))
		for _, p := range pools106 {
			weights[p] += share
		}
	}

	residualWeights, residualLog := a.allocateRemaining(poolsBySubnet, alphaPrices, remaining)
	for pool, w := range residualWeights {
		weights[pool] += w
	}
	for subnet, price := range residualLog {
		alphaLog[subnet] = price
	}

	return weights, alphaLog
}

// allocateRemaining distributes remaining across every subnet other
// than 0 and 106, proportional to alpha price (or equally, if no
// other-subnet alpha price is positive), and equally across a subnet's
// own pools.
func (a ReservedShareAllocator) allocateRemaining(
	poolsBySubnet map[domain.SubnetID][]domain.PoolKey,
	alphaPrices map[domain.SubnetID]float64,
	remaining float64,
) (domain.PoolWeights, domain.AlphaShareLog) {
	weights := make(domain.PoolWeights)
	alphaLog := make(domain.AlphaShareLog)

	otherSubnets := make([]domain.SubnetID, 0, len(poolsBySubnet))
	for subnet := range poolsBySubnet {
		if subnet == domain.SubnetZero || subnet == domain.SubnetSelf {
			continue
		}
		otherSubnets = append(otherSubnets, subnet)
	}
	sort.Slice(otherSubnets, func(i, j int) bool { return otherSubnets[i] < otherSubnets[j] })

	if remaining <= 0 || len(otherSubnets) == 0 {
		return weights, alphaLog
	}

	var alphaSum float64
	for _, subnet := range otherSubnets {
		alphaSum += alphaPrices[subnet]
	}
	if alphaSum > 0 {
		for _, subnet := range otherSubnets {
			price := alphaPrices[subnet]
			alphaLog[subnet] = price
			if price <= 0 {
				continue
			}
			subnetShare := remaining * price / alphaSum
			pools := poolsBySubnet[subnet]
			if len(pools) == 0 {
				continue
			}
			perPool := subnetShare / float64(len(pools))
			for _, p := range pools {
				weights[p] += perPool
			}
		}
		return weights, alphaLog
	}

	var totalOtherPools int
	for _, subnet := range otherSubnets {
		totalOtherPools += len(poolsBySubnet[subnet])
	}
	if totalOtherPools > 0 {
		perPool := remaining / float64(totalOtherPools)
		for _, subnet := range otherSubnets {
			for _, p := range poolsBySubnet[subnet] {
				weights[p] += perPool
			}
		}
	}
	return weights, alphaLog
}
