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

import "github.com/blinklabs-io/shai106/internal/domain"

// ChainSplitAllocator is the policy-variant allocator: subnet 0's
// reserved share is split equally between Solana and EVM pools, and
// subnet 106's reserved share goes only to EVM pools. Everything else
// follows ReservedShareAllocator's remaining-share distribution.
type ChainSplitAllocator struct {
	ReservedShareSubnet0   float64
	ReservedShareSubnet106 float64
}

// Allocate implements Allocator.
func (a ChainSplitAllocator) Allocate(
	poolsBySubnet map[domain.SubnetID][]domain.PoolKey,
	poolChain map[domain.PoolKey]domain.ChainTag,
	alphaPrices map[domain.SubnetID]float64,
) (domain.PoolWeights, domain.AlphaShareLog) {
	weights := make(domain.PoolWeights)

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

	var solana0, evm0 []domain.PoolKey
	for _, p := range pools0 {
		if poolChain[p] == domain.ChainSolana {
			solana0 = append(solana0, p)
		} else {
			evm0 = append(evm0, p)
		}
	}
	if r0 > 0 {
		half := r0 / 2
		if len(solana0) > 0 {
			share := half / float64(len(solana0))
			for _, p := range solana0 {
				weights[p] += share
			}
		}
		if len(evm0) > 0 {
			share := half / float64(len(evm0))
			for _, p := range evm0 {
				weights[p] += share
			}
		}
	}

	var evm106 []domain.PoolKey
	for _, p := range pools106 {
		if poolChain[p] != domain.ChainSolana {
			evm106 = append(evm106, p)
		}
	}
	if r106 > 0 && len(evm106) > 0 {
		share := r106 / float64(len(evm106))
		for _, p := range evm106 {
			weights[p] += share
		}
	}

	remaining := 1 - r0 - r106
	if remaining < 0 {
		remaining = 0
	}

	residual := ReservedShareAllocator{}
	residualWeights, alphaLog := residual.allocateRemaining(poolsBySubnet, alphaPrices, remaining)
	for pool, w := range residualWeights {
		weights[pool] += w
	}

	return weights, alphaLog
}
