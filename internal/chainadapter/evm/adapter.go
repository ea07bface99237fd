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

package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/shai106/internal/chainadapter"
	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/blinklabs-io/shai106/internal/logging"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller is the narrow slice of ethclient.Client the adapter
// needs. Production wiring uses *ethclient.Client; tests use a fake.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Adapter implements chainadapter.Adapter for an EVM chain (Ethereum or
// Base) running the SN106 staking registry contract in front of a
// Uniswap-v3-style CLMM deployment.
type Adapter struct {
	chain                domain.ChainTag
	client               ContractCaller
	registryAddr         common.Address
	positionManagerAddr  common.Address
	retry                chainadapter.RetryPolicy
	maxConcurrentBatches int
}

// New builds an EVM adapter for the given chain tag. client may be a
// thin wrapper over ethclient.Dial(rpcURL).
func New(
	chain domain.ChainTag,
	client ContractCaller,
	registryAddr, positionManagerAddr common.Address,
	maxConcurrentBatches int,
) *Adapter {
	return &Adapter{
		chain:                chain,
		client:               client,
		registryAddr:         registryAddr,
		positionManagerAddr:  positionManagerAddr,
		retry:                chainadapter.DefaultRetryPolicy(),
		maxConcurrentBatches: maxConcurrentBatches,
	}
}

// Chain implements chainadapter.Adapter.
func (a *Adapter) Chain() domain.ChainTag { return a.chain }

func (a *Adapter) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var out []byte
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		out, innerErr = a.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
		return innerErr
	})
	return out, err
}

// ListActivePools implements chainadapter.Adapter.
func (a *Adapter) ListActivePools(ctx context.Context) ([]domain.Pool, error) {
	logger := logging.GetLogger()
	if a.client == nil || a.registryAddr == (common.Address{}) {
		return nil, nil
	}

	data, err := stakingRegistryABI.Pack("getAllPools")
	if err != nil {
		return nil, fmt.Errorf("evm: pack getAllPools: %w", err)
	}
	raw, err := a.call(ctx, a.registryAddr, data)
	if err != nil {
		logger.Warnw("evm: list active pools failed, degrading to empty", "chain", a.chain, "error", err)
		return nil, nil
	}

	var decoded []registryPool
	if err := stakingRegistryABI.UnpackIntoInterface(&decoded, "getAllPools", raw); err != nil {
		logger.Warnw("evm: undecodable getAllPools response", "chain", a.chain, "error", err)
		return nil, nil
	}

	pools := make([]domain.Pool, 0, len(decoded))
	for _, rp := range decoded {
		if rp.Pool == (common.Address{}) || !rp.IsActive {
			continue
		}
		pools = append(pools, domain.Pool{
			Key:      domain.NewPoolKey(a.chain, rp.Pool.Hex()),
			Subnet:   domain.SubnetID(rp.SubnetId),
			IsActive: rp.IsActive,
		})
	}
	return pools, nil
}

// FetchCurrentTicks implements chainadapter.Adapter.
func (a *Adapter) FetchCurrentTicks(
	ctx context.Context,
	allowed map[domain.PoolKey]struct{},
) (map[domain.PoolKey]domain.PoolTick, error) {
	logger := logging.GetLogger()
	out := make(map[domain.PoolKey]domain.PoolTick)
	if a.client == nil {
		return out, nil
	}

	pools, err := a.ListActivePools(ctx)
	if err != nil {
		return out, nil
	}

	type poolRef struct {
		key  domain.PoolKey
		addr common.Address
	}
	var refs []poolRef
	for _, p := range pools {
		if allowed != nil {
			if _, ok := allowed[p.Key]; !ok {
				continue
			}
		}
		nativeID := string(p.Key[len(a.chain)+1:])
		if !common.IsHexAddress(nativeID) {
			continue
		}
		refs = append(refs, poolRef{key: p.Key, addr: common.HexToAddress(nativeID)})
	}
	if len(refs) == 0 {
		return out, nil
	}

	data, err := clmmPoolABI.Pack("slot0")
	if err != nil {
		return out, fmt.Errorf("evm: pack slot0: %w", err)
	}

	type tickResult struct {
		key  domain.PoolKey
		tick int32
	}
	runner := chainadapter.BatchRunner[poolRef, tickResult]{MaxConcurrent: a.maxConcurrentBatches}
	results, errs := runner.Run(
		ctx,
		chainadapter.Chunk(refs, 1),
		func(ctx context.Context, chunk []poolRef) ([]tickResult, error) {
			ref := chunk[0]
			raw, err := a.call(ctx, ref.addr, data)
			if err != nil {
				return nil, err
			}
			var slot0 struct {
				SqrtPriceX96               *big.Int
				Tick                       *big.Int
				ObservationIndex           uint16
				ObservationCardinality     uint16
				ObservationCardinalityNext uint16
				FeeProtocol                uint8
				Unlocked                   bool
			}
			if err := clmmPoolABI.UnpackIntoInterface(&slot0, "slot0", raw); err != nil {
				return nil, err
			}
			return []tickResult{{key: ref.key, tick: int32(slot0.Tick.Int64())}}, nil
		},
	)
	for i, err := range errs {
		if err != nil {
			logger.Warnw("evm: fetch current tick failed, skipping", "chain", a.chain, "error", err, "pool", refs[i].key)
		}
	}
	for _, r := range results {
		subnet, _ := poolSubnet(pools, r.key)
		out[r.key] = domain.PoolTick{Pool: r.key, Tick: r.tick, Subnet: subnet}
	}
	return out, nil
}

func poolSubnet(pools []domain.Pool, key domain.PoolKey) (domain.SubnetID, bool) {
	for _, p := range pools {
		if p.Key == key {
			return p.Subnet, true
		}
	}
	return 0, false
}

// FetchPositions implements chainadapter.Adapter.
func (a *Adapter) FetchPositions(
	ctx context.Context,
	hotkeys []domain.Hotkey,
) ([]domain.Position, error) {
	logger := logging.GetLogger()
	if a.client == nil || len(hotkeys) == 0 {
		return nil, nil
	}

	addrs := make([]common.Address, 0, len(hotkeys))
	wanted := make(map[common.Address]domain.Hotkey, len(hotkeys))
	for _, h := range hotkeys {
		if !common.IsHexAddress(string(h)) {
			continue
		}
		addr := common.HexToAddress(string(h))
		addrs = append(addrs, addr)
		wanted[addr] = h
	}
	if len(addrs) == 0 {
		return nil, nil
	}

	data, err := stakingRegistryABI.Pack("getStakesByMultipleHotkeys", addrs)
	if err != nil {
		return nil, fmt.Errorf("evm: pack getStakesByMultipleHotkeys: %w", err)
	}
	raw, err := a.call(ctx, a.registryAddr, data)
	if err != nil {
		logger.Warnw("evm: fetch stakes failed, degrading to empty", "chain", a.chain, "error", err)
		return nil, nil
	}

	var stakes []registryStake
	if err := stakingRegistryABI.UnpackIntoInterface(&stakes, "getStakesByMultipleHotkeys", raw); err != nil {
		logger.Warnw("evm: undecodable getStakesByMultipleHotkeys response", "chain", a.chain, "error", err)
		return nil, nil
	}

	type stakeRef struct {
		hotkey  domain.Hotkey
		pool    common.Address
		tokenID *big.Int
	}
	var refs []stakeRef
	for _, s := range stakes {
		hotkey, ok := wanted[s.Hotkey]
		if !ok {
			continue
		}
		refs = append(refs, stakeRef{hotkey: hotkey, pool: s.Pool, tokenID: s.TokenId})
	}
	if len(refs) == 0 {
		return nil, nil
	}

	posData := make([][]byte, len(refs))
	for i, ref := range refs {
		d, err := positionManagerABI.Pack("positions", ref.tokenID)
		if err != nil {
			return nil, fmt.Errorf("evm: pack positions: %w", err)
		}
		posData[i] = d
	}

	runner := chainadapter.BatchRunner[int, domain.Position]{MaxConcurrent: a.maxConcurrentBatches}
	indices := make([]int, len(refs))
	for i := range indices {
		indices[i] = i
	}
	results, errs := runner.Run(
		ctx,
		chainadapter.Chunk(indices, 1),
		func(ctx context.Context, chunk []int) ([]domain.Position, error) {
			i := chunk[0]
			raw, err := a.call(ctx, a.positionManagerAddr, posData[i])
			if err != nil {
				return nil, err
			}
			var pos struct {
				Nonce                    *big.Int
				Operator                 common.Address
				Token0                   common.Address
				Token1                   common.Address
				Fee                      *big.Int
				TickLower                *big.Int
				TickUpper                *big.Int
				Liquidity                *big.Int
				FeeGrowthInside0LastX128 *big.Int
				FeeGrowthInside1LastX128 *big.Int
				TokensOwed0              *big.Int
				TokensOwed1              *big.Int
			}
			if err := positionManagerABI.UnpackIntoInterface(&pos, "positions", raw); err != nil {
				return nil, err
			}
			tickLower := int32(pos.TickLower.Int64())
			tickUpper := int32(pos.TickUpper.Int64())
			if tickLower > tickUpper {
				return nil, nil
			}
			ref := refs[i]
			return []domain.Position{{
				Miner:     ref.hotkey,
				Chain:     a.chain,
				Pool:      domain.NewPoolKey(a.chain, ref.pool.Hex()),
				TokenID:   ref.tokenID.String(),
				TickLower: tickLower,
				TickUpper: tickUpper,
				Liquidity: domain.NewLiquidityFromBigInt(pos.Liquidity),
			}}, nil
		},
	)
	for i, err := range errs {
		if err != nil {
			logger.Warnw("evm: fetch position failed, skipping", "chain", a.chain, "error", err, "index", i)
		}
	}
	return results, nil
}
