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

package solana

import (
	"context"

	"github.com/blinklabs-io/shai106/internal/chainadapter"
	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/blinklabs-io/shai106/internal/logging"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// AccountReader is the narrow slice of the Solana RPC API the adapter
// needs. Production wiring uses *rpc.Client; tests use a fake.
type AccountReader interface {
	GetProgramAccountsWithOpts(
		ctx context.Context,
		programID solanago.PublicKey,
		opts *rpc.GetProgramAccountsOpts,
	) (rpc.GetProgramAccountsResult, error)
	GetMultipleAccounts(
		ctx context.Context,
		accounts ...solanago.PublicKey,
	) (*rpc.GetMultipleAccountsResult, error)
}

// Adapter implements chainadapter.Adapter for the SN106 staking program
// deployed on Solana, which wraps Raydium CLMM positions.
type Adapter struct {
	client               AccountReader
	stakingProgram       solanago.PublicKey
	retry                chainadapter.RetryPolicy
	maxConcurrentBatches int
}

// New builds a Solana adapter. client may be a thin wrapper over
// rpc.New(rpcURL); stakingProgramID is the base58 staking program
// address.
func New(client AccountReader, stakingProgramID string, maxConcurrentBatches int) (*Adapter, error) {
	programID, err := solanago.PublicKeyFromBase58(stakingProgramID)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		client:               client,
		stakingProgram:       programID,
		retry:                chainadapter.DefaultRetryPolicy(),
		maxConcurrentBatches: maxConcurrentBatches,
	}, nil
}

// Chain implements chainadapter.Adapter.
func (a *Adapter) Chain() domain.ChainTag { return domain.ChainSolana }

// ListActivePools implements chainadapter.Adapter.
func (a *Adapter) ListActivePools(ctx context.Context) ([]domain.Pool, error) {
	logger := logging.GetLogger()
	if a.client == nil || a.stakingProgram.IsZero() {
		return nil, nil
	}

	var result rpc.GetProgramAccountsResult
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = a.client.GetProgramAccountsWithOpts(ctx, a.stakingProgram, &rpc.GetProgramAccountsOpts{})
		return innerErr
	})
	if err != nil {
		logger.Warnw("solana: list active pools failed, degrading to empty", "error", err)
		return nil, nil
	}

	pools := make([]domain.Pool, 0, len(result))
	for _, acct := range result {
		data := acct.Account.Data.GetBinary()
		rec, err := DecodePoolRecord(data)
		if err != nil {
			logger.Warnw("solana: skipping undecodable pool record", "error", err)
			continue
		}
		if IsZeroPubkey(rec.PoolPubkey) || !rec.IsActive {
			continue
		}
		pools = append(pools, domain.Pool{
			Key:      domain.NewPoolKey(domain.ChainSolana, solanago.PublicKey(rec.PoolPubkey).String()),
			Subnet:   domain.SubnetID(rec.SubnetID),
			IsActive: rec.IsActive,
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

	var keys []solanago.PublicKey
	var poolKeys []domain.PoolKey
	for _, p := range pools {
		if allowed != nil {
			if _, ok := allowed[p.Key]; !ok {
				continue
			}
		}
		nativeID := string(p.Key[len(domain.ChainSolana)+1:])
		pk, err := solanago.PublicKeyFromBase58(nativeID)
		if err != nil {
			continue
		}
		keys = append(keys, pk)
		poolKeys = append(poolKeys, p.Key)
	}
	if len(keys) == 0 {
		return out, nil
	}

	// accountRef pairs an account address with the PoolKey it came from,
	// so chunking and fanning out preserve the association without any
	// separate index bookkeeping.
	type accountRef struct {
		poolKey domain.PoolKey
		account solanago.PublicKey
	}
	refs := make([]accountRef, len(keys))
	for i := range keys {
		refs[i] = accountRef{poolKey: poolKeys[i], account: keys[i]}
	}

	type tickResult struct {
		key  domain.PoolKey
		tick int32
	}

	const maxAccountsPerCall = 100
	runner := chainadapter.BatchRunner[accountRef, tickResult]{MaxConcurrent: a.maxConcurrentBatches}
	results, errs := runner.Run(
		ctx,
		chainadapter.Chunk(refs, maxAccountsPerCall),
		func(ctx context.Context, chunk []accountRef) ([]tickResult, error) {
			accounts := make([]solanago.PublicKey, len(chunk))
			for i, r := range chunk {
				accounts[i] = r.account
			}
			var resp *rpc.GetMultipleAccountsResult
			err := a.retry.Do(ctx, func(ctx context.Context) error {
				var innerErr error
				resp, innerErr = a.client.GetMultipleAccounts(ctx, accounts...)
				return innerErr
			})
			if err != nil {
				return nil, err
			}
			var ticks []tickResult
			for i, acct := range resp.Value {
				if acct == nil {
					continue
				}
				tick, derr := DecodeCLMMTickCurrent(acct.Data.GetBinary())
				if derr != nil {
					continue
				}
				ticks = append(ticks, tickResult{key: chunk[i].poolKey, tick: tick})
			}
			return ticks, nil
		},
	)
	for i, err := range errs {
		if err != nil {
			logger.Warnw("solana: fetch current ticks chunk failed, skipping", "error", err, "chunk", i)
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

	wanted := make(map[domain.Hotkey]struct{}, len(hotkeys))
	for _, h := range hotkeys {
		wanted[h] = struct{}{}
	}

	var result rpc.GetProgramAccountsResult
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = a.client.GetProgramAccountsWithOpts(ctx, a.stakingProgram, &rpc.GetProgramAccountsOpts{})
		return innerErr
	})
	if err != nil {
		logger.Warnw("solana: fetch positions failed, degrading to empty", "error", err)
		return nil, nil
	}

	var positions []domain.Position
	for _, acct := range result {
		rec, err := DecodeStakeRecord(acct.Account.Data.GetBinary())
		if err != nil {
			continue
		}
		if IsZeroPubkey(rec.PositionMint) || IsZeroPubkey(rec.PoolPubkey) {
			continue
		}
		hotkey := domain.Hotkey(solanago.PublicKey(rec.OwnerHotkey).String())
		if _, ok := wanted[hotkey]; !ok {
			continue
		}
		if rec.TickLower > rec.TickUpper {
			continue
		}
		liquidity := domain.NewLiquidityFromBigInt(bigIntFromBE(rec.LiquidityBigEndianBytes()))
		positions = append(positions, domain.Position{
			Miner:     hotkey,
			Chain:     domain.ChainSolana,
			Pool:      domain.NewPoolKey(domain.ChainSolana, solanago.PublicKey(rec.PoolPubkey).String()),
			TokenID:   solanago.PublicKey(rec.PositionMint).String(),
			TickLower: rec.TickLower,
			TickUpper: rec.TickUpper,
			Liquidity: liquidity,
		})
	}
	return positions, nil
}
