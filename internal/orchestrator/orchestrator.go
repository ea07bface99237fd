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

// Package orchestrator drives one complete scoring-and-submission run:
// collect chain state, allocate pool weights, score positions,
// aggregate and smooth per-hotkey weights, scale to the on-chain
// integer vector, and submit it.
package orchestrator

import (
	"context"
	"time"

	"github.com/blinklabs-io/shai106/internal/allocator"
	"github.com/blinklabs-io/shai106/internal/chainadapter"
	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/blinklabs-io/shai106/internal/emastore"
	"github.com/blinklabs-io/shai106/internal/logging"
	"github.com/blinklabs-io/shai106/internal/scorer"
	"github.com/blinklabs-io/shai106/internal/signer"
	"github.com/blinklabs-io/shai106/internal/submissionlog"
	"github.com/blinklabs-io/shai106/internal/weightpolicy"

	"github.com/blinklabs-io/shai106/internal/aggregator"
)

// Substrate is the subset of substrateclient.Client the orchestrator
// depends on, so tests can fake it.
type Substrate interface {
	HotkeyToUID(ctx context.Context, netuid domain.SubnetID) (map[domain.Hotkey]domain.UID, error)
	SubnetAlphaPrices(ctx context.Context, netuids []domain.SubnetID) (map[domain.SubnetID]float64, error)
	CurrentBlockNumber(ctx context.Context) (uint64, error)
	SubmitSetWeights(ctx context.Context, netuid domain.SubnetID, uids []domain.UID, weights []uint16, versionKey uint64, s *signer.Signer) (string, error)
}

// Deps bundles every collaborator a run needs, replacing hidden global
// state with an explicit container.
type Deps struct {
	Registry    *chainadapter.Registry
	Substrate   Substrate
	Signer      *signer.Signer
	EmaStore    *emastore.Store
	Log         *submissionlog.Log
	Allocator   allocator.Allocator
	Netuid      domain.SubnetID
	Policy      weightpolicy.Params
	TotalReward float64
}

// Orchestrator runs the pipeline on a schedule.
type Orchestrator struct {
	deps Deps
}

// New returns an Orchestrator wired with deps.
func New(deps Deps) *Orchestrator {
	if deps.TotalReward == 0 {
		deps.TotalReward = 1.0
	}
	return &Orchestrator{deps: deps}
}

// RunOnce executes a single pipeline pass. Internal errors are logged
// and end the run without submitting; nothing is returned to the
// caller.
func (o *Orchestrator) RunOnce(ctx context.Context) {
	logger := logging.GetLogger()
	d := o.deps

	hotkeyToUID, err := d.Substrate.HotkeyToUID(ctx, d.Netuid)
	if err != nil {
		logger.Errorw("orchestrator: hotkey_to_uid failed, skipping run", "error", err)
		return
	}
	if len(hotkeyToUID) == 0 {
		logger.Errorw("orchestrator: empty hotkey_to_uid map, skipping run")
		return
	}
	hotkeys := make([]domain.Hotkey, 0, len(hotkeyToUID))
	for hotkey := range hotkeyToUID {
		hotkeys = append(hotkeys, hotkey)
	}

	var positions []domain.Position
	poolChain := make(map[domain.PoolKey]domain.ChainTag)
	for _, adp := range d.Registry.All() {
		pools, err := adp.ListActivePools(ctx)
		if err != nil {
			logger.Warnw("orchestrator: list active pools failed, continuing with positions", "chain", adp.Chain(), "error", err)
		}
		for _, p := range pools {
			poolChain[p.Key] = adp.Chain()
		}

		pos, err := adp.FetchPositions(ctx, hotkeys)
		if err != nil {
			logger.Warnw("orchestrator: fetch positions failed, skipping chain", "chain", adp.Chain(), "error", err)
			continue
		}
		positions = append(positions, pos...)
	}

	allowed := make(map[domain.PoolKey]struct{}, len(positions))
	for _, p := range positions {
		allowed[p.Pool] = struct{}{}
	}

	ticks := make(map[domain.PoolKey]domain.PoolTick)
	for _, adp := range d.Registry.All() {
		t, err := adp.FetchCurrentTicks(ctx, allowed)
		if err != nil {
			logger.Warnw("orchestrator: fetch current ticks failed, skipping chain", "chain", adp.Chain(), "error", err)
			continue
		}
		for k, v := range t {
			ticks[k] = v
		}
	}

	poolsBySubnet := allocator.PoolsBySubnet(ticks)
	subnets := make([]domain.SubnetID, 0, len(poolsBySubnet))
	for subnet := range poolsBySubnet {
		subnets = append(subnets, subnet)
	}

	alphaPrices, err := d.Substrate.SubnetAlphaPrices(ctx, subnets)
	if err != nil {
		logger.Warnw("orchestrator: subnet alpha prices failed, continuing with no prices", "error", err)
		alphaPrices = nil
	}

	poolWeights, alphaLog := d.Allocator.Allocate(poolsBySubnet, poolChain, alphaPrices)
	logger.Debugw("orchestrator: allocated pool weights", "poolWeights", poolWeights, "alphaLog", alphaLog)
	logger.Debugw("orchestrator: normalized pool weight breakdown", "normalized", allocator.Normalize(poolWeights))

	emissions := scorer.Score(positions, ticks, poolWeights, d.TotalReward)
	rawWeights := aggregator.Aggregate(emissions)

	var emaSnapshot domain.EmaMinerWeights
	if d.Policy.UseEma {
		emaSnapshot = d.EmaStore.Update(rawWeights)
	}

	vector := weightpolicy.Build(rawWeights, hotkeyToUID, emaSnapshot, d.Policy)

	versionKey, err := d.Substrate.CurrentBlockNumber(ctx)
	if err != nil {
		logger.Errorw("orchestrator: current block number failed, skipping submission", "error", err)
		return
	}

	txHash, err := d.Substrate.SubmitSetWeights(ctx, d.Netuid, vector.UIDs, vector.Weights, versionKey, d.Signer)
	if err != nil {
		logger.Errorw("orchestrator: submit set_weights failed", "error", err)
		return
	}

	weights := make(map[domain.UID]uint16, len(vector.UIDs))
	for i, uid := range vector.UIDs {
		weights[uid] = vector.Weights[i]
	}
	entry := domain.SubmissionLogEntry{
		Timestamp:  time.Now(),
		TxHash:     txHash,
		VersionKey: versionKey,
		Weights:    weights,
	}
	if err := d.Log.Append(entry); err != nil {
		logger.Warnw("orchestrator: submission log append failed", "error", err)
	}
	logger.Infow("orchestrator: submitted weights", "txHash", txHash, "versionKey", versionKey, "uids", len(vector.UIDs))
}
