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

// Package weightpolicy decides which hotkeys receive non-zero weight
// for a run and scales the result to the on-chain u16 vector format.
package weightpolicy

import "github.com/blinklabs-io/shai106/internal/domain"

// Params configures weight-submission decisions for a single run.
type Params struct {
	// UseEma selects the EMA map over raw weights when true.
	UseEma bool
	// Epsilon is the floor below which an EMA weight is treated as zero.
	Epsilon float64
	// BurnUID is the designated always-present UID (0).
	BurnUID domain.UID
	// BurnPercentage is in [0, 100].
	BurnPercentage float64
}

// Build runs the full decision tree: pick the eligible hotkey->weight
// map (raw or EMA, gated by hotkey_to_uid membership), fall back to an
// all-zero vector when nothing is in range, then scale to u16.
func Build(
	raw domain.RawMinerWeights,
	hotkeyToUID map[domain.Hotkey]domain.UID,
	ema domain.EmaMinerWeights,
	params Params,
) domain.SubmissionVector {
	anyPositive := false
	for _, w := range raw {
		if w > 0 {
			anyPositive = true
			break
		}
	}

	if !anyPositive {
		return allZero(hotkeyToUID, params.BurnUID)
	}

	submit := make(map[domain.UID]float64, len(hotkeyToUID))
	for _, uid := range hotkeyToUID {
		submit[uid] = 0
	}

	if params.UseEma {
		for hotkey, w := range ema {
			if w <= params.Epsilon {
				continue
			}
			uid, ok := hotkeyToUID[hotkey]
			if !ok {
				continue
			}
			submit[uid] = w
		}
	} else {
		for hotkey, w := range raw {
			if w <= 0 {
				continue
			}
			uid, ok := hotkeyToUID[hotkey]
			if !ok {
				continue
			}
			submit[uid] = w
		}
	}

	return Scale(submit, params.BurnUID, params.BurnPercentage)
}

// allZero produces a vector with every known UID, including the burn
// UID, set to weight 0.
func allZero(hotkeyToUID map[domain.Hotkey]domain.UID, burnUID domain.UID) domain.SubmissionVector {
	seen := map[domain.UID]bool{burnUID: true}
	uids := []domain.UID{burnUID}
	for _, uid := range hotkeyToUID {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		uids = append(uids, uid)
	}
	sortUIDs(uids)
	weights := make([]uint16, len(uids))
	return domain.SubmissionVector{UIDs: uids, Weights: weights}
}
