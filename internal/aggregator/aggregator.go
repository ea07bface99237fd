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

// Package aggregator sums per-position emissions into per-hotkey raw
// weights.
package aggregator

import "github.com/blinklabs-io/shai106/internal/domain"

// Aggregate sums emission across every position belonging to each
// hotkey. Hotkeys with no positions produce no entry.
func Aggregate(emissions []domain.PositionEmission) domain.RawMinerWeights {
	out := make(domain.RawMinerWeights)
	for _, e := range emissions {
		out[e.Miner] += e.Emission
	}
	return out
}
