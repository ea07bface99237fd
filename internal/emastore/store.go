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

// Package emastore smooths per-hotkey raw weights across runs with an
// exponential moving average, so a single bad or empty run does not
// zero out a miner's submitted weight.
package emastore

import (
	"math"
	"sync"

	"github.com/blinklabs-io/shai106/internal/domain"
)

const (
	// DefaultAlpha is the smoothing factor applied to the current run's
	// eligible weights.
	DefaultAlpha = 0.3
	// DefaultEpsilon is the floor below which a decayed hotkey is
	// treated as zero and omitted from submission.
	DefaultEpsilon = 1e-6
)

// Store holds the process's current EMA map in memory and updates it
// in place as new runs complete.
type Store struct {
	mu      sync.Mutex
	alpha   float64
	epsilon float64
	ema     domain.EmaMinerWeights
}

// New returns a Store with the given smoothing parameters. alpha <= 0
// or > 1 falls back to DefaultAlpha; epsilon < 0 falls back to
// DefaultEpsilon.
func New(alpha, epsilon float64) *Store {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	if epsilon < 0 {
		epsilon = DefaultEpsilon
	}
	return &Store{
		alpha:   alpha,
		epsilon: epsilon,
		ema:     make(domain.EmaMinerWeights),
	}
}

// Update applies the EMA rule for one run's raw weights and returns the
// resulting map. A run with no positive, finite raw weight leaves the
// store untouched (neither decayed nor refreshed) and returns a copy of
// the prior map.
func (s *Store) Update(raw domain.RawMinerWeights) domain.EmaMinerWeights {
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := make(domain.RawMinerWeights)
	for hotkey, w := range raw {
		if w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
			eligible[hotkey] = w
		}
	}
	if len(eligible) == 0 {
		return s.snapshotLocked()
	}

	next := make(domain.EmaMinerWeights, len(s.ema)+len(eligible))
	for hotkey := range s.ema {
		next[hotkey] = 0
	}
	for hotkey := range eligible {
		next[hotkey] = 0
	}
	for hotkey := range next {
		v := s.alpha*eligible[hotkey] + (1-s.alpha)*s.ema[hotkey]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		next[hotkey] = v
	}
	s.ema = next
	return s.snapshotLocked()
}

// Snapshot returns a copy of the current EMA map with hotkeys below
// epsilon omitted.
func (s *Store) Snapshot() domain.EmaMinerWeights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.EmaMinerWeights {
	out := make(domain.EmaMinerWeights, len(s.ema))
	for hotkey, w := range s.ema {
		if w < s.epsilon {
			continue
		}
		out[hotkey] = w
	}
	return out
}

// replace overwrites the in-memory map wholesale, used when restoring
// from a prior run's persisted snapshot.
func (s *Store) replace(ema domain.EmaMinerWeights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(domain.EmaMinerWeights, len(ema))
	for hotkey, w := range ema {
		cp[hotkey] = w
	}
	s.ema = cp
}
