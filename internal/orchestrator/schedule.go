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

package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/blinklabs-io/shai106/internal/logging"
)

// Schedule configures the run interval.
type Schedule struct {
	// Interval is the fixed tick period when Randomize is false.
	Interval time.Duration
	// Randomize, when true, picks a uniform random interval in
	// [RandomMin, RandomMax] for every tick instead of the fixed one.
	Randomize bool
	RandomMin time.Duration
	RandomMax time.Duration
}

func (s Schedule) next() time.Duration {
	if !s.Randomize || s.RandomMax <= s.RandomMin {
		return s.Interval
	}
	span := s.RandomMax - s.RandomMin
	return s.RandomMin + time.Duration(rand.Int63n(int64(span)))
}

// Run drives RunOnce on sched's interval until ctx is cancelled. A tick
// that fires while a run is still in progress is dropped rather than
// queued, since RunOnce is not reentrant against the EMA store or the
// substrate client's connection.
func (o *Orchestrator) Run(ctx context.Context, sched Schedule) {
	logger := logging.GetLogger()
	busy := make(chan struct{}, 1)
	busy <- struct{}{}

	timer := time.NewTimer(sched.next())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("orchestrator: shutting down")
			return
		case <-timer.C:
			select {
			case <-busy:
				go func() {
					defer func() { busy <- struct{}{} }()
					o.RunOnce(ctx)
				}()
			default:
				logger.Warn("orchestrator: previous run still in progress, dropping this tick")
			}
			timer.Reset(sched.next())
		}
	}
}
