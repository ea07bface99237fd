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

// Package chainadapter defines the per-chain adapter contract and the
// bounded-concurrency/retry helpers every concrete adapter shares.
package chainadapter

import (
	"context"

	"github.com/blinklabs-io/shai106/internal/domain"
)

// Adapter is implemented once per enabled ChainTag. Every method
// degrades to an empty result rather than returning an error for
// transient, absent-configuration or cancelled-context conditions; an
// error is returned only when a request cannot be encoded.
type Adapter interface {
	// Chain returns the ChainTag this adapter serves.
	Chain() domain.ChainTag

	// ListActivePools returns every pool the chain's staking contract
	// currently marks active, with its owning subnet.
	ListActivePools(ctx context.Context) ([]domain.Pool, error)

	// FetchCurrentTicks returns the current tick of every pool in
	// allowed. A nil allowed set means "all known pools". Pools whose
	// tick cannot be read are simply absent from the result, not an
	// error.
	FetchCurrentTicks(
		ctx context.Context,
		allowed map[domain.PoolKey]struct{},
	) (map[domain.PoolKey]domain.PoolTick, error)

	// FetchPositions returns every staked position whose registered
	// hotkey is in hotkeys.
	FetchPositions(
		ctx context.Context,
		hotkeys []domain.Hotkey,
	) ([]domain.Position, error)
}

// Registry dispatches to the Adapter registered for a ChainTag.
type Registry struct {
	adapters map[domain.ChainTag]Adapter
}

// NewRegistry builds a Registry from a set of adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.ChainTag]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Chain()] = a
	}
	return r
}

// Get returns the adapter registered for chain, if any.
func (r *Registry) Get(chain domain.ChainTag) (Adapter, bool) {
	a, ok := r.adapters[chain]
	return a, ok
}

// Chains returns the set of chains with a registered adapter.
func (r *Registry) Chains() []domain.ChainTag {
	out := make([]domain.ChainTag, 0, len(r.adapters))
	for c := range r.adapters {
		out = append(out, c)
	}
	return out
}

// All returns every registered adapter, in no particular order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}
