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

package chainadapter

import (
	"context"
	"sync"
)

// Chunk splits items into chunks of size chunkSize (the last chunk may
// be smaller).
func Chunk[T any](items []T, chunkSize int) [][]T {
	if chunkSize <= 0 {
		chunkSize = len(items)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	var out [][]T
	for i := 0; i < len(items); i += chunkSize {
		end := i + chunkSize
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

// BatchRunner fans work out across a bounded number of concurrent
// workers and collects results in input order. A single chunk's error
// is logged by the caller and contributes an empty result rather than
// aborting the whole run.
type BatchRunner[T, R any] struct {
	MaxConcurrent int
}

// Run invokes fn once per chunk of items, at most r.MaxConcurrent
// chunks in flight at a time, and returns the flattened results of the
// successful calls together with the errors of the failed ones (same
// index correspondence as chunks).
func (r BatchRunner[T, R]) Run(
	ctx context.Context,
	chunks [][]T,
	fn func(context.Context, []T) ([]R, error),
) ([]R, []error) {
	maxConcurrent := r.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([][]R, len(chunks))
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk []T) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := fn(ctx, chunk)
			results[i] = res
			errs[i] = err
		}(i, chunk)
	}
	wg.Wait()

	var out []R
	for _, res := range results {
		out = append(out, res...)
	}
	return out, errs
}
