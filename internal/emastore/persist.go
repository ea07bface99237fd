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

package emastore

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/blinklabs-io/shai106/internal/config"
	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const emaSnapshotKey = "emastore_snapshot"

// Snapshotter persists and restores a Store's map across process
// restarts so a crash does not force every hotkey to re-warm from
// scratch.
type Snapshotter struct {
	db *badger.DB
}

// OpenSnapshotter opens (creating if absent) the badger database under
// the configured storage directory.
func OpenSnapshotter() (*Snapshotter, error) {
	cfg := config.GetConfig()
	dbPath := filepath.Join(cfg.Storage.Directory, "emastore")

	opts := badger.DefaultOptions(dbPath).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open emastore snapshot db: %w", err)
	}
	return &Snapshotter{db: db}, nil
}

// Close closes the underlying database.
func (s *Snapshotter) Close() error {
	return s.db.Close()
}

// Persist writes the store's current map as the latest snapshot. A
// single badger transaction commit is already atomic with respect to
// crash recovery, so no separate temp-file rename is needed.
func (s *Snapshotter) Persist(store *Store) error {
	store.mu.Lock()
	data, err := json.Marshal(store.ema)
	store.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal ema snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(emaSnapshotKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist ema snapshot: %w", err)
	}
	return nil
}

// Load restores a previously persisted map into store. A missing
// snapshot (fresh install) is not an error; store is left empty.
func (s *Snapshotter) Load(store *Store) error {
	var ema domain.EmaMinerWeights

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(emaSnapshotKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ema)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to load ema snapshot: %w", err)
	}
	if ema != nil {
		store.replace(ema)
	}
	return nil
}
