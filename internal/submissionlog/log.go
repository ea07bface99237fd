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

// Package submissionlog appends a durable record of every successful
// set_weights submission to a flat JSON file.
package submissionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blinklabs-io/shai106/internal/domain"
)

const historyFileName = "weights_history.json"

// Log appends submission records to <dir>/weights/weights_history.json,
// rewriting the whole array under a mutex so concurrent appends (there
// are none in normal operation, since the orchestrator is
// single-threaded) can never interleave.
type Log struct {
	mu   sync.Mutex
	path string
}

// Open returns a Log rooted at dir, creating the weights/ subdirectory
// if absent.
func Open(dir string) (*Log, error) {
	weightsDir := filepath.Join(dir, "weights")
	if err := os.MkdirAll(weightsDir, 0o755); err != nil {
		return nil, fmt.Errorf("submissionlog: create weights dir: %w", err)
	}
	return &Log{path: filepath.Join(weightsDir, historyFileName)}, nil
}

// Append adds entry to the history file. A failure here is logged by
// the caller and must never fail the submission it is recording.
func (l *Log) Append(entry domain.SubmissionLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.readLocked()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("submissionlog: marshal history: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("submissionlog: write temp file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("submissionlog: rename temp file: %w", err)
	}
	return nil
}

// All returns every recorded entry, oldest first.
func (l *Log) All() ([]domain.SubmissionLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

func (l *Log) readLocked() ([]domain.SubmissionLogEntry, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("submissionlog: read history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []domain.SubmissionLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("submissionlog: unmarshal history: %w", err)
	}
	return entries, nil
}
