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

// Package substrateclient is the process-wide singleton connection to the
// Bittensor substrate chain: hotkey/UID lookups, alpha prices, the
// current block number (used as version_key), and set_weights
// submission.
package substrateclient

// connState is the client's connection lifecycle.
type connState int

const (
	stateUninitialized connState = iota
	stateConnecting
	stateReady
	stateReconnecting
)

func (s connState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateConnecting:
		return "connecting"
	case stateReady:
		return "ready"
	case stateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
