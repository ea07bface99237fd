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

package substrateclient

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestExtrinsicHashMatchesBlake2b256(t *testing.T) {
	extrinsic := []byte("a fake signed extrinsic payload")

	got := ExtrinsicHash(extrinsic)
	want := blake2b.Sum256(extrinsic)

	if got != want {
		t.Errorf("ExtrinsicHash = %x, want %x", got, want)
	}
}

func TestExtrinsicHashIsDeterministicAndInputSensitive(t *testing.T) {
	a := ExtrinsicHash([]byte("extrinsic-a"))
	b := ExtrinsicHash([]byte("extrinsic-a"))
	c := ExtrinsicHash([]byte("extrinsic-b"))

	if a != b {
		t.Errorf("same input produced different hashes: %x != %x", a, b)
	}
	if a == c {
		t.Errorf("different inputs produced the same hash: %x", a)
	}
}

func TestHexEncodePrefixesWithZeroX(t *testing.T) {
	hash := ExtrinsicHash([]byte("payload"))
	got := hexEncode(hash[:])

	if !bytes.HasPrefix([]byte(got), []byte("0x")) {
		t.Errorf("hexEncode(%x) = %q, want 0x-prefixed", hash, got)
	}
	if len(got) != 2+2*len(hash) {
		t.Errorf("len(hexEncode(...)) = %d, want %d", len(got), 2+2*len(hash))
	}
}
