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
	"encoding/hex"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/shai106/internal/domain"
	"golang.org/x/crypto/blake2b"
)

// SetWeightsCall is the set_weights(netuid, uids[], weights_u16[],
// version_key) extrinsic call, struct-as-array encoded the same way the
// teacher encodes its own fixed-shape on-chain records.
type SetWeightsCall struct {
	cbor.StructAsArray
	Netuid     uint16
	Uids       []domain.UID
	Weights    []uint16
	VersionKey uint64
}

// Encode returns the call's wire encoding, the payload that gets signed
// and wrapped into a signed extrinsic.
func (c SetWeightsCall) Encode() ([]byte, error) {
	return cbor.Encode(&c)
}

// signedExtrinsic is the outer envelope: public key, signature, and the
// inner call payload, struct-as-array encoded like the call itself.
type signedExtrinsic struct {
	cbor.StructAsArray
	PublicKey []byte
	Signature []byte
	Payload   []byte
}

// EncodeSignedExtrinsic wraps a signed call payload for submission via
// author_submitExtrinsic.
func EncodeSignedExtrinsic(publicKey, signature, payload []byte) ([]byte, error) {
	env := signedExtrinsic{
		PublicKey: publicKey,
		Signature: signature,
		Payload:   payload,
	}
	return cbor.Encode(&env)
}

// ExtrinsicHash returns the blake2b-256 hash of an encoded extrinsic,
// used to derive its transaction hash when the node's response omits
// one.
func ExtrinsicHash(extrinsic []byte) [32]byte {
	return blake2b.Sum256(extrinsic)
}

func hexEncode(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
