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

// Package signer derives the validator's extrinsic-signing keypair from
// its configured mnemonic.
package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/Salvionied/apollo/serialization/Key"
	"github.com/blinklabs-io/bursa"
	"github.com/blinklabs-io/shai106/internal/config"
)

// Signer signs set_weights extrinsic payloads with a keypair derived
// from the validator's mnemonic.
type Signer struct {
	address string
	vkey    Key.VerificationKey
	skey    ed25519.PrivateKey
}

var (
	globalSigner     *Signer
	globalSignerOnce sync.Once
	globalSignerErr  error
)

// GetSigner lazily derives and caches the process-wide signer from
// config.GetConfig().Wallet.Mnemonic.
func GetSigner() (*Signer, error) {
	globalSignerOnce.Do(func() {
		globalSigner, globalSignerErr = newSignerFromMnemonic(
			config.GetConfig().Wallet.Mnemonic,
		)
	})
	return globalSigner, globalSignerErr
}

func newSignerFromMnemonic(mnemonic string) (*Signer, error) {
	if mnemonic == "" {
		return nil, fmt.Errorf("VALIDATOR_HOTKEY_MNEMONIC is not set")
	}
	wallet, err := bursa.GetKeyPairFromMnemonic(mnemonic, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keypair from mnemonic: %w", err)
	}

	vKeyBytes, err := hex.DecodeString(wallet.PaymentVKey.CborHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode verification key: %w", err)
	}
	sKeyBytes, err := hex.DecodeString(wallet.PaymentExtendedSKey.CborHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing key: %w", err)
	}
	// Strip the 2-byte CBOR bytestring header bursa wraps each key in.
	vKeyBytes = vKeyBytes[2:]
	sKeyBytes = sKeyBytes[2:]
	// The extended signing key is scalar(32) || iv(32) || publicKey(32);
	// an ed25519.PrivateKey wants seed(32) || publicKey(32), so drop the
	// middle chunk.
	rawSkey := append(append([]byte{}, sKeyBytes[:32]...), sKeyBytes[64:96]...)

	return &Signer{
		address: wallet.PaymentAddress,
		vkey:    Key.VerificationKey{Payload: vKeyBytes},
		skey:    ed25519.NewKeyFromSeed(rawSkey[:32]),
	}, nil
}

// Address returns the derived address, for logging.
func (s *Signer) Address() string {
	return s.address
}

// PublicKey returns the verification (public) key bytes.
func (s *Signer) PublicKey() []byte {
	return append([]byte{}, s.vkey.Payload...)
}

// Sign signs payload and returns the raw ed25519 signature.
func (s *Signer) Sign(payload []byte) []byte {
	return ed25519.Sign(s.skey, payload)
}
