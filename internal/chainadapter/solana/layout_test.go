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

package solana

import (
	"encoding/binary"
	"math/big"
	"testing"
)

// poolRecordFixture lays out a PoolRecord account byte-for-byte per the
// offsets in layout.go: 8-byte discriminator, 32-byte pubkey, u16
// subnet id, bool is_active.
func poolRecordFixture(pubkey [32]byte, subnetID uint16, isActive bool) []byte {
	buf := make([]byte, poolRecordMinLen)
	copy(buf[poolRecordOffsetPoolPubkey:], pubkey[:])
	binary.LittleEndian.PutUint16(buf[poolRecordOffsetSubnetID:], subnetID)
	if isActive {
		buf[poolRecordOffsetIsActive] = 1
	}
	return buf
}

func TestDecodePoolRecordReadsFixedOffsets(t *testing.T) {
	var pubkey [32]byte
	for i := range pubkey {
		pubkey[i] = byte(i + 1)
	}
	buf := poolRecordFixture(pubkey, 106, true)

	rec, err := DecodePoolRecord(buf)
	if err != nil {
		t.Fatalf("DecodePoolRecord: %v", err)
	}
	if rec.PoolPubkey != pubkey {
		t.Errorf("PoolPubkey = %x, want %x", rec.PoolPubkey, pubkey)
	}
	if rec.SubnetID != 106 {
		t.Errorf("SubnetID = %d, want 106", rec.SubnetID)
	}
	if !rec.IsActive {
		t.Errorf("IsActive = false, want true")
	}
}

func TestDecodePoolRecordInactiveFlag(t *testing.T) {
	buf := poolRecordFixture([32]byte{}, 0, false)

	rec, err := DecodePoolRecord(buf)
	if err != nil {
		t.Fatalf("DecodePoolRecord: %v", err)
	}
	if rec.IsActive {
		t.Errorf("IsActive = true, want false")
	}
}

func TestDecodePoolRecordTooShortErrors(t *testing.T) {
	if _, err := DecodePoolRecord(make([]byte, poolRecordMinLen-1)); err == nil {
		t.Fatal("expected error for truncated pool record")
	}
}

// stakeRecordFixture lays out a StakeRecord account byte-for-byte per
// the offsets in layout.go.
func stakeRecordFixture(owner, pool, mint [32]byte, tickLower, tickUpper int32, liquidityLE [16]byte) []byte {
	buf := make([]byte, stakeRecordMinLen)
	copy(buf[stakeRecordOffsetOwnerHotkey:], owner[:])
	copy(buf[stakeRecordOffsetPoolPubkey:], pool[:])
	copy(buf[stakeRecordOffsetPositionMint:], mint[:])
	binary.LittleEndian.PutUint32(buf[stakeRecordOffsetTickLower:], uint32(tickLower))
	binary.LittleEndian.PutUint32(buf[stakeRecordOffsetTickUpper:], uint32(tickUpper))
	copy(buf[stakeRecordOffsetLiquidity:], liquidityLE[:])
	return buf
}

func TestDecodeStakeRecordReadsFixedOffsets(t *testing.T) {
	var owner, pool, mint [32]byte
	owner[0] = 0xAA
	pool[0] = 0xBB
	mint[0] = 0xCC
	var liquidityLE [16]byte
	liquidityLE[0] = 0x64 // 100 in the low-order byte, little-endian u128

	buf := stakeRecordFixture(owner, pool, mint, -1, 1, liquidityLE)

	rec, err := DecodeStakeRecord(buf)
	if err != nil {
		t.Fatalf("DecodeStakeRecord: %v", err)
	}
	if rec.OwnerHotkey != owner {
		t.Errorf("OwnerHotkey = %x, want %x", rec.OwnerHotkey, owner)
	}
	if rec.PoolPubkey != pool {
		t.Errorf("PoolPubkey = %x, want %x", rec.PoolPubkey, pool)
	}
	if rec.PositionMint != mint {
		t.Errorf("PositionMint = %x, want %x", rec.PositionMint, mint)
	}
	if rec.TickLower != -1 {
		t.Errorf("TickLower = %d, want -1", rec.TickLower)
	}
	if rec.TickUpper != 1 {
		t.Errorf("TickUpper = %d, want 1", rec.TickUpper)
	}

	got := bigIntFromBE(rec.LiquidityBigEndianBytes())
	if got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("liquidity = %s, want 100", got)
	}
}

func TestDecodeStakeRecordTooShortErrors(t *testing.T) {
	if _, err := DecodeStakeRecord(make([]byte, stakeRecordMinLen-1)); err == nil {
		t.Fatal("expected error for truncated stake record")
	}
}

func TestLiquidityBigEndianBytesHandlesFullWidthU128(t *testing.T) {
	// liquidity = 2^100, little-endian bytes with the high bits set.
	want := new(big.Int).Lsh(big.NewInt(1), 100)
	wantBE := make([]byte, 16)
	want.FillBytes(wantBE)
	var liquidityLE [16]byte
	for i := 0; i < 16; i++ {
		liquidityLE[i] = wantBE[15-i]
	}

	rec := StakeRecord{Liquidity: liquidityLE}
	got := bigIntFromBE(rec.LiquidityBigEndianBytes())
	if got.Cmp(want) != 0 {
		t.Errorf("liquidity = %s, want %s", got, want)
	}
}

func TestDecodeCLMMTickCurrentReadsFixedOffset(t *testing.T) {
	buf := make([]byte, clmmPoolStateMinLen)
	binary.LittleEndian.PutUint32(buf[clmmPoolStateOffsetTickCurrent:], uint32(int32(-1234)))

	tick, err := DecodeCLMMTickCurrent(buf)
	if err != nil {
		t.Fatalf("DecodeCLMMTickCurrent: %v", err)
	}
	if tick != -1234 {
		t.Errorf("tick = %d, want -1234", tick)
	}
}

func TestDecodeCLMMTickCurrentTooShortErrors(t *testing.T) {
	if _, err := DecodeCLMMTickCurrent(make([]byte, clmmPoolStateMinLen-1)); err == nil {
		t.Fatal("expected error for truncated pool state")
	}
}

func TestBigIntFromBEInterpretsBigEndian(t *testing.T) {
	got := bigIntFromBE([]byte{0x01, 0x00})
	if got.Cmp(big.NewInt(256)) != 0 {
		t.Errorf("bigIntFromBE(0x0100) = %s, want 256", got)
	}
}

func TestIsZeroPubkeyDetectsAllZeroAndNonZero(t *testing.T) {
	if !IsZeroPubkey([32]byte{}) {
		t.Error("IsZeroPubkey(zero) = false, want true")
	}
	var nonZero [32]byte
	nonZero[31] = 1
	if IsZeroPubkey(nonZero) {
		t.Error("IsZeroPubkey(non-zero) = true, want false")
	}
}
