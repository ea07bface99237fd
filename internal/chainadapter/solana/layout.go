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

// Package solana decodes the fixed-offset account layouts of the SN106
// staking program and the Raydium CLMM program it wraps.
package solana

import (
	"encoding/binary"
	"fmt"
)

// Byte offsets within the staking program's PoolRecord account, after
// the 8-byte Anchor discriminator.
const (
	poolRecordOffsetPoolPubkey  = 8
	poolRecordOffsetSubnetID    = 40
	poolRecordOffsetIsActive    = 42
	poolRecordMinLen            = 43
)

// PoolRecord is the staking program's on-chain record of one Raydium
// CLMM pool registered for staking.
type PoolRecord struct {
	PoolPubkey [32]byte
	SubnetID   uint16
	IsActive   bool
}

// DecodePoolRecord decodes a raw PoolRecord account.
func DecodePoolRecord(data []byte) (PoolRecord, error) {
	if len(data) < poolRecordMinLen {
		return PoolRecord{}, fmt.Errorf("pool record too short: %d bytes", len(data))
	}
	var rec PoolRecord
	copy(rec.PoolPubkey[:], data[poolRecordOffsetPoolPubkey:poolRecordOffsetPoolPubkey+32])
	rec.SubnetID = binary.LittleEndian.Uint16(data[poolRecordOffsetSubnetID:])
	rec.IsActive = data[poolRecordOffsetIsActive] != 0
	return rec, nil
}

// Byte offsets within the staking program's StakeRecord account.
const (
	stakeRecordOffsetOwnerHotkey = 8
	stakeRecordOffsetPoolPubkey  = 40
	stakeRecordOffsetPositionMint = 72
	stakeRecordOffsetTickLower   = 104
	stakeRecordOffsetTickUpper   = 108
	stakeRecordOffsetLiquidity   = 112
	stakeRecordMinLen            = 128
)

// StakeRecord is the staking program's record of one staked position
// NFT, keyed by the position mint.
type StakeRecord struct {
	OwnerHotkey  [32]byte
	PoolPubkey   [32]byte
	PositionMint [32]byte
	TickLower    int32
	TickUpper    int32
	Liquidity    [16]byte // little-endian u128
}

// DecodeStakeRecord decodes a raw StakeRecord account.
func DecodeStakeRecord(data []byte) (StakeRecord, error) {
	if len(data) < stakeRecordMinLen {
		return StakeRecord{}, fmt.Errorf("stake record too short: %d bytes", len(data))
	}
	var rec StakeRecord
	copy(rec.OwnerHotkey[:], data[stakeRecordOffsetOwnerHotkey:stakeRecordOffsetOwnerHotkey+32])
	copy(rec.PoolPubkey[:], data[stakeRecordOffsetPoolPubkey:stakeRecordOffsetPoolPubkey+32])
	copy(rec.PositionMint[:], data[stakeRecordOffsetPositionMint:stakeRecordOffsetPositionMint+32])
	rec.TickLower = int32(binary.LittleEndian.Uint32(data[stakeRecordOffsetTickLower:]))
	rec.TickUpper = int32(binary.LittleEndian.Uint32(data[stakeRecordOffsetTickUpper:]))
	copy(rec.Liquidity[:], data[stakeRecordOffsetLiquidity:stakeRecordOffsetLiquidity+16])
	return rec, nil
}

// LiquidityBigEndianBytes returns the u128 liquidity field as big-endian
// bytes, suitable for big.Int.SetBytes.
func (s StakeRecord) LiquidityBigEndianBytes() []byte {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = s.Liquidity[15-i]
	}
	return be
}

// tick_current offset within Raydium's CLMM PoolState account, after its
// 8-byte Anchor discriminator and fixed bump/tick-spacing prefix.
const (
	clmmPoolStateOffsetTickCurrent = 41
	clmmPoolStateMinLen            = 45
)

// DecodeCLMMTickCurrent extracts the current tick from a raw Raydium
// CLMM PoolState account.
func DecodeCLMMTickCurrent(data []byte) (int32, error) {
	if len(data) < clmmPoolStateMinLen {
		return 0, fmt.Errorf("CLMM pool state too short: %d bytes", len(data))
	}
	return int32(binary.LittleEndian.Uint32(data[clmmPoolStateOffsetTickCurrent:])), nil
}

// IsZeroPubkey reports whether pk is the all-zero Solana system address,
// used to filter out unset pool/token references.
func IsZeroPubkey(pk [32]byte) bool {
	for _, b := range pk {
		if b != 0 {
			return false
		}
	}
	return true
}
