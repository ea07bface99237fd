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

// Package evm decodes SN106 staking-registry and Uniswap-v3-style CLMM
// pool calls on Ethereum-compatible chains.
package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const stakingRegistryABIJSON = `[
	{"name":"getAllPools","type":"function","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"tuple[]","components":[
		{"name":"pool","type":"address"},
		{"name":"subnetId","type":"uint16"},
		{"name":"isActive","type":"bool"}
	 ]}]},
	{"name":"getStakesByMultipleHotkeys","type":"function","stateMutability":"view",
	 "inputs":[{"name":"hotkeys","type":"address[]"}],
	 "outputs":[{"name":"","type":"tuple[]","components":[
		{"name":"hotkey","type":"address"},
		{"name":"pool","type":"address"},
		{"name":"tokenId","type":"uint256"}
	 ]}]}
]`

const clmmPoolABIJSON = `[
	{"name":"slot0","type":"function","stateMutability":"view","inputs":[],
	 "outputs":[
		{"name":"sqrtPriceX96","type":"uint160"},
		{"name":"tick","type":"int24"},
		{"name":"observationIndex","type":"uint16"},
		{"name":"observationCardinality","type":"uint16"},
		{"name":"observationCardinalityNext","type":"uint16"},
		{"name":"feeProtocol","type":"uint8"},
		{"name":"unlocked","type":"bool"}
	 ]}
]`

const positionManagerABIJSON = `[
	{"name":"positions","type":"function","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[
		{"name":"nonce","type":"uint96"},
		{"name":"operator","type":"address"},
		{"name":"token0","type":"address"},
		{"name":"token1","type":"address"},
		{"name":"fee","type":"uint24"},
		{"name":"tickLower","type":"int24"},
		{"name":"tickUpper","type":"int24"},
		{"name":"liquidity","type":"uint128"},
		{"name":"feeGrowthInside0LastX128","type":"uint256"},
		{"name":"feeGrowthInside1LastX128","type":"uint256"},
		{"name":"tokensOwed0","type":"uint128"},
		{"name":"tokensOwed1","type":"uint128"}
	 ]}
]`

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("evm: invalid embedded ABI: " + err.Error())
	}
	return parsed
}

var (
	stakingRegistryABI = mustParseABI(stakingRegistryABIJSON)
	clmmPoolABI        = mustParseABI(clmmPoolABIJSON)
	positionManagerABI = mustParseABI(positionManagerABIJSON)
)

type registryPool struct {
	Pool     common.Address
	SubnetId uint16
	IsActive bool
}

type registryStake struct {
	Hotkey  common.Address
	Pool    common.Address
	TokenId *big.Int
}
