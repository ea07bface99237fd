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

package evm

import (
	"context"
	"math/big"
	"testing"

	"github.com/blinklabs-io/shai106/internal/domain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

var (
	registryAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	posMgrAddr   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	poolAddr     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	hotkeyAddr   = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// fakeCaller routes CallContract by destination address to a canned
// response, mimicking the handful of view calls the adapter makes.
type fakeCaller struct {
	responses map[common.Address][]byte
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f.responses[*msg.To], nil
}

func TestListActivePoolsDecodesRegistryResponse(t *testing.T) {
	out := stakingRegistryABI.Methods["getAllPools"].Outputs
	encoded, err := out.Pack([]registryPool{{Pool: poolAddr, SubnetId: 106, IsActive: true}})
	if err != nil {
		t.Fatalf("pack fixture: %v", err)
	}

	caller := &fakeCaller{responses: map[common.Address][]byte{registryAddr: encoded}}
	adapter := New(domain.ChainEthereum, caller, registryAddr, posMgrAddr, 4)

	pools, err := adapter.ListActivePools(context.Background())
	if err != nil {
		t.Fatalf("ListActivePools: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("got %d pools, want 1", len(pools))
	}
	if pools[0].Subnet != 106 || !pools[0].IsActive {
		t.Errorf("decoded pool mismatch: %+v", pools[0])
	}
}

func TestFetchCurrentTicksDecodesSlot0(t *testing.T) {
	poolsOut := stakingRegistryABI.Methods["getAllPools"].Outputs
	poolsEncoded, err := poolsOut.Pack([]registryPool{{Pool: poolAddr, SubnetId: 106, IsActive: true}})
	if err != nil {
		t.Fatalf("pack pools fixture: %v", err)
	}

	slot0Out := clmmPoolABI.Methods["slot0"].Outputs
	slot0Encoded, err := slot0Out.Pack(
		big.NewInt(1<<60), big.NewInt(-1234),
		uint16(0), uint16(1), uint16(1), uint8(0), true,
	)
	if err != nil {
		t.Fatalf("pack slot0 fixture: %v", err)
	}

	caller := &fakeCaller{responses: map[common.Address][]byte{
		registryAddr: poolsEncoded,
		poolAddr:     slot0Encoded,
	}}
	adapter := New(domain.ChainEthereum, caller, registryAddr, posMgrAddr, 4)

	ticks, err := adapter.FetchCurrentTicks(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchCurrentTicks: %v", err)
	}
	key := domain.NewPoolKey(domain.ChainEthereum, poolAddr.Hex())
	got, ok := ticks[key]
	if !ok {
		t.Fatalf("missing tick for pool %v", key)
	}
	if got.Tick != -1234 {
		t.Errorf("Tick = %d, want -1234", got.Tick)
	}
}

func TestChainReturnsConfiguredTag(t *testing.T) {
	adapter := New(domain.ChainBase, &fakeCaller{}, registryAddr, posMgrAddr, 1)
	if adapter.Chain() != domain.ChainBase {
		t.Errorf("Chain() = %v, want %v", adapter.Chain(), domain.ChainBase)
	}
}
