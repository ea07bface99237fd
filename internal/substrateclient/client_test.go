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
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/blinklabs-io/shai106/internal/chainadapter"
	"github.com/blinklabs-io/shai106/internal/domain"
)

// fakeTransport answers calls from a canned method->response table,
// standing in for a real substrate websocket connection.
type fakeTransport struct {
	responses map[string]json.RawMessage
	closed    bool
}

func (f *fakeTransport) Call(_ context.Context, method string, params []any) (json.RawMessage, error) {
	if method == "subtensor_getHotkeyForUid" {
		uid := int(params[1].(int))
		return json.Marshal(fmt.Sprintf("hotkey-%d", uid))
	}
	resp, ok := f.responses[method]
	if !ok {
		return nil, fmt.Errorf("fakeTransport: no response configured for %s", method)
	}
	return resp, nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func newTestClient(t *testing.T, ft *fakeTransport) *Client {
	t.Helper()
	c := &Client{
		state: stateReady,
		conn:  ft,
		dial:  func(string) (transport, error) { return ft, nil },
		retry: chainadapter.RetryPolicy{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
	return c
}

func TestHotkeyToUIDPaginatesBySubnetSize(t *testing.T) {
	ft := &fakeTransport{responses: map[string]json.RawMessage{
		"subtensor_subnetworkN": json.RawMessage(`{"subnetSize": 3}`),
	}}
	c := newTestClient(t, ft)

	got, err := c.HotkeyToUID(context.Background(), domain.SubnetID(106))
	if err != nil {
		t.Fatalf("HotkeyToUID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got["hotkey-0"] != 0 || got["hotkey-1"] != 1 || got["hotkey-2"] != 2 {
		t.Errorf("unexpected mapping: %+v", got)
	}
}

func TestSubnetAlphaPricesZeroAlphaInYieldsZeroPrice(t *testing.T) {
	ft := &fakeTransport{responses: map[string]json.RawMessage{
		"subtensor_subnetAlphaPrices": json.RawMessage(
			`[{"netuid":0,"taoIn":"1000","alphaIn":"0"},{"netuid":106,"taoIn":"2000","alphaIn":"1000"}]`,
		),
	}}
	c := newTestClient(t, ft)

	prices, err := c.SubnetAlphaPrices(context.Background(), []domain.SubnetID{0, 106})
	if err != nil {
		t.Fatalf("SubnetAlphaPrices: %v", err)
	}
	if prices[0] != 0 {
		t.Errorf("price for subnet 0 = %v, want 0", prices[0])
	}
	if prices[106] != 2.0 {
		t.Errorf("price for subnet 106 = %v, want 2.0", prices[106])
	}
}

func TestCurrentBlockNumberParsesHexHeader(t *testing.T) {
	ft := &fakeTransport{responses: map[string]json.RawMessage{
		"chain_getHeader": json.RawMessage(`{"number":"0x2a"}`),
	}}
	c := newTestClient(t, ft)

	n, err := c.CurrentBlockNumber(context.Background())
	if err != nil {
		t.Fatalf("CurrentBlockNumber: %v", err)
	}
	if n != 42 {
		t.Errorf("CurrentBlockNumber = %d, want 42", n)
	}
}

func TestStateStringNamesEveryState(t *testing.T) {
	cases := []struct {
		s    connState
		want string
	}{
		{stateUninitialized, "uninitialized"},
		{stateConnecting, "connecting"},
		{stateReady, "ready"},
		{stateReconnecting, "reconnecting"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("State(%d).String() = %q, want %q", c.s, got, c.want)
		}
	}
}
