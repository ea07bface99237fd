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
	"math/big"
	"sync"
	"time"

	"github.com/blinklabs-io/shai106/internal/chainadapter"
	"github.com/blinklabs-io/shai106/internal/domain"
	"github.com/blinklabs-io/shai106/internal/logging"
	"github.com/blinklabs-io/shai106/internal/signer"
)

const healthCheckInterval = 30 * time.Second

// Client is the process-wide singleton connection to the Bittensor
// substrate chain. The process entry point connects and closes it, and
// the health-check loop reconnects it; the orchestrator only issues
// queries and submissions. Concurrent read-only query calls are safe.
type Client struct {
	mu       sync.Mutex
	state    connState
	endpoint string
	dial     func(string) (transport, error)
	conn     transport
	retry    chainadapter.RetryPolicy

	healthTicker *time.Ticker
	stopHealth   chan struct{}
}

var (
	globalClient     *Client
	globalClientOnce sync.Once
)

// GetClient returns the process-wide substrate client singleton, in its
// uninitialized state until Initialize is called.
func GetClient() *Client {
	globalClientOnce.Do(func() {
		globalClient = &Client{
			state: stateUninitialized,
			dial: func(endpoint string) (transport, error) {
				return dialWsTransport(endpoint)
			},
			retry: chainadapter.DefaultRetryPolicy(),
		}
	})
	return globalClient
}

// Initialize connects to endpoint, idempotent to concurrent calls with
// the same endpoint already in ready/connecting state.
func (c *Client) Initialize(endpoint string) error {
	c.mu.Lock()
	if c.endpoint == endpoint && (c.state == stateReady || c.state == stateConnecting) {
		c.mu.Unlock()
		return nil
	}
	c.endpoint = endpoint
	c.state = stateConnecting
	c.mu.Unlock()

	conn, err := c.dial(endpoint)
	if err != nil {
		c.mu.Lock()
		c.state = stateUninitialized
		c.mu.Unlock()
		return fmt.Errorf("substrateclient: initialize: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = stateReady
	c.mu.Unlock()

	c.startHealthCheck()
	return nil
}

// State reports the current connection lifecycle state, for tests and
// diagnostics.
func (c *Client) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.String()
}

// Close tears down the connection and stops the health-check loop.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopHealth != nil {
		close(c.stopHealth)
		c.stopHealth = nil
	}
	if c.healthTicker != nil {
		c.healthTicker.Stop()
	}
	if c.conn == nil {
		c.state = stateUninitialized
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.state = stateUninitialized
	return err
}

func (c *Client) startHealthCheck() {
	c.mu.Lock()
	if c.healthTicker != nil {
		c.healthTicker.Stop()
	}
	c.healthTicker = time.NewTicker(healthCheckInterval)
	c.stopHealth = make(chan struct{})
	ticker := c.healthTicker
	stop := c.stopHealth
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				c.runHealthCheck()
			case <-stop:
				return
			}
		}
	}()
}

func (c *Client) runHealthCheck() {
	logger := logging.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.call(ctx, "chain_getHeader", nil); err != nil {
		logger.Warnw("substrateclient: health check failed, reconnecting", "error", err)
		c.reconnect()
	}
}

func (c *Client) reconnect() {
	c.mu.Lock()
	c.state = stateReconnecting
	endpoint := c.endpoint
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	err := c.retry.Do(context.Background(), func(ctx context.Context) error {
		conn, err := c.dial(endpoint)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.conn = conn
		c.state = stateReady
		c.mu.Unlock()
		return nil
	})
	if err != nil {
		logging.GetLogger().Errorw("substrateclient: reconnect exhausted retries", "error", err)
		c.mu.Lock()
		c.state = stateUninitialized
		c.mu.Unlock()
	}
}

func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("substrateclient: not connected")
	}
	var result json.RawMessage
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		res, err := conn.Call(ctx, method, params)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

// hotkeyUIDWindow bounds the number of concurrent per-UID lookups
// HotkeyToUID issues while paginating a subnet.
const hotkeyUIDWindow = 8

// HotkeyToUID returns the hotkey/UID bijection for netuid as of the
// current epoch, paginated by subnet size. Per-UID failures are
// reported in the returned error only if every lookup failed.
func (c *Client) HotkeyToUID(ctx context.Context, netuid domain.SubnetID) (map[domain.Hotkey]domain.UID, error) {
	logger := logging.GetLogger()

	var sizeResult struct {
		Size uint16 `json:"subnetSize"`
	}
	raw, err := c.call(ctx, "subtensor_subnetworkN", []any{netuid})
	if err != nil {
		return nil, fmt.Errorf("substrateclient: subnet size query: %w", err)
	}
	if err := json.Unmarshal(raw, &sizeResult); err != nil {
		return nil, fmt.Errorf("substrateclient: decode subnet size: %w", err)
	}

	n := int(sizeResult.Size)
	if n == 0 {
		return map[domain.Hotkey]domain.UID{}, nil
	}

	uids := make([]int, n)
	for i := range uids {
		uids[i] = i
	}

	type uidResult struct {
		uid    domain.UID
		hotkey domain.Hotkey
	}
	runner := chainadapter.BatchRunner[int, uidResult]{MaxConcurrent: hotkeyUIDWindow}
	results, errs := runner.Run(
		ctx,
		chainadapter.Chunk(uids, 1),
		func(ctx context.Context, chunk []int) ([]uidResult, error) {
			uid := chunk[0]
			raw, err := c.call(ctx, "subtensor_getHotkeyForUid", []any{netuid, uid})
			if err != nil {
				return nil, err
			}
			var hotkey string
			if err := json.Unmarshal(raw, &hotkey); err != nil {
				return nil, err
			}
			if hotkey == "" {
				return nil, nil
			}
			return []uidResult{{uid: domain.UID(uid), hotkey: domain.Hotkey(hotkey)}}, nil
		},
	)

	failures := 0
	for i, err := range errs {
		if err != nil {
			failures++
			logger.Warnw("substrateclient: hotkey lookup failed", "uid", i, "error", err)
		}
	}
	if failures == n {
		return nil, fmt.Errorf("substrateclient: all %d hotkey lookups failed", n)
	}

	out := make(map[domain.Hotkey]domain.UID, len(results))
	for _, r := range results {
		out[r.hotkey] = r.uid
	}
	return out, nil
}

// subnetAlphaPricesResult is the shape of one (netuid, taoIn, alphaIn)
// triple returned by the runtime call.
type subnetAlphaPricesResult struct {
	Netuid  domain.SubnetID `json:"netuid"`
	TaoIn   string          `json:"taoIn"`
	AlphaIn string          `json:"alphaIn"`
}

// alphaPriceScale is the fixed-point scaling factor (1e18) applied
// before converting the taoIn/alphaIn ratio to a float, preserving
// precision for large on-chain integer reserves.
var alphaPriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// SubnetAlphaPrices runs a single runtime call returning (netuid, taoIn,
// alphaIn) triples for netuids and computes each subnet's alpha price as
// taoIn/alphaIn using fixed-point scaling (alphaIn=0 yields price 0).
func (c *Client) SubnetAlphaPrices(ctx context.Context, netuids []domain.SubnetID) (map[domain.SubnetID]float64, error) {
	raw, err := c.call(ctx, "subtensor_subnetAlphaPrices", []any{netuids})
	if err != nil {
		return nil, fmt.Errorf("substrateclient: alpha price query: %w", err)
	}
	var rows []subnetAlphaPricesResult
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("substrateclient: decode alpha prices: %w", err)
	}

	out := make(map[domain.SubnetID]float64, len(rows))
	for _, row := range rows {
		taoIn, ok := new(big.Int).SetString(row.TaoIn, 10)
		if !ok {
			continue
		}
		alphaIn, ok := new(big.Int).SetString(row.AlphaIn, 10)
		if !ok || alphaIn.Sign() == 0 {
			out[row.Netuid] = 0
			continue
		}
		scaledTao := new(big.Int).Mul(taoIn, alphaPriceScale)
		ratio := new(big.Int).Quo(scaledTao, alphaIn)
		price, _ := new(big.Float).Quo(
			new(big.Float).SetInt(ratio),
			new(big.Float).SetInt(alphaPriceScale),
		).Float64()
		out[row.Netuid] = price
	}
	return out, nil
}

// CurrentBlockNumber returns the current chain height, used as the
// set_weights version_key.
func (c *Client) CurrentBlockNumber(ctx context.Context) (uint64, error) {
	raw, err := c.call(ctx, "chain_getHeader", nil)
	if err != nil {
		return 0, fmt.Errorf("substrateclient: current block: %w", err)
	}
	var header struct {
		Number string `json:"number"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return 0, fmt.Errorf("substrateclient: decode header: %w", err)
	}
	var n uint64
	if _, err := fmt.Sscanf(header.Number, "0x%x", &n); err != nil {
		if _, err := fmt.Sscanf(header.Number, "%d", &n); err != nil {
			return 0, fmt.Errorf("substrateclient: parse block number %q: %w", header.Number, err)
		}
	}
	return n, nil
}

// SubmitSetWeights signs and submits a set_weights extrinsic, returning
// its transaction hash.
func (c *Client) SubmitSetWeights(
	ctx context.Context,
	netuid domain.SubnetID,
	uids []domain.UID,
	weights []uint16,
	versionKey uint64,
	s *signer.Signer,
) (string, error) {
	if len(uids) != len(weights) {
		return "", fmt.Errorf("substrateclient: uids/weights length mismatch: %d != %d", len(uids), len(weights))
	}

	call := SetWeightsCall{
		Netuid:     uint16(netuid),
		Uids:       uids,
		Weights:    weights,
		VersionKey: versionKey,
	}
	payload, err := call.Encode()
	if err != nil {
		return "", fmt.Errorf("substrateclient: encode set_weights call: %w", err)
	}

	signature := s.Sign(payload)
	extrinsic, err := EncodeSignedExtrinsic(s.PublicKey(), signature, payload)
	if err != nil {
		return "", fmt.Errorf("substrateclient: encode extrinsic: %w", err)
	}

	raw, err := c.call(ctx, "author_submitExtrinsic", []any{hexEncode(extrinsic)})
	if err != nil {
		return "", fmt.Errorf("substrateclient: submit extrinsic: %w", err)
	}
	var txHash string
	if err := json.Unmarshal(raw, &txHash); err != nil {
		return "", fmt.Errorf("substrateclient: decode tx hash: %w", err)
	}
	if txHash == "" {
		hash := ExtrinsicHash(extrinsic)
		txHash = hexEncode(hash[:])
	}
	return txHash, nil
}
