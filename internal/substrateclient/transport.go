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
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// transport is the narrow JSON-RPC-over-websocket surface the client
// needs against a substrate node, matching the subset of Subtensor's
// RPC API this validator calls.
type transport interface {
	Call(ctx context.Context, method string, params []any) (json.RawMessage, error)
	Close() error
}

// wsTransport is a minimal substrate JSON-RPC-over-websocket client:
// one request in flight per call, demultiplexed by request id, same
// request/response shape Ethereum JSON-RPC over ws uses.
type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	nextID  atomic.Int64

	pendingMu sync.Mutex
	pending   map[int64]chan rpcResponse

	closeOnce sync.Once
	closed    chan struct{}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("substrate rpc error %d: %s", e.Code, e.Message)
}

func dialWsTransport(endpoint string) (*wsTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial substrate endpoint: %w", err)
	}
	t := &wsTransport{
		conn:    conn,
		pending: make(map[int64]chan rpcResponse),
		closed:  make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *wsTransport) readLoop() {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.failAllPending(err)
			return
		}
		var resp rpcResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		t.pendingMu.Lock()
		ch, ok := t.pending[resp.ID]
		if ok {
			delete(t.pending, resp.ID)
		}
		t.pendingMu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (t *wsTransport) failAllPending(err error) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	for id, ch := range t.pending {
		ch <- rpcResponse{ID: id, Error: &rpcError{Message: err.Error()}}
		delete(t.pending, id)
	}
}

func (t *wsTransport) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	id := t.nextID.Add(1)
	respCh := make(chan rpcResponse, 1)
	t.pendingMu.Lock()
	t.pending[id] = respCh
	t.pendingMu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	t.writeMu.Lock()
	err = t.conn.WriteMessage(websocket.TextMessage, raw)
	t.writeMu.Unlock()
	if err != nil {
		t.pendingMu.Lock()
		delete(t.pending, id)
		t.pendingMu.Unlock()
		return nil, fmt.Errorf("write substrate rpc request: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	case <-ctx.Done():
		t.pendingMu.Lock()
		delete(t.pending, id)
		t.pendingMu.Unlock()
		return nil, ctx.Err()
	case <-t.closed:
		return nil, fmt.Errorf("substrate transport closed")
	}
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return t.conn.Close()
}
