// Package sim is an in-memory contract host used to exercise contracts in
// tests and from the CLI.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrContractExists   = errors.New("contract already deployed")
	ErrContractNotFound = errors.New("contract not found")
	ErrMethodNotFound   = errors.New("method not found")
	ErrViewWrite        = errors.New("storage write in view call")
)

// Contract is deployed code. Call dispatches one method invocation.
type Contract interface {
	Call(ctx Context, method string, args []byte) ([]byte, error)
}

// Context is the host surface visible to a contract during one call.
type Context interface {
	Signer() string
	ContractID() string
	Read(key string) ([]byte, bool)
	Write(key string, value []byte) error
}

// Outcome is the receipt of one call.
type Outcome struct {
	ReceiptID uuid.UUID       `json:"receiptId"`
	Signer    string          `json:"signer,omitempty"`
	Contract  string          `json:"contract"`
	Method    string          `json:"method"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// UnwrapJSON decodes the call result into v.
func (o Outcome) UnwrapJSON(v any) error {
	if len(o.Result) == 0 {
		return fmt.Errorf("%s.%s returned no value", o.Contract, o.Method)
	}
	return json.Unmarshal(o.Result, v)
}

type account struct {
	code  Contract
	state map[string][]byte
}

// Runtime holds deployed contracts and their storage. Calls are serialized.
type Runtime struct {
	mu       sync.Mutex
	accounts map[string]*account
	logger   *slog.Logger
}

// NewRuntime returns an empty runtime. A nil logger discards.
func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runtime{accounts: map[string]*account{}, logger: logger}
}

// Deploy installs c under id with empty storage.
func (r *Runtime) Deploy(id string, c Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; ok {
		return fmt.Errorf("%w: %s", ErrContractExists, id)
	}
	r.accounts[id] = &account{code: c, state: map[string][]byte{}}
	r.logger.Debug("deploy", "contract", id)
	return nil
}

// Call runs a mutating method. Storage writes are committed only when the
// method succeeds.
func (r *Runtime) Call(ctx context.Context, signer, id, method string, args []byte) (Outcome, error) {
	return r.invoke(ctx, signer, id, method, args, false)
}

// View runs a read-only method; any storage write fails the call.
func (r *Runtime) View(ctx context.Context, id, method string, args []byte) (Outcome, error) {
	return r.invoke(ctx, "", id, method, args, true)
}

func (r *Runtime) invoke(ctx context.Context, signer, id, method string, args []byte, view bool) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	cc := &callContext{signer: signer, id: id, view: view, state: maps.Clone(acc.state)}
	res, err := acc.code.Call(cc, method, args)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s.%s: %w", id, method, err)
	}
	if !view {
		acc.state = cc.state
	}
	out := Outcome{ReceiptID: uuid.New(), Signer: signer, Contract: id, Method: method, Result: res}
	r.logger.Debug("call", "contract", id, "method", method, "view", view, "receipt", out.ReceiptID)
	return out, nil
}

type callContext struct {
	signer string
	id     string
	view   bool
	state  map[string][]byte
}

func (c *callContext) Signer() string     { return c.signer }
func (c *callContext) ContractID() string { return c.id }

func (c *callContext) Read(key string) ([]byte, bool) {
	v, ok := c.state[key]
	return v, ok
}

func (c *callContext) Write(key string, value []byte) error {
	if c.view {
		return ErrViewWrite
	}
	c.state[key] = append([]byte(nil), value...)
	return nil
}
