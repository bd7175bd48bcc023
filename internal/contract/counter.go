// Package contract holds the example Counter contract.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/flarebyte/buildstamp/internal/sim"
	"github.com/flarebyte/buildstamp/internal/version"
)

const stateKey = "STATE"

var errOverflow = errors.New("counter overflow")

// Counter is a single u32 counter with an embedded build version.
type Counter struct {
	Build version.Version
}

type counterState struct {
	Val uint32 `json:"val"`
}

// Version implements version.Versioned.
func (c *Counter) Version() version.Version { return c.Build }

// Call implements sim.Contract.
func (c *Counter) Call(ctx sim.Context, method string, _ []byte) ([]byte, error) {
	switch method {
	case "increment":
		return c.increment(ctx)
	case "get":
		st, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(st.Val)
	case "version":
		return json.Marshal(c.Version())
	}
	return nil, fmt.Errorf("%w: %s", sim.ErrMethodNotFound, method)
}

func (c *Counter) increment(ctx sim.Context) ([]byte, error) {
	st, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if st.Val == math.MaxUint32 {
		return nil, errOverflow
	}
	st.Val++
	b, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	if err := ctx.Write(stateKey, b); err != nil {
		return nil, err
	}
	return json.Marshal(st.Val)
}

// load returns the zero state when nothing has been stored yet.
func load(ctx sim.Context) (counterState, error) {
	var st counterState
	b, ok := ctx.Read(stateKey)
	if !ok {
		return st, nil
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, fmt.Errorf("corrupt counter state: %w", err)
	}
	return st, nil
}
