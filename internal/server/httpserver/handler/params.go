package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
)

// params holds JSON-RPC parameters given either by position or by name.
// Every accessor takes both the position and the name of an argument.
type params struct {
	positional []json.RawMessage
	named      map[string]json.RawMessage
}

func parseParams(raw json.RawMessage) (params, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return params{}, nil
	}

	var p params
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &p.positional); err != nil {
			return params{}, domain.ErrInvalidArgument.WithDetails("malformed params array")
		}
	case '{':
		if err := json.Unmarshal(raw, &p.named); err != nil {
			return params{}, domain.ErrInvalidArgument.WithDetails("malformed params object")
		}
	default:
		return params{}, domain.ErrInvalidArgument.WithDetails("params must be an array or an object")
	}
	return p, nil
}

// arg returns the raw argument, treating JSON null as absent.
func (p params) arg(idx int, name string) (json.RawMessage, bool) {
	var v json.RawMessage
	if p.named != nil {
		v = p.named[name]
	} else if idx >= 0 && idx < len(p.positional) {
		v = p.positional[idx]
	}
	if len(v) == 0 || isNull(v) {
		return nil, false
	}
	return v, true
}

// decode unmarshals a required argument into out.
func (p params) decode(idx int, name string, out any) error {
	raw, ok := p.arg(idx, name)
	if !ok {
		return domain.ErrMissingArgument.WithDetails(name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s: %v", name, err))
	}
	return nil
}

// optional unmarshals an argument into out when present.
func (p params) optional(idx int, name string, out any) error {
	if _, ok := p.arg(idx, name); !ok {
		return nil
	}
	return p.decode(idx, name, out)
}

func (p params) stringArg(idx int, name string) (string, error) {
	var s string
	err := p.decode(idx, name, &s)
	return s, err
}

func (p params) uint64Arg(idx int, name string) (uint64, error) {
	var n uint64
	err := p.decode(idx, name, &n)
	return n, err
}

// config returns the trailing options object: the object at position idx,
// or the named parameters themselves.
func (p params) config(idx int) (params, error) {
	if p.named != nil {
		return p, nil
	}
	raw, ok := p.arg(idx, "")
	if !ok {
		return params{named: map[string]json.RawMessage{}}, nil
	}
	var named map[string]json.RawMessage
	if err := json.Unmarshal(raw, &named); err != nil {
		return params{}, domain.ErrInvalidArgument.WithDetails("config must be an object")
	}
	if named == nil {
		named = map[string]json.RawMessage{}
	}
	return params{named: named}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
