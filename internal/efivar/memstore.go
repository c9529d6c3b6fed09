// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store used for dry runs and tests. It records
// every request in call order and can be primed to fail writes per variable.
type MemStore struct {
	mu       sync.Mutex
	vars     map[string]Variable
	requests []Request
	failures map[string]error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		vars:     make(map[string]Variable),
		failures: make(map[string]error),
	}
}

func memKey(name string, guid GUID) string {
	return name + "-" + guid.String()
}

// FailWith makes subsequent writes to name fail with err, wrapped the same
// way Efivarfs wraps errno failures. A nil err clears the failure.
func (m *MemStore) FailWith(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, name)
		return
	}
	m.failures[name] = err
}

// SetVariable records req and stores a copy of it unless a failure is primed.
// Like Efivarfs it ignores ctx cancellation.
func (m *MemStore) SetVariable(_ context.Context, req Request) error {
	if !ValidName(req.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data := append([]byte(nil), req.Data...)
	m.requests = append(m.requests, Request{Name: req.Name, GUID: req.GUID, Attributes: req.Attributes, Data: data})

	if err, ok := m.failures[req.Name]; ok {
		return newStoreError("write", req.Name, err)
	}
	if len(data) > MaxDataSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(data), MaxDataSize)
	}

	m.vars[memKey(req.Name, req.GUID)] = Variable{
		Name:       req.Name,
		GUID:       req.GUID,
		Attributes: req.Attributes,
		Data:       data,
	}
	return nil
}

// GetVariable returns the last successfully written value of a variable.
func (m *MemStore) GetVariable(ctx context.Context, name string, guid GUID) (Variable, error) {
	if err := ctx.Err(); err != nil {
		return Variable{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vars[memKey(name, guid)]
	if !ok {
		return Variable{}, fmt.Errorf("%w: %s", ErrNotFound, memKey(name, guid))
	}
	v.Data = append([]byte(nil), v.Data...)
	return v, nil
}

// Requests returns a copy of every SetVariable call seen so far, failed ones included.
func (m *MemStore) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
