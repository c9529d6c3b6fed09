// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package notify carries host termination events (reboot, shutdown, panic)
// to registered handlers.
package notify

import (
	"context"
	"sync"

	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/rs/zerolog"
)

// Kind distinguishes the chains an Event travels on.
type Kind int

const (
	KindReboot Kind = iota
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindReboot:
		return "reboot"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Event is delivered to every handler of a chain.
// Param is the one-shot entry for reboots and the panic context for panics.
type Event struct {
	Kind    Kind
	Restart bool
	Param   *string
}

// Result is what a handler reports back to the chain.
type Result int

// Done is the only result; handlers never stop propagation.
const Done Result = 0

// Handler reacts to an Event. It must not block for long: it runs on the
// host's termination path.
type Handler func(ctx context.Context, ev Event) Result

// Handle identifies one registration.
type Handle struct {
	id uint64
}

// Valid reports whether h came from Register.
func (h Handle) Valid() bool { return h.id != 0 }

type entry struct {
	id      uint64
	name    string
	handler Handler
}

// Chain is an ordered handler registry. Register and Unregister may race
// with Call; handlers run outside the lock in registration order.
type Chain struct {
	name    string
	mu      sync.Mutex
	nextID  uint64
	entries []entry
	logger  zerolog.Logger
}

// NewChain returns an empty chain.
func NewChain(name string) *Chain {
	return &Chain{
		name:   name,
		logger: xglog.WithComponent("notify").With().Str("chain", name).Logger(),
	}
}

// Name returns the chain name.
func (c *Chain) Name() string { return c.name }

// Register appends h to the chain.
func (c *Chain) Register(name string, h Handler) Handle {
	if h == nil {
		return Handle{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.entries = append(c.entries, entry{id: c.nextID, name: name, handler: h})
	return Handle{id: c.nextID}
}

// Unregister removes the registration. It reports whether it was present.
func (c *Chain) Unregister(h Handle) bool {
	if !h.Valid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.id == h.id {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered handlers.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Call invokes every handler with ev and returns how many ran to completion.
// A panicking handler is logged and skipped.
func (c *Chain) Call(ctx context.Context, ev Event) int {
	c.mu.Lock()
	snapshot := make([]entry, len(c.entries))
	copy(snapshot, c.entries)
	c.mu.Unlock()

	done := 0
	for _, e := range snapshot {
		if c.invoke(ctx, e, ev) {
			done++
		}
	}
	c.logger.Debug().
		Str(xglog.FieldEvent, "chain.called").
		Str(xglog.FieldKind, ev.Kind.String()).
		Int("handlers", len(snapshot)).
		Int("completed", done).
		Msg("notifier chain called")
	return done
}

func (c *Chain) invoke(ctx context.Context, e entry, ev Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str(xglog.FieldEvent, "chain.handler_panic").
				Str(xglog.FieldHandler, e.name).
				Interface("panic", r).
				Msg("notifier handler panicked")
			ok = false
		}
	}()
	_ = e.handler(ctx, ev)
	return true
}
