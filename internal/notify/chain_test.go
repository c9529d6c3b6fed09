// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestChain_CallsInRegistrationOrder(t *testing.T) {
	c := NewChain("reboot")
	var order []string
	record := func(name string) Handler {
		return func(_ context.Context, _ Event) Result {
			order = append(order, name)
			return Done
		}
	}

	c.Register("first", record("first"))
	c.Register("second", record("second"))
	c.Register("third", record("third"))

	n := c.Call(context.Background(), Event{Kind: KindReboot, Restart: true})
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestChain_DeliversEvent(t *testing.T) {
	c := NewChain("reboot")
	var got Event
	c.Register("capture", func(_ context.Context, ev Event) Result {
		got = ev
		return Done
	})

	param := "entry-X"
	c.Call(context.Background(), Event{Kind: KindReboot, Restart: true, Param: &param})

	assert.Equal(t, KindReboot, got.Kind)
	assert.True(t, got.Restart)
	require.NotNil(t, got.Param)
	assert.Equal(t, "entry-X", *got.Param)
}

func TestChain_Unregister(t *testing.T) {
	c := NewChain("panic")
	calls := 0
	h := c.Register("counter", func(context.Context, Event) Result {
		calls++
		return Done
	})
	require.True(t, h.Valid())
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Unregister(h))
	assert.False(t, c.Unregister(h), "second unregister must report absence")
	assert.Equal(t, 0, c.Len())

	assert.Equal(t, 0, c.Call(context.Background(), Event{Kind: KindPanic}))
	assert.Equal(t, 0, calls)
}

func TestChain_NilHandlerIsRejected(t *testing.T) {
	c := NewChain("reboot")
	h := c.Register("nil", nil)
	assert.False(t, h.Valid())
	assert.False(t, c.Unregister(h))
	assert.Equal(t, 0, c.Len())
}

func TestChain_PanickingHandlerIsSkipped(t *testing.T) {
	c := NewChain("reboot")
	after := false
	c.Register("boom", func(context.Context, Event) Result { panic("boom") })
	c.Register("after", func(context.Context, Event) Result {
		after = true
		return Done
	})

	assert.NotPanics(t, func() {
		assert.Equal(t, 1, c.Call(context.Background(), Event{Kind: KindReboot}))
	})
	assert.True(t, after)
}

func TestChain_HandlerMayUnregisterItself(t *testing.T) {
	c := NewChain("reboot")
	var h Handle
	h = c.Register("once", func(context.Context, Event) Result {
		c.Unregister(h)
		return Done
	})

	assert.Equal(t, 1, c.Call(context.Background(), Event{}))
	assert.Equal(t, 0, c.Call(context.Background(), Event{}))
}

func TestChain_ConcurrentRegisterAndCall(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := NewChain("reboot")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h := c.Register("worker", func(context.Context, Event) Result { return Done })
			c.Unregister(h)
		}()
		go func() {
			defer wg.Done()
			c.Call(context.Background(), Event{Kind: KindReboot})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, c.Len())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "reboot", KindReboot.String())
	assert.Equal(t, "panic", KindPanic.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
