// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_FiresChainAndRepanics(t *testing.T) {
	c := NewChain("panic")
	var got Event
	c.Register("capture", func(_ context.Context, ev Event) Result {
		got = ev
		return Done
	})

	assert.PanicsWithValue(t, "softlockup detected", func() {
		defer Guard(context.Background(), c)
		panic("softlockup detected")
	})

	assert.Equal(t, KindPanic, got.Kind)
	require.NotNil(t, got.Param)
	assert.Equal(t, "softlockup detected", *got.Param)
}

func TestGuard_NoPanicIsSilent(t *testing.T) {
	c := NewChain("panic")
	calls := 0
	c.Register("count", func(context.Context, Event) Result {
		calls++
		return Done
	})

	func() {
		defer Guard(context.Background(), c)
	}()
	assert.Equal(t, 0, calls)
}

func TestGuard_NilChainStillRepanics(t *testing.T) {
	assert.Panics(t, func() {
		defer Guard(context.Background(), nil)
		panic("boom")
	})
}
