// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/log"
	"github.com/ManuGH/efibc/internal/notify"
	"github.com/stretchr/testify/require"
)

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve listen addr: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListen(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("listen timeout")
}

// testModule builds a module over a fresh MemStore and chains.
func testModule(t *testing.T, available bool) (*Module, *efivar.MemStore, *notify.Chain, *notify.Chain) {
	t.Helper()
	store := efivar.NewMemStore()
	reboot := notify.NewChain("reboot")
	panicChain := notify.NewChain("panic")
	m, err := NewModule(ModuleDeps{
		Logger:      log.WithComponent("test"),
		Store:       store,
		Available:   func() bool { return available },
		RebootChain: reboot,
		PanicChain:  panicChain,
	})
	require.NoError(t, err)
	return m, store, reboot, panicChain
}

// readVar decodes a loader variable from the store; ok is false when unset.
func readVar(t *testing.T, store efivar.Reader, slot bootreason.Slot) (string, bool) {
	t.Helper()
	v, err := store.GetVariable(context.Background(), slot.VariableName(), bootreason.LoaderEntryGUID)
	if errors.Is(err, efivar.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	s, err := efivar.DecodeString(v.Data)
	require.NoError(t, err)
	return s, true
}

type fakeProbe struct {
	verb  notify.Verb
	ok    bool
	err   error
	calls atomic.Int32
	// hang blocks until ctx expires before answering.
	hang bool
}

func (p *fakeProbe) Probe(ctx context.Context) (notify.Verb, bool, error) {
	p.calls.Add(1)
	if p.hang {
		<-ctx.Done()
	}
	return p.verb, p.ok, p.err
}
