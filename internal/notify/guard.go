// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package notify

import (
	"context"
	"fmt"

	xglog "github.com/ManuGH/efibc/internal/log"
)

// Guard must be deferred directly. On panic it calls chain with the panic
// value as context, then re-panics with the same value.
//
//	defer notify.Guard(ctx, panicChain)
func Guard(ctx context.Context, chain *Chain) {
	r := recover()
	if r == nil {
		return
	}
	if chain != nil {
		detail := fmt.Sprint(r)
		chain.Call(xglog.ContextWithSource(ctx, "guard"), Event{Kind: KindPanic, Param: &detail})
	}
	panic(r)
}
