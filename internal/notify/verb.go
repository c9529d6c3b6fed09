// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package notify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVerb is returned by ParseVerb for anything systemd-shutdown
// does not pass to its hooks.
var ErrUnknownVerb = errors.New("unknown shutdown verb")

// Verb is the first argument systemd-shutdown passes to
// /usr/lib/systemd/system-shutdown hooks.
type Verb string

const (
	VerbReboot   Verb = "reboot"
	VerbKexec    Verb = "kexec"
	VerbPoweroff Verb = "poweroff"
	VerbHalt     Verb = "halt"
)

// ParseVerb validates a hook verb.
func ParseVerb(s string) (Verb, error) {
	switch v := Verb(strings.TrimSpace(s)); v {
	case VerbReboot, VerbKexec, VerbPoweroff, VerbHalt:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVerb, s)
	}
}

// Restart reports whether the machine comes back up after this verb.
func (v Verb) Restart() bool {
	return v == VerbReboot || v == VerbKexec
}

// RebootEvent builds the chain event for v with an optional one-shot entry.
func (v Verb) RebootEvent(oneShot *string) Event {
	return Event{Kind: KindReboot, Restart: v.Restart(), Param: oneShot}
}
