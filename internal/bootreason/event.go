// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bootreason

// Kind distinguishes the two termination notifications.
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

// Event is a termination notification. Reboot events use Restart and
// OneShot; panic events use Context.
type Event struct {
	Kind    Kind
	Restart bool
	OneShot *string
	Context *string
}

// RebootEvent builds a reboot or shutdown notification.
func RebootEvent(restart bool, oneShot *string) Event {
	return Event{Kind: KindReboot, Restart: restart, OneShot: oneShot}
}

// PanicEvent builds a crash notification with optional diagnostic text.
func PanicEvent(context *string) Event {
	return Event{Kind: KindPanic, Context: context}
}

// Classify returns the reason an event will be recorded with.
func (e Event) Classify() Reason {
	if e.Kind == KindPanic {
		return ClassifyPanic(e.Context)
	}
	return ClassifyReboot(e.Restart)
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
