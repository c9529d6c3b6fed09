// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextWithEventID(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		eventID string
		want    string
	}{
		{
			name:    "nil context",
			ctx:     nil,
			eventID: "evt-123",
			want:    "evt-123",
		},
		{
			name:    "background context",
			ctx:     context.Background(),
			eventID: "evt-456",
			want:    "evt-456",
		},
		{
			name:    "empty event ID",
			ctx:     context.Background(),
			eventID: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithEventID(tt.ctx, tt.eventID)
			got := EventIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("EventIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceFromContextEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "nil context",
			ctx:  nil,
			want: "",
		},
		{
			name: "context without source",
			ctx:  context.Background(),
			want: "",
		},
		{
			name: "context with wrong type",
			ctx:  context.WithValue(context.Background(), sourceKey, 123),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SourceFromContext(tt.ctx)
			if got != tt.want {
				t.Errorf("SourceFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithContext_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithSource(ContextWithEventID(context.Background(), "evt-1"), "hook")
	l := WithContext(ctx, base)
	l.Info().Msg("dispatch")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}
	if entry[FieldEventID] != "evt-1" {
		t.Errorf("event_id = %v, want evt-1", entry[FieldEventID])
	}
	if entry[FieldSource] != "hook" {
		t.Errorf("source = %v, want hook", entry[FieldSource])
	}
}

func TestWithContext_EmptyContextReturnsLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithContext(context.Background(), base)
	l.Info().Msg("plain")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}
	if _, ok := entry[FieldEventID]; ok {
		t.Error("unexpected event_id on logger without context fields")
	}
}

func TestFromContext_FallsBackToBase(t *testing.T) {
	if l := FromContext(nil); l == nil { //nolint:staticcheck // nil context is part of the contract
		t.Fatal("FromContext(nil) returned nil")
	}
	if l := FromContext(context.Background()); l.GetLevel() == zerolog.Disabled {
		t.Error("expected base logger when context carries none")
	}
}

func TestWithComponentFromContext(t *testing.T) {
	logger := WithComponentFromContext(ContextWithEventID(context.Background(), "evt-2"), "test-component")
	if logger.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger from WithComponentFromContext")
	}
}
