// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldEventID = "event_id"
	FieldSource  = "source"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldHandler   = "handler"

	// Termination event fields
	FieldKind    = "kind"
	FieldReason  = "reason"
	FieldRestart = "restart"
	FieldOneShot = "one_shot"

	// Variable store fields
	FieldVariable  = "variable"
	FieldGUID      = "guid"
	FieldSizeBytes = "size_bytes"
	FieldLimit     = "limit_bytes"
	FieldStatus    = "status"

	// Path fields
	FieldPath = "path"
)
