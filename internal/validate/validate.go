// SPDX-License-Identifier: MIT

// Package validate accumulates configuration field errors so a single
// Validate call can report every problem at once.
package validate

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Error is one failed field check.
type Error struct {
	Field   string
	Value   interface{}
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError is returned by Validator.Err and carries every failed check.
type ValidationError struct {
	errors []Error
}

// Errors returns the individual failures in the order they were found.
func (e ValidationError) Errors() []Error {
	return e.errors
}

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator collects failures. The zero value is ready to use.
type Validator struct {
	errors []Error
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

// IsValid reports whether no failure was recorded.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Err returns nil or a ValidationError holding a copy of the failures.
func (v *Validator) Err() error {
	if v.IsValid() {
		return nil
	}
	return ValidationError{errors: append([]Error(nil), v.errors...)}
}

// ListenAddr checks a host:port listen address. The host may be empty,
// an IP literal or localhost; the port must be 1-65535.
func (v *Validator) ListenAddr(field, addr string) {
	if strings.TrimSpace(addr) == "" {
		v.AddError(field, "listen address cannot be empty", addr)
		return
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid listen address: %v", err), addr)
		return
	}
	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		v.AddError(field, fmt.Sprintf("listen host must be an IP address or localhost, got %q", host), addr)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		v.AddError(field, fmt.Sprintf("port must be between 1 and 65535, got %q", portStr), addr)
	}
}

// DurationRange checks min <= value <= max.
func (v *Validator) DurationRange(field string, value, minVal, maxVal time.Duration) {
	if value < minVal || value > maxVal {
		v.AddError(field,
			fmt.Sprintf("duration must be between %s and %s, got %s", minVal, maxVal, value),
			value)
	}
}

// AbsolutePath checks that path is absolute and contains no "..".
// An empty path passes only when optional.
func (v *Validator) AbsolutePath(field, path string, optional bool) {
	switch {
	case path == "":
		if !optional {
			v.AddError(field, "path cannot be empty", path)
		}
	case strings.Contains(path, ".."):
		v.AddError(field, "path contains traversal sequences (..)", path)
	case !filepath.IsAbs(path):
		v.AddError(field, fmt.Sprintf("must be absolute path, got relative: %s", path), path)
	}
}

// NotEmpty rejects empty and whitespace-only strings.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf checks value against an allow list.
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("value must be one of %v, got %q", allowed, value), value)
}
