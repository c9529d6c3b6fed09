// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ManuGH/efibc/internal/log"
)

// envValue resolves key from the environment. Unset and empty variables
// yield def; values parse rejects are logged and also yield def.
func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")

	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", def).
			Bool("set", ok).
			Str("source", "default").
			Msg("using default value")
		return def
	}

	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", raw).
			Interface("default", def).
			Msg("invalid environment value, using default")
		return def
	}
	logger.Debug().
		Str("key", key).
		Interface("value", v).
		Str("source", "environment").
		Msg("using environment variable")
	return v
}

// ParseString returns the value of key, or defaultValue when it is unset or empty.
func ParseString(key, defaultValue string) string {
	return envValue(key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseDuration reads a Go duration ("5s", "250ms"). Bare numbers are rejected.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return envValue(key, defaultValue, time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, defaultValue bool) bool {
	return envValue(key, defaultValue, parseBool)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}
