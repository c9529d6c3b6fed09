// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for efibc.
//
// Precedence is ENV > YAML file > defaults. The YAML file is decoded
// strictly: unknown fields and multiple documents are rejected.
package config
