// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build !linux

package efivar

// efivarfs only exists on Linux.
func isEfivarfs(string) bool {
	return false
}
