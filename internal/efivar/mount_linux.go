// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build linux

package efivar

import "golang.org/x/sys/unix"

// isEfivarfs reports whether dir is on an efivarfs mount.
func isEfivarfs(dir string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return false
	}
	return int64(st.Type) == unix.EFIVARFS_MAGIC
}
