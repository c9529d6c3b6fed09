// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build linux

package efivar

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// fsImmutableFl is FS_IMMUTABLE_FL from linux/fs.h.
const fsImmutableFl = 0x00000010

// clearImmutable drops the immutable inode flag efivarfs sets on variables
// that are not known to be safe to modify. Filesystems without inode flag
// support are treated as already writable.
func clearImmutable(path string) error {
	// #nosec G304 -- path is built from the configured efivarfs mount and a validated name
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	fd := int(f.Fd())
	flags, err := unix.IoctlGetUint32(fd, unix.FS_IOC_GETFLAGS)
	if err != nil {
		if unsupportedFlags(err) {
			return nil
		}
		return err
	}
	if flags&fsImmutableFl == 0 {
		return nil
	}
	return unix.IoctlSetPointerInt(fd, unix.FS_IOC_SETFLAGS, int(flags&^fsImmutableFl))
}

func unsupportedFlags(err error) bool {
	return errors.Is(err, unix.ENOTTY) ||
		errors.Is(err, unix.EOPNOTSUPP) ||
		errors.Is(err, unix.EINVAL)
}
