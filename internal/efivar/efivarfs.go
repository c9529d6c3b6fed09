// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDir is where efivarfs is mounted on Linux.
const DefaultDir = "/sys/firmware/efi/efivars"

const attrHeaderSize = 4

// Efivarfs is a Store backed by an efivarfs mount. Each variable is a file
// named "<Name>-<guid>" holding the 4-byte attribute word followed by the data.
type Efivarfs struct {
	dir string
}

// NewEfivarfs returns a store rooted at dir (DefaultDir when empty).
func NewEfivarfs(dir string) *Efivarfs {
	if dir == "" {
		dir = DefaultDir
	}
	return &Efivarfs{dir: dir}
}

// Dir returns the mount point the store writes to.
func (e *Efivarfs) Dir() string {
	return e.dir
}

// fsTypeCheck is swapped out by tests that run against plain directories.
var fsTypeCheck = isEfivarfs

// Available reports whether the EFI runtime variable service is exposed at
// dir: it must be a directory on an efivarfs mount.
func Available(dir string) bool {
	return Usable(dir, false)
}

// Usable is Available, except that allowPlainDir accepts any existing
// directory. Writes to a plain directory never reach firmware.
func Usable(dir string, allowPlainDir bool) bool {
	if dir == "" {
		dir = DefaultDir
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return allowPlainDir || fsTypeCheck(dir)
}

// Path returns the efivarfs file path of a variable.
func (e *Efivarfs) Path(name string, guid GUID) string {
	return filepath.Join(e.dir, name+"-"+guid.String())
}

// SetVariable writes req with a single write call. Existing variables may
// carry the immutable inode flag; it is cleared before the file is opened for writing.
//
// ctx is not consulted: the write is a single syscall and shutdown paths
// call it with an already expired context.
func (e *Efivarfs) SetVariable(_ context.Context, req Request) error {
	if !ValidName(req.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}
	if len(req.Data) > MaxDataSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(req.Data), MaxDataSize)
	}

	path := e.Path(req.Name, req.GUID)
	if err := clearImmutable(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newStoreError("unlock", req.Name, err)
	}

	buf := make([]byte, attrHeaderSize, attrHeaderSize+len(req.Data))
	binary.LittleEndian.PutUint32(buf, uint32(req.Attributes))
	buf = append(buf, req.Data...)

	// #nosec G304 -- path is built from the configured efivarfs mount and a validated name
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return newStoreError("open", req.Name, err)
	}
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return newStoreError("write", req.Name, err)
	}
	if err := f.Close(); err != nil {
		return newStoreError("close", req.Name, err)
	}
	return nil
}

// GetVariable reads a variable back.
func (e *Efivarfs) GetVariable(ctx context.Context, name string, guid GUID) (Variable, error) {
	if err := ctx.Err(); err != nil {
		return Variable{}, err
	}
	if !ValidName(name) {
		return Variable{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	// #nosec G304 -- path is built from the configured efivarfs mount and a validated name
	raw, err := os.ReadFile(e.Path(name, guid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Variable{}, fmt.Errorf("%w: %s-%s", ErrNotFound, name, guid)
		}
		return Variable{}, newStoreError("read", name, err)
	}
	if len(raw) < attrHeaderSize {
		return Variable{}, fmt.Errorf("%s-%s: %d bytes of content, want at least %d", name, guid, len(raw), attrHeaderSize)
	}

	return Variable{
		Name:       name,
		GUID:       guid,
		Attributes: Attributes(binary.LittleEndian.Uint32(raw[:attrHeaderSize])),
		Data:       raw[attrHeaderSize:],
	}, nil
}
