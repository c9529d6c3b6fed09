// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Status is an EFI_STATUS value with the error bit folded into the high bit of a uint64.
type Status uint64

const errorBit = 1 << 63

const (
	StatusSuccess           Status = 0
	StatusInvalidParameter  Status = errorBit | 2
	StatusUnsupported       Status = errorBit | 3
	StatusDeviceError       Status = errorBit | 7
	StatusWriteProtected    Status = errorBit | 8
	StatusOutOfResources    Status = errorBit | 9
	StatusNotFound          Status = errorBit | 14
	StatusAccessDenied      Status = errorBit | 15
	StatusSecurityViolation Status = errorBit | 26
)

var statusText = map[Status]string{
	StatusSuccess:           "success",
	StatusInvalidParameter:  "invalid parameter",
	StatusUnsupported:       "unsupported",
	StatusDeviceError:       "device error",
	StatusWriteProtected:    "write protected",
	StatusOutOfResources:    "out of resources",
	StatusNotFound:          "not found",
	StatusAccessDenied:      "access denied",
	StatusSecurityViolation: "security violation",
}

func (s Status) String() string {
	if txt, ok := statusText[s]; ok {
		return txt
	}
	return fmt.Sprintf("status 0x%x", uint64(s))
}

// StatusFromError maps an errno reported by efivarfs to the EFI status the
// kernel translated it from.
func StatusFromError(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		if errors.Is(err, fs.ErrNotExist) {
			return StatusNotFound
		}
		return StatusDeviceError
	}
	switch errno {
	case syscall.EINVAL:
		return StatusInvalidParameter
	case syscall.ENOSPC:
		return StatusOutOfResources
	case syscall.EIO:
		return StatusDeviceError
	case syscall.EROFS:
		return StatusWriteProtected
	case syscall.EPERM:
		return StatusSecurityViolation
	case syscall.EACCES:
		return StatusAccessDenied
	case syscall.ENOENT:
		return StatusNotFound
	case syscall.EOPNOTSUPP, syscall.ENOSYS:
		return StatusUnsupported
	default:
		return StatusDeviceError
	}
}

// StoreError reports a failed store operation on a single variable.
type StoreError struct {
	Op       string
	Variable string
	Status   Status
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %s (0x%x): %v", e.Op, e.Variable, e.Status, uint64(e.Status), e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op, variable string, err error) *StoreError {
	return &StoreError{
		Op:       op,
		Variable: variable,
		Status:   StatusFromError(err),
		Err:      err,
	}
}
