// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package notify

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// DefaultRebootParamPath is where systemctl reboot ARG stores its argument.
const DefaultRebootParamPath = "/run/systemd/reboot-param"

// maxRebootParam bounds the read; the kernel caps the argument at 256 bytes.
const maxRebootParam = 4096

// ReadRebootParam returns the one-shot entry requested via the reboot
// argument, or nil when none was given.
func ReadRebootParam(path string) (*string, error) {
	if path == "" {
		return nil, nil
	}
	// #nosec G304 -- path is provided by the operator via config
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open reboot param: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxRebootParam))
	if err != nil {
		return nil, fmt.Errorf("read reboot param: %w", err)
	}
	param := strings.TrimSpace(string(data))
	if param == "" {
		return nil, nil
	}
	return &param, nil
}
