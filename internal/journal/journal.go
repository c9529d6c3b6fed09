// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package journal keeps a local record of the last termination event so
// operators can see what was handed to the bootloader.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/efibc/internal/bootreason"
	xglog "github.com/ManuGH/efibc/internal/log"
	"github.com/google/renameio/v2"
)

// Entry is the persisted form of a dispatch outcome.
type Entry struct {
	EventID string        `json:"event_id"`
	Kind    string        `json:"kind"`
	Source  string        `json:"source,omitempty"`
	Reason  string        `json:"reason"`
	Restart bool          `json:"restart,omitempty"`
	OneShot string        `json:"one_shot,omitempty"`
	Context string        `json:"context,omitempty"`
	Writes  []WriteRecord `json:"writes"`
	Time    time.Time     `json:"time"`
}

// WriteRecord is one variable write of an Entry.
type WriteRecord struct {
	Variable string `json:"variable"`
	Value    string `json:"value"`
	Error    string `json:"error,omitempty"`
}

// Journal writes the last Entry to a single JSON file.
type Journal struct {
	path string
}

// New returns a Journal at path. An empty path disables it.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Observe implements bootreason.Observer.
func (j *Journal) Observe(ctx context.Context, outcome bootreason.Outcome) error {
	if j == nil || j.path == "" {
		return nil
	}
	e := FromOutcome(outcome)
	e.Source = xglog.SourceFromContext(ctx)
	return j.Write(ctx, e)
}

// Write atomically replaces the journal file with e.
func (j *Journal) Write(ctx context.Context, e Entry) error {
	logger := xglog.FromContext(ctx)

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o750); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(j.path, renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("create pending journal file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending journal file")
		}
	}()

	if _, err := pendingFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace journal file: %w", err)
	}
	return nil
}

// Read loads the last Entry. A missing file yields ok == false and no error.
func (j *Journal) Read() (Entry, bool, error) {
	if j == nil || j.path == "" {
		return Entry{}, false, nil
	}
	// #nosec G304 -- journal path is provided by the operator via config
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("read journal: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode journal: %w", err)
	}
	return e, true, nil
}

// FromOutcome converts a dispatch outcome into a journal Entry.
func FromOutcome(o bootreason.Outcome) Entry {
	e := Entry{
		EventID: o.EventID,
		Kind:    o.Event.Kind.String(),
		Reason:  o.Reason.String(),
		Time:    o.At.UTC(),
		Writes:  make([]WriteRecord, 0, len(o.Writes)),
	}
	switch o.Event.Kind {
	case bootreason.KindReboot:
		e.Restart = o.Event.Restart
		if o.Event.OneShot != nil {
			e.OneShot = *o.Event.OneShot
		}
	case bootreason.KindPanic:
		if o.Event.Context != nil {
			e.Context = *o.Event.Context
		}
	}
	for _, w := range o.Writes {
		rec := WriteRecord{Variable: w.Slot.VariableName(), Value: w.Value}
		if w.Err != nil {
			rec.Error = w.Err.Error()
		}
		e.Writes = append(e.Writes, rec)
	}
	return e
}
