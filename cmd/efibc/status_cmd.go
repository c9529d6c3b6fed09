// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/ManuGH/efibc/internal/bootreason"
	"github.com/ManuGH/efibc/internal/daemon"
	"github.com/ManuGH/efibc/internal/efivar"
	"github.com/ManuGH/efibc/internal/journal"
	xglog "github.com/ManuGH/efibc/internal/log"
)

type variableStatus struct {
	Name       string `json:"name"`
	Present    bool   `json:"present"`
	Value      string `json:"value,omitempty"`
	Attributes string `json:"attributes,omitempty"`
	Error      string `json:"error,omitempty"`
	// Unrecognized marks a reboot reason outside the known wire values.
	Unrecognized bool `json:"unrecognized,omitempty"`
}

type statusReport struct {
	EFIVarsDir string           `json:"efivars_dir"`
	Available  bool             `json:"available"`
	DryRun     bool             `json:"dry_run"`
	Variables  []variableStatus `json:"variables"`
	LastEvent  *journal.Entry   `json:"last_event,omitempty"`
}

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("efibc status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "output format: text or json")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *format != "text" && *format != "json" {
		_, _ = fmt.Fprintf(stderr, "Error: unsupported format %q\n", *format)
		return 2
	}

	cfg, _, err := loadConfig(resolveConfigPath(*configPath), stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	rt, err := daemon.Bootstrap(cfg, xglog.WithComponent("cli"))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report := collectStatus(context.Background(), rt)

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	printStatus(stdout, report)
	return 0
}

func collectStatus(ctx context.Context, rt *daemon.Runtime) statusReport {
	report := statusReport{
		EFIVarsDir: rt.Config.EFIVarsDir,
		Available:  rt.Config.DryRun || efivar.Usable(rt.Config.EFIVarsDir, rt.Config.AllowPlainDir),
		DryRun:     rt.Config.DryRun,
	}

	for _, slot := range bootreason.Slots() {
		vs := variableStatus{Name: slot.VariableName()}
		v, err := rt.Store.GetVariable(ctx, slot.VariableName(), bootreason.LoaderEntryGUID)
		switch {
		case errors.Is(err, efivar.ErrNotFound):
		case err != nil:
			vs.Error = err.Error()
		default:
			vs.Present = true
			vs.Attributes = v.Attributes.String()
			if s, err := efivar.DecodeString(v.Data); err != nil {
				vs.Error = err.Error()
			} else {
				vs.Value = s
				if slot == bootreason.RebootReason {
					_, known := bootreason.ParseReason(s)
					vs.Unrecognized = !known
				}
			}
		}
		report.Variables = append(report.Variables, vs)
	}

	if entry, ok, err := rt.Journal.Read(); err == nil && ok {
		report.LastEvent = &entry
	}
	return report
}

func printStatus(w io.Writer, r statusReport) {
	availability := "not available"
	if r.Available {
		availability = "available"
	}
	if r.DryRun {
		availability += " (dry run)"
	}
	_, _ = fmt.Fprintf(w, "efivarfs: %s [%s]\n", r.EFIVarsDir, availability)

	for _, v := range r.Variables {
		switch {
		case v.Error != "":
			_, _ = fmt.Fprintf(w, "%s: error: %s\n", v.Name, v.Error)
		case !v.Present:
			_, _ = fmt.Fprintf(w, "%s: (unset)\n", v.Name)
		case v.Unrecognized:
			_, _ = fmt.Fprintf(w, "%s: %q [%s] (unrecognized reason)\n", v.Name, v.Value, v.Attributes)
		default:
			_, _ = fmt.Fprintf(w, "%s: %q [%s]\n", v.Name, v.Value, v.Attributes)
		}
	}

	if r.LastEvent == nil {
		_, _ = fmt.Fprintln(w, "last event: none recorded")
		return
	}
	e := r.LastEvent
	_, _ = fmt.Fprintf(w, "last event: %s %s reason=%s at %s", e.EventID, e.Kind, e.Reason, e.Time.Format(time.RFC3339))
	if e.Source != "" {
		_, _ = fmt.Fprintf(w, " via %s", e.Source)
	}
	_, _ = fmt.Fprintln(w)
	for _, wr := range e.Writes {
		if wr.Error != "" {
			_, _ = fmt.Fprintf(w, "  %s=%q failed: %s\n", wr.Variable, wr.Value, wr.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s=%q\n", wr.Variable, wr.Value)
	}
}
