// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	systemdDest      = "org.freedesktop.systemd1"
	systemdPath      = dbus.ObjectPath("/org/freedesktop/systemd1")
	systemdListJobs  = "org.freedesktop.systemd1.Manager.ListJobs"
	targetReboot     = "reboot.target"
	targetKexec      = "kexec.target"
	targetPoweroff   = "poweroff.target"
	targetHalt       = "halt.target"
	targetSoftReboot = "soft-reboot.target"
)

// Job is one entry of systemd's job queue.
type Job struct {
	ID       uint32
	Unit     string
	Type     string
	State    string
	JobPath  dbus.ObjectPath
	UnitPath dbus.ObjectPath
}

// JobLister returns the queued systemd jobs.
type JobLister interface {
	ListJobs(ctx context.Context) ([]Job, error)
}

// SystemdBus lists jobs over the system D-Bus.
type SystemdBus struct {
	conn *dbus.Conn
}

// ConnectSystemd opens a private connection to the system bus.
func ConnectSystemd() (*SystemdBus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &SystemdBus{conn: conn}, nil
}

// ListJobs implements JobLister.
func (s *SystemdBus) ListJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	obj := s.conn.Object(systemdDest, systemdPath)
	if err := obj.CallWithContext(ctx, systemdListJobs, 0).Store(&jobs); err != nil {
		return nil, fmt.Errorf("list systemd jobs: %w", err)
	}
	return jobs, nil
}

// Close releases the bus connection.
func (s *SystemdBus) Close() error {
	return s.conn.Close()
}

// ShutdownProbe decides, on SIGTERM, whether the host is going down.
type ShutdownProbe struct {
	lister JobLister
}

// NewShutdownProbe returns a probe over lister.
func NewShutdownProbe(lister JobLister) *ShutdownProbe {
	return &ShutdownProbe{lister: lister}
}

// Probe inspects the job queue. ok is false when no shutdown target is
// queued, i.e. the service alone is being stopped.
func (p *ShutdownProbe) Probe(ctx context.Context) (verb Verb, ok bool, err error) {
	jobs, err := p.lister.ListJobs(ctx)
	if err != nil {
		return "", false, err
	}
	verb, ok = VerbFromJobs(jobs)
	return verb, ok, nil
}

// VerbFromJobs maps queued shutdown targets to a hook verb. Restart targets
// win over power-off targets when both are queued.
func VerbFromJobs(jobs []Job) (Verb, bool) {
	var found Verb
	for _, j := range jobs {
		switch j.Unit {
		case targetReboot, targetSoftReboot:
			return VerbReboot, true
		case targetKexec:
			return VerbKexec, true
		case targetPoweroff:
			found = VerbPoweroff
		case targetHalt:
			if found == "" {
				found = VerbHalt
			}
		}
	}
	return found, found != ""
}
