// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package schedule runs the daily group roster refresh.
package schedule

import (
	"context"
	"time"

	ssLog "go.mau.fi/ssbot/util/log"
)

// DefaultInterval is how often the poller checks the clock.
const DefaultInterval = time.Minute

// Due returns true during the first two minutes after midnight.
//
// With a one-minute poll interval the task usually fires twice a night, so it must be idempotent.
func Due(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() <= 1
}

// Task is the function the poller runs when it's due.
type Task func(ctx context.Context) error

// Poller periodically checks whether a Task is due and runs it.
type Poller struct {
	Interval time.Duration
	Now      func() time.Time
	Task     Task
	Log      ssLog.Logger
}

// NewPoller creates a Poller with the default interval and the system clock.
func NewPoller(task Task, log ssLog.Logger) *Poller {
	if log == nil {
		log = ssLog.Noop
	}
	return &Poller{
		Interval: DefaultInterval,
		Now:      time.Now,
		Task:     task,
		Log:      log,
	}
}

// Check runs the task once if it's due. It returns whether the task was run.
func (p *Poller) Check(ctx context.Context) bool {
	now := p.Now()
	if !Due(now) {
		return false
	}
	p.Log.Infof("Running scheduled roster refresh (%s)", now.Format(time.TimeOnly))
	err := p.Task(ctx)
	if err != nil {
		p.Log.Errorf("Scheduled roster refresh failed: %v", err)
	}
	return true
}

// Run checks the clock every Interval until the context is canceled.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		p.Log.Debugf("Schedule loop exiting")
	}()
	for {
		select {
		case <-ticker.C:
			p.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
