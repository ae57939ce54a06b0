// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package health provides the HTTP health endpoint of the bot daemon.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	ssLog "go.mau.fi/ssbot/util/log"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// SlowDatabaseThreshold is the ping latency above which the database is reported as degraded.
const SlowDatabaseThreshold = 100 * time.Millisecond

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// Report represents the overall health status.
type Report struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// Checker checks the health of one component.
type Checker interface {
	Check(ctx context.Context) ComponentHealth
	Name() string
}

// Monitor aggregates the results of several checkers.
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	log      ssLog.Logger
}

// NewMonitor creates a new health monitor.
func NewMonitor(log ssLog.Logger) *Monitor {
	if log == nil {
		log = ssLog.Noop
	}
	return &Monitor{
		checkers: make(map[string]Checker),
		log:      log,
	}
}

// AddChecker adds a health checker, replacing any previous checker with the same name.
func (hm *Monitor) AddChecker(checker Checker) {
	hm.mu.Lock()
	hm.checkers[checker.Name()] = checker
	hm.mu.Unlock()
}

// Check runs all registered checkers. The overall status is the worst component status.
func (hm *Monitor) Check(ctx context.Context) Report {
	hm.mu.RLock()
	checkers := make(map[string]Checker, len(hm.checkers))
	for name, checker := range hm.checkers {
		checkers[name] = checker
	}
	hm.mu.RUnlock()

	components := make(map[string]ComponentHealth, len(checkers))
	overallStatus := StatusHealthy
	for name, checker := range checkers {
		health := checker.Check(ctx)
		components[name] = health
		if health.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if health.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}
	return Report{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
	}
}

// HTTPHandler returns an HTTP handler that responds with the JSON health report.
// Unhealthy reports use status 503, everything else 200.
func (hm *Monitor) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := hm.Check(ctx)
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		err := json.NewEncoder(w).Encode(report)
		if err != nil {
			hm.log.Warnf("Failed to write health report: %v", err)
		}
	}
}

// Serve serves the health endpoint at /health on the given address until the context is canceled.
func (hm *Monitor) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hm.HTTPHandler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	hm.log.Infof("Serving health checks on %s", addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Pinger is implemented by database handles.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker checks database connectivity.
type DatabaseChecker struct {
	db   Pinger
	name string
}

// NewDatabaseChecker creates a database health checker.
func NewDatabaseChecker(db Pinger, name string) *DatabaseChecker {
	if name == "" {
		name = "database"
	}
	return &DatabaseChecker{db: db, name: name}
}

func (dc *DatabaseChecker) Name() string {
	return dc.name
}

func (dc *DatabaseChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := dc.db.Ping(ctx)
	latency := time.Since(start)
	if err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("database ping failed: %v", err),
			Timestamp: time.Now(),
			Details:   map[string]any{"latency": latency.String()},
		}
	}
	status := StatusHealthy
	if latency > SlowDatabaseThreshold {
		status = StatusDegraded
	}
	return ComponentHealth{
		Status:    status,
		Timestamp: time.Now(),
		Details:   map[string]any{"latency": latency.String()},
	}
}

// ConnectionState is implemented by chat transports.
type ConnectionState interface {
	IsConnected() bool
	IsLoggedIn() bool
}

// TransportChecker checks the chat transport connection.
type TransportChecker struct {
	transport ConnectionState
	name      string
}

// NewTransportChecker creates a chat transport health checker.
func NewTransportChecker(transport ConnectionState, name string) *TransportChecker {
	if name == "" {
		name = "transport"
	}
	return &TransportChecker{transport: transport, name: name}
}

func (tc *TransportChecker) Name() string {
	return tc.name
}

func (tc *TransportChecker) Check(_ context.Context) ComponentHealth {
	isConnected := tc.transport.IsConnected()
	isLoggedIn := tc.transport.IsLoggedIn()
	details := map[string]any{
		"connected": isConnected,
		"logged_in": isLoggedIn,
	}
	switch {
	case !isConnected:
		return ComponentHealth{Status: StatusUnhealthy, Message: "not connected", Timestamp: time.Now(), Details: details}
	case !isLoggedIn:
		return ComponentHealth{Status: StatusDegraded, Message: "connected but not logged in", Timestamp: time.Now(), Details: details}
	default:
		return ComponentHealth{Status: StatusHealthy, Timestamp: time.Now(), Details: details}
	}
}

// LivenessChecker always reports healthy while the process is running.
type LivenessChecker struct {
	name    string
	started time.Time
}

// NewLivenessChecker creates a liveness checker.
func NewLivenessChecker(name string) *LivenessChecker {
	if name == "" {
		name = "liveness"
	}
	return &LivenessChecker{name: name, started: time.Now()}
}

func (lc *LivenessChecker) Name() string {
	return lc.name
}

func (lc *LivenessChecker) Check(_ context.Context) ComponentHealth {
	return ComponentHealth{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Details:   map[string]any{"uptime": time.Since(lc.started).Round(time.Second).String()},
	}
}
