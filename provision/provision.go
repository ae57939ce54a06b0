// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package provision talks to the host-side proxy provisioning system.
package provision

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"

	ssLog "go.mau.fi/ssbot/util/log"
)

// DefaultProbeAddress is dialed over UDP to find the outbound interface. No packets are sent.
const DefaultProbeAddress = "8.8.8.8:80"

// ErrNoIPv4 is returned by OutboundIPv4 if the outbound interface has no IPv4 address.
var ErrNoIPv4 = errors.New("outbound interface has no IPv4 address")

// Script runs the provisioning admin script, e.g. `ssadmin.sh cpw <port> <password>`.
type Script struct {
	Path string
	Log  ssLog.Logger
}

// NewScript returns a Script calling the admin script at the given path.
func NewScript(path string, log ssLog.Logger) *Script {
	if log == nil {
		log = ssLog.Noop
	}
	return &Script{Path: path, Log: log}
}

// ChangePassword changes the password of a port. A non-zero exit status is returned as an error.
func (s *Script) ChangePassword(ctx context.Context, port, password string) error {
	cmd := exec.CommandContext(ctx, s.Path, "cpw", port, password)
	output, err := cmd.CombinedOutput()
	if err != nil {
		s.Log.Warnf("%s cpw %s failed: %v (output: %q)", s.Path, port, err, output)
		return fmt.Errorf("failed to change password of port %s: %w", port, err)
	}
	s.Log.Debugf("Changed password of port %s", port)
	return nil
}

// Prober finds the host's outbound IPv4 address by "connecting" a UDP socket.
type Prober struct {
	Address string
}

// NewProber returns a Prober dialing the given address, or DefaultProbeAddress if it's empty.
func NewProber(address string) *Prober {
	if address == "" {
		address = DefaultProbeAddress
	}
	return &Prober{Address: address}
}

// OutboundIPv4 returns the local address the kernel would use to reach the probe address.
func (p *Prober) OutboundIPv4() (string, error) {
	conn, err := net.Dial("udp4", p.Address)
	if err != nil {
		return "", fmt.Errorf("failed to probe outbound address: %w", err)
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil {
		return "", ErrNoIPv4
	}
	return addr.IP.To4().String(), nil
}
