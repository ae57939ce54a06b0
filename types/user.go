// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package types

import (
	"strings"
)

// SelfInfo contains the names of the account the bot is logged in as.
type SelfInfo struct {
	UserID     string
	NickName   string
	RemarkName string
}

// IsSelfName returns true if the given name is the non-empty nickname or remark name of the bot.
func (si SelfInfo) IsSelfName(name string) bool {
	return name != "" && (name == si.NickName || name == si.RemarkName)
}

// RemarkBindingPrefix is the first token of a remark name that encodes a bound port.
const RemarkBindingPrefix = "SS"

// Binding is the association between a chat account and a provisioned proxy port.
//
// The zero value is Unbound.
type Binding struct {
	port string
}

// Unbound is the binding of an account without a proxy port.
var Unbound = Binding{}

// Bound returns the binding for the given port.
func Bound(port string) Binding {
	return Binding{port: port}
}

// IsBound returns true if the binding refers to a port.
func (b Binding) IsBound() bool {
	return b.port != ""
}

// Port returns the bound port, or an empty string for Unbound.
func (b Binding) Port() string {
	return b.port
}

// Remark encodes the binding into the remark name format stored on the user profile.
func (b Binding) Remark() string {
	if !b.IsBound() {
		return ""
	}
	return RemarkBindingPrefix + " " + b.port
}

func (b Binding) String() string {
	if !b.IsBound() {
		return "unbound"
	}
	return "bound(" + b.port + ")"
}

// ParseRemark decodes a remark name. Anything other than "SS <port> ..." is Unbound.
func ParseRemark(remark string) Binding {
	fields := strings.Fields(remark)
	if len(fields) < 2 || fields[0] != RemarkBindingPrefix {
		return Unbound
	}
	return Bound(fields[1])
}

// CredentialEntry is a line of the proxy user table.
type CredentialEntry struct {
	Port     string
	Password string
}

// TrafficEntry is a line of the proxy traffic table. Values are kept as written by the provisioning system.
type TrafficEntry struct {
	Port      string
	Total     string
	Used      string
	Remaining string
}
