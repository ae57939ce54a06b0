// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"context"
	"fmt"
	"strconv"

	"go.mau.fi/ssbot/types"
)

// Bind binds the user to the given port if the port and password are in the credential store.
func (p *Processor) Bind(ctx context.Context, userID, port, password string) error {
	ok, err := p.credentials.Authenticate(port, password)
	if err != nil {
		return fmt.Errorf("failed to check credentials: %w", err)
	} else if !ok {
		p.Log.Infof("%s failed to bind port %s: incorrect port or password", userID, port)
		p.reply(ctx, userID, replyBindFailed)
		return nil
	}
	err = p.bindings.SetBinding(ctx, userID, types.Bound(port))
	if err != nil {
		return err
	}
	p.Log.Infof("%s bound port %s", userID, port)
	p.reply(ctx, userID, replyBindSuccess)
	return nil
}

// Unbind clears the binding of the user, regardless of whether there was one.
func (p *Processor) Unbind(ctx context.Context, userID string) error {
	err := p.bindings.SetBinding(ctx, userID, types.Unbound)
	if err != nil {
		return err
	}
	p.Log.Infof("%s unbound their port", userID)
	p.reply(ctx, userID, replyUnbindSuccess)
	return nil
}

// ChangePassword asks the provisioning system to change the password of the user's bound port.
// Only ports at or above the configured minimum support changing passwords.
func (p *Processor) ChangePassword(ctx context.Context, userID string, binding types.Binding, newPassword string) error {
	if !binding.IsBound() {
		p.Log.Debugf("Not changing password for %s: not bound", userID)
		return nil
	}
	portNum, err := strconv.Atoi(binding.Port())
	if err != nil || portNum < p.minPasswordChangePort {
		p.reply(ctx, userID, replyChangeUnsupported)
		return nil
	}
	err = p.provisioner.ChangePassword(ctx, binding.Port(), newPassword)
	if err != nil {
		p.Log.Warnf("Failed to change password of port %s for %s: %v", binding.Port(), userID, err)
		p.reply(ctx, userID, replyChangeFailed)
		return nil
	}
	p.Log.Infof("%s changed the password of port %s", userID, binding.Port())
	p.reply(ctx, userID, fmt.Sprintf(replyChangeSuccess, newPassword))
	return nil
}

// QueryTraffic replies with the traffic usage of the user's bound port.
// Nothing is sent if the port has no traffic record.
func (p *Processor) QueryTraffic(ctx context.Context, userID string, binding types.Binding) error {
	if !binding.IsBound() {
		return nil
	}
	entry, found, err := p.credentials.Traffic(binding.Port())
	if err != nil {
		return fmt.Errorf("failed to read traffic table: %w", err)
	} else if !found {
		p.Log.Debugf("No traffic record for port %s of %s", binding.Port(), userID)
		return nil
	}
	p.reply(ctx, userID, fmt.Sprintf(replyTraffic, entry.Total, entry.Used, entry.Remaining))
	return nil
}

// QueryInfo replies with the proxy IP address, port and password of the user.
// Nothing is sent if the port is no longer in the user table.
func (p *Processor) QueryInfo(ctx context.Context, userID string, binding types.Binding) error {
	if !binding.IsBound() {
		return nil
	}
	entry, found, err := p.credentials.Credential(binding.Port())
	if err != nil {
		return fmt.Errorf("failed to read user table: %w", err)
	} else if !found {
		p.Log.Debugf("No user record for port %s of %s", binding.Port(), userID)
		return nil
	}
	ip, err := p.ip.OutboundIPv4()
	if err != nil {
		return err
	}
	p.reply(ctx, userID, fmt.Sprintf(replyInfo, ip, entry.Port, entry.Password))
	return nil
}
