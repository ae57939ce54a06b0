// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"context"
	"fmt"
	"strings"

	"go.mau.fi/ssbot/types"
	"go.mau.fi/ssbot/types/events"
)

// Command words users can send in personal messages.
const (
	CommandBindMenu       = "1"
	CommandTraffic        = "2"
	CommandResetDay       = "3"
	CommandInfo           = "4"
	CommandChangeHelp     = "5"
	CommandOther          = "6"
	CommandBind           = "绑定"
	CommandUnbind         = "解除绑定"
	CommandChangePassword = "改密码"
)

type commandHandler func(p *Processor, ctx context.Context, userID string, binding types.Binding, args []string) error

type command struct {
	// requiresBinding makes unbound users get the "not bound" notice before the handler runs.
	requiresBinding bool
	// minArgs is the number of arguments needed after the command word. Shorter messages get the menu.
	minArgs int
	handle  commandHandler
}

var commandTable = map[string]command{
	CommandBindMenu:       {handle: (*Processor).handleBindMenu},
	CommandTraffic:        {requiresBinding: true, handle: (*Processor).handleTrafficQuery},
	CommandResetDay:       {handle: (*Processor).handleResetDay},
	CommandInfo:           {requiresBinding: true, handle: (*Processor).handleInfoQuery},
	CommandChangeHelp:     {requiresBinding: true, handle: staticReply(replyChangeHelp)},
	CommandOther:          {handle: staticReply(replyPlaceholder)},
	CommandBind:           {minArgs: 2, handle: (*Processor).handleBind},
	CommandUnbind:         {requiresBinding: true, handle: (*Processor).handleUnbind},
	CommandChangePassword: {requiresBinding: true, minArgs: 1, handle: (*Processor).handleChangePassword},
}

var menuCommand = command{handle: staticReply(replyMenu)}

func staticReply(text string) commandHandler {
	return func(p *Processor, ctx context.Context, userID string, _ types.Binding, _ []string) error {
		p.reply(ctx, userID, text)
		return nil
	}
}

// parseCommand splits a message into the command word and its arguments.
func parseCommand(text string) (name string, args []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func (p *Processor) handleUserMessage(ctx context.Context, msg *events.PersonalMessage) error {
	name, args := parseCommand(msg.Text)
	binding, err := p.bindings.GetBinding(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	cmd, known := commandTable[name]
	// The notice doesn't replace the command: e.g. an unbound "5" gets both the notice and the help text.
	if known && cmd.requiresBinding && !binding.IsBound() {
		p.reply(ctx, msg.SenderID, replyNotBound)
	}
	if !known || len(args) < cmd.minArgs {
		cmd = menuCommand
	}
	p.Log.Debugf("Handling command %q from %s (%s)", name, msg.SenderID, binding)
	return cmd.handle(p, ctx, msg.SenderID, binding, args)
}

func (p *Processor) handleBindMenu(ctx context.Context, userID string, binding types.Binding, _ []string) error {
	if binding.IsBound() {
		p.reply(ctx, userID, replyAlreadyBound)
	} else {
		p.reply(ctx, userID, replyBindHelp)
	}
	return nil
}

func (p *Processor) handleResetDay(ctx context.Context, userID string, _ types.Binding, _ []string) error {
	p.reply(ctx, userID, fmt.Sprintf(replyResetDay, p.resetDay))
	return nil
}

func (p *Processor) handleBind(ctx context.Context, userID string, _ types.Binding, args []string) error {
	return p.Bind(ctx, userID, args[0], args[1])
}

func (p *Processor) handleUnbind(ctx context.Context, userID string, _ types.Binding, _ []string) error {
	return p.Unbind(ctx, userID)
}

func (p *Processor) handleChangePassword(ctx context.Context, userID string, binding types.Binding, args []string) error {
	return p.ChangePassword(ctx, userID, binding, args[0])
}

func (p *Processor) handleTrafficQuery(ctx context.Context, userID string, binding types.Binding, _ []string) error {
	return p.QueryTraffic(ctx, userID, binding)
}

func (p *Processor) handleInfoQuery(ctx context.Context, userID string, binding types.Binding, _ []string) error {
	return p.QueryInfo(ctx, userID, binding)
}
