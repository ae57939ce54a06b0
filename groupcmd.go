// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"context"
	"path/filepath"
	"strings"

	"go.mau.fi/ssbot/types"
)

// MentionSeparator is the four-per-em space the web client puts after an @mention.
const MentionSeparator = "\u2005"

// In-group commands, sent as `@<bot name><U+2005><command>`.
const (
	GroupCommandRuntime  = "runtime"
	GroupCommandSendImg  = "test_sendimg"
	GroupCommandSendFile = "test_sendfile"
	GroupCommandBot      = "test_bot"
	GroupCommandEmot     = "test_emot"
)

var emoticonNames = []string{
	"0.jpg", "1.jpeg", "2.gif", "3.jpg", "4.jpeg",
	"5.gif", "6.gif", "7.gif", "8.jpg", "9.jpg",
}

type groupCommandHandler func(p *Processor, ctx context.Context, groupID, cmd string) error

var groupCommandTable = map[string]groupCommandHandler{
	GroupCommandRuntime: func(p *Processor, ctx context.Context, groupID, _ string) error {
		return p.messenger.SendText(ctx, groupID, p.runtimeText())
	},
	GroupCommandSendImg: func(p *Processor, ctx context.Context, groupID, _ string) error {
		return p.messenger.SendImage(ctx, groupID, filepath.Join(p.assetDir, "emotion", "7.gif"))
	},
	GroupCommandSendFile: func(p *Processor, ctx context.Context, groupID, _ string) error {
		return p.messenger.SendFile(ctx, groupID, filepath.Join(p.assetDir, "Data", "upload", "shake.wav"))
	},
	GroupCommandBot: (*Processor).handleBotCommand,
	GroupCommandEmot: func(p *Processor, ctx context.Context, groupID, _ string) error {
		name := emoticonNames[p.now().Unix()%int64(len(emoticonNames))]
		return p.messenger.SendEmoticon(ctx, groupID, filepath.Join(p.assetDir, "emotion", name))
	},
}

// parseSelfMention returns the command after an @mention of the bot's own nickname or remark name.
func parseSelfMention(text string, self types.SelfInfo) (cmd string, ok bool) {
	if !strings.HasPrefix(text, "@") {
		return "", false
	}
	name, rest, found := strings.Cut(text[1:], MentionSeparator)
	if !found || !self.IsSelfName(name) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func (p *Processor) handleGroupCommand(ctx context.Context, cmd string, msg *types.GroupMessage) error {
	handler, ok := groupCommandTable[cmd]
	if !ok {
		p.Log.Debugf("Ignoring unknown group command %q from %s", cmd, msg.SourceString())
		return nil
	}
	groupID, ok := p.groups.ResolveByName(msg.GroupName)
	if !ok {
		p.Log.Warnf("Can't run group command %q: group %q is not in the group directory", cmd, msg.GroupName)
		return nil
	}
	p.Log.Debugf("Running group command %q in %s", cmd, groupID)
	err := handler(p, ctx, groupID, cmd)
	if err != nil {
		p.Log.Warnf("Group command %q in %s failed: %v", cmd, groupID, err)
	}
	return nil
}

func (p *Processor) handleBotCommand(ctx context.Context, groupID, cmd string) error {
	if p.bot == nil {
		return nil
	}
	reply, err := p.bot.Reply(ctx, cmd)
	if err != nil || reply == "" {
		return err
	}
	return p.messenger.SendText(ctx, groupID, reply)
}
