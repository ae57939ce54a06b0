// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.mau.fi/ssbot/types"
)

var (
	memberJoinedRegex = regexp.MustCompile(`邀请(.+)加入了群聊`)
	groupRenamedRegex = regexp.MustCompile(`(.+)修改群名为“(.+)”`)
)

// MatchMemberJoined extracts the invited name from a `"inviter"邀请"name"加入了群聊` notification.
func MatchMemberJoined(notification string) (invitedName string, ok bool) {
	match := memberJoinedRegex.FindStringSubmatch(notification)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// MatchGroupRenamed extracts the actor and new name from a `actor修改群名为“name”` notification.
func MatchGroupRenamed(notification string) (actor, newName string, ok bool) {
	match := groupRenamedRegex.FindStringSubmatch(notification)
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

const mediaTimeFormat = "20060102150405"

var unsafeFileNameChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// MediaFileName returns the canonical path for a media file received in a group:
// <dir>/<YYYYMMDDHHMMSS>_<message ID>_<group name><ext>, keeping the directory and extension of the original path.
func MediaFileName(path string, ts time.Time, msgID types.MessageID, groupName string) string {
	name := fmt.Sprintf("%s_%s_%s%s", ts.Format(mediaTimeFormat), msgID, unsafeFileNameChars.Replace(groupName), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), name)
}

func (p *Processor) renameMedia(msg *types.GroupMessage) {
	for _, path := range []*string{&msg.ImagePath, &msg.VideoPath, &msg.VoicePath} {
		if *path == "" {
			continue
		}
		newPath := MediaFileName(*path, msg.Time(), msg.ID, msg.GroupName)
		err := p.renamer.Rename(*path, newPath)
		if err != nil {
			p.Log.Warnf("Failed to rename %s to %s: %v", *path, newPath, err)
			continue
		}
		p.Log.Debugf("Renamed %s to %s", *path, newPath)
		*path = newPath
	}
}

// classifyNotification records member-joined and group-renamed system notifications. Both patterns are checked
// independently.
func (p *Processor) classifyNotification(ctx context.Context, msg *types.GroupMessage) error {
	if name, ok := MatchMemberJoined(msg.SystemNotification); ok {
		err := p.store.PutEnterGroup(ctx, &types.EnterGroupRecord{
			MessageID:   msg.ID,
			GroupName:   msg.GroupName,
			FromUserID:  msg.FromUserID,
			ToUserID:    msg.ToUserID,
			InvitedName: name,
			TimeLabel:   msg.TimeLabel,
		})
		if err != nil {
			return fmt.Errorf("failed to save enter group record: %w", err)
		}
	}
	if actor, newName, ok := MatchGroupRenamed(msg.SystemNotification); ok {
		err := p.store.PutRenameGroup(ctx, &types.RenameGroupRecord{
			MessageID: msg.ID,
			GroupName: msg.GroupName,
			NewName:   newName,
			Actor:     actor,
			TimeLabel: msg.TimeLabel,
		})
		if err != nil {
			return fmt.Errorf("failed to save rename group record: %w", err)
		}
		if !p.groups.Rename(msg.FromUserID, newName) {
			p.Log.Warnf("Renamed group %s is not in the group directory", msg.FromUserID)
		}
	}
	return nil
}

func (p *Processor) handleGroupMessage(ctx context.Context, msg *types.GroupMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	p.renameMedia(msg)
	if msg.IsSystemNotification() {
		err := p.classifyNotification(ctx, msg)
		if err != nil {
			return err
		}
	}
	err := p.store.PutGroupMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to save group message %s: %w", msg.ID, err)
	}
	if cmd, ok := parseSelfMention(msg.Text, p.messenger.Self()); ok {
		return p.handleGroupCommand(ctx, cmd, msg)
	}
	return nil
}
