// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package types contains various structs and other types used by ssbot.
package types

import (
	"errors"
	"fmt"
	"time"
)

// MessageID is the transport-assigned ID of a chat message.
type MessageID = string

// MessageType is the numeric kind of a chat message as reported by the web client.
type MessageType int

// Known message types.
const (
	MessageTypeText               MessageType = 1
	MessageTypeImage              MessageType = 3
	MessageTypeVoice              MessageType = 34
	MessageTypeFriendVerify       MessageType = 37
	MessageTypeContactCard        MessageType = 42
	MessageTypeVideo              MessageType = 43
	MessageTypeEmoticon           MessageType = 47
	MessageTypeLocation           MessageType = 48
	MessageTypeApp                MessageType = 49
	MessageTypeSystemNotification MessageType = 10000
	MessageTypeRecalled           MessageType = 10002
)

var messageTypeNames = map[MessageType]string{
	MessageTypeText:               "text",
	MessageTypeImage:              "image",
	MessageTypeVoice:              "voice",
	MessageTypeFriendVerify:       "friend_verify",
	MessageTypeContactCard:        "contact_card",
	MessageTypeVideo:              "video",
	MessageTypeEmoticon:           "emoticon",
	MessageTypeLocation:           "location",
	MessageTypeApp:                "app",
	MessageTypeSystemNotification: "system_notification",
	MessageTypeRecalled:           "recalled",
}

func (mt MessageType) String() string {
	name, ok := messageTypeNames[mt]
	if !ok {
		return fmt.Sprintf("unknown(%d)", int(mt))
	}
	return name
}

// ErrMissingMessageID is returned by GroupMessage.Validate for messages without an ID.
var ErrMissingMessageID = errors.New("group message has no message ID")

// GroupMessage is a fully decoded message received in a group chat.
type GroupMessage struct {
	ID           MessageID
	GroupOwnerID string // The owner UIN of the group.
	GroupName    string
	MemberCount  int

	FromUserID string // The group chat the message was received in.
	ToUserID   string // The receiving (own) account.

	SenderAttrStatus  int64
	SenderDisplayName string // The sender's group-specific display name, if any.
	SenderNickname    string

	Type MessageType

	Emoticon string
	Text     string

	// Local paths of downloaded media. These are rewritten to the canonical file name before persisting.
	ImagePath string
	VideoPath string
	VoicePath string

	Link              string
	ContactCard       string
	Location          string
	RecalledMessageID MessageID

	SystemNotification string // The notification text, only set for MessageTypeSystemNotification.

	TimeLabel string // Human-readable local time of the message.
	Timestamp int64  // Unix seconds.
}

// Validate checks the fields the processor relies on.
func (gm *GroupMessage) Validate() error {
	if gm.ID == "" {
		return ErrMissingMessageID
	}
	return nil
}

// Time returns the message timestamp in local time.
func (gm *GroupMessage) Time() time.Time {
	return time.Unix(gm.Timestamp, 0).Local()
}

// IsSystemNotification returns true if the message is a platform-generated group notification.
func (gm *GroupMessage) IsSystemNotification() bool {
	return gm.Type == MessageTypeSystemNotification
}

// SourceString returns a log-friendly representation of who sent the message and where.
func (gm *GroupMessage) SourceString() string {
	name := gm.SenderDisplayName
	if name == "" {
		name = gm.SenderNickname
	}
	return fmt.Sprintf("%s in %s (%s)", name, gm.GroupName, gm.FromUserID)
}

// EnterGroupRecord is logged when a system notification reports that someone was invited into a group.
type EnterGroupRecord struct {
	MessageID   MessageID
	GroupName   string
	FromUserID  string
	ToUserID    string
	InvitedName string
	TimeLabel   string
}

// RenameGroupRecord is logged when a system notification reports a group name change.
type RenameGroupRecord struct {
	MessageID MessageID
	GroupName string // The group name at the time the message was received.
	NewName   string
	Actor     string
	TimeLabel string
}
