// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package events contains all the events that transports emit to ssbot.Processor.HandleEvent.
package events

import (
	"go.mau.fi/ssbot/types"
)

// PersonalMessage is emitted when a one-to-one text message is received.
type PersonalMessage struct {
	SenderID string
	Text     string
}

// GroupMessage is emitted for every message received in a group chat, including system notifications.
type GroupMessage struct {
	Message *types.GroupMessage
}

// GroupList is emitted after the transport has fetched the full list of group chats.
type GroupList struct {
	Groups []types.GroupRecord
}

// GroupAdded is emitted when the account joins or creates a new group chat.
type GroupAdded struct {
	Group types.GroupRecord
}

// GroupMembers is emitted with the initial member list of a group chat.
type GroupMembers struct {
	GroupID string
	Members []types.GroupMember
}

// GroupMembersChanged is emitted with the full new member list when the membership of a group chat changes.
type GroupMembersChanged struct {
	GroupID string
	Members []types.GroupMember
}
