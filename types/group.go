// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package types

// GroupRecord contains basic information about a group chat the bot is in.
type GroupRecord struct {
	GroupID     string
	DisplayName string
	OwnerID     string
	MemberCount int
	AvatarURL   string
}

// GroupMember contains information about a participant of a group chat.
type GroupMember struct {
	GroupID     string
	UserID      string
	NickName    string
	DisplayName string // The group-specific display name, if set.
	AttrStatus  int64
}
