// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package store contains interfaces for persisting the group roster and message logs.
package store

import (
	"context"

	"go.mau.fi/ssbot/types"
)

// RosterStore persists the group list and the member lists of each group.
type RosterStore interface {
	PutGroups(ctx context.Context, groups []types.GroupRecord) error
	PutGroupMembers(ctx context.Context, groupID string, members []types.GroupMember) error
	DeleteGroupMembers(ctx context.Context, groupID string) error
	// ResetRoster drops all group and group member rows. It must be safe to call repeatedly.
	ResetRoster(ctx context.Context) error
}

// MessageLog persists group messages and the events classified from system notifications.
type MessageLog interface {
	PutGroupMessage(ctx context.Context, msg *types.GroupMessage) error
	PutEnterGroup(ctx context.Context, record *types.EnterGroupRecord) error
	PutRenameGroup(ctx context.Context, record *types.RenameGroupRecord) error
}

// RemarkStore keeps remark names for transports whose platform has no writable remark field.
type RemarkStore interface {
	GetRemarkName(ctx context.Context, userID string) (string, error)
	PutRemarkName(ctx context.Context, userID, remark string) error
}

// AllStores is the combination of every store interface, implemented by sqlstore.Container and NoopStore.
type AllStores interface {
	RosterStore
	MessageLog
	RemarkStore
	// Upgrade creates any missing tables.
	Upgrade(ctx context.Context) error
}
