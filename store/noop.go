// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package store

import (
	"context"

	"go.mau.fi/ssbot/types"
)

// NoopStore discards everything written to it and returns Error from every method.
type NoopStore struct {
	Error error
}

var _ AllStores = (*NoopStore)(nil)

func (n *NoopStore) Upgrade(ctx context.Context) error {
	return n.Error
}

func (n *NoopStore) PutGroups(ctx context.Context, groups []types.GroupRecord) error {
	return n.Error
}

func (n *NoopStore) PutGroupMembers(ctx context.Context, groupID string, members []types.GroupMember) error {
	return n.Error
}

func (n *NoopStore) DeleteGroupMembers(ctx context.Context, groupID string) error {
	return n.Error
}

func (n *NoopStore) ResetRoster(ctx context.Context) error {
	return n.Error
}

func (n *NoopStore) PutGroupMessage(ctx context.Context, msg *types.GroupMessage) error {
	return n.Error
}

func (n *NoopStore) PutEnterGroup(ctx context.Context, record *types.EnterGroupRecord) error {
	return n.Error
}

func (n *NoopStore) PutRenameGroup(ctx context.Context, record *types.RenameGroupRecord) error {
	return n.Error
}

func (n *NoopStore) GetRemarkName(ctx context.Context, userID string) (string, error) {
	return "", n.Error
}

func (n *NoopStore) PutRemarkName(ctx context.Context, userID, remark string) error {
	return n.Error
}
