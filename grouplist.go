// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"context"
	"fmt"

	"go.mau.fi/ssbot/types"
)

func (p *Processor) handleGroupList(ctx context.Context, groups []types.GroupRecord) error {
	p.groups.Replace(groups)
	err := p.store.PutGroups(ctx, groups)
	if err != nil {
		return fmt.Errorf("failed to save group list: %w", err)
	}
	p.Log.Debugf("Saved %d groups", len(groups))
	return nil
}

func (p *Processor) handleGroupAdded(ctx context.Context, group types.GroupRecord) error {
	p.groups.Add(group)
	err := p.store.PutGroups(ctx, []types.GroupRecord{group})
	if err != nil {
		return fmt.Errorf("failed to save new group %s: %w", group.GroupID, err)
	}
	p.Log.Infof("Joined group %s (%s)", group.DisplayName, group.GroupID)
	return nil
}

func (p *Processor) handleGroupMembers(ctx context.Context, groupID string, members []types.GroupMember) error {
	for i := range members {
		members[i].GroupID = groupID
	}
	err := p.store.PutGroupMembers(ctx, groupID, members)
	if err != nil {
		return fmt.Errorf("failed to save members of %s: %w", groupID, err)
	}
	return nil
}

func (p *Processor) handleGroupMembersChanged(ctx context.Context, groupID string, members []types.GroupMember) error {
	err := p.store.DeleteGroupMembers(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete old members of %s: %w", groupID, err)
	}
	return p.handleGroupMembers(ctx, groupID, members)
}

// CleanDB empties the group list and group member tables and makes sure all tables exist.
func (p *Processor) CleanDB(ctx context.Context) error {
	p.handleLock.Lock()
	defer p.handleLock.Unlock()
	return p.resetRoster(ctx)
}

func (p *Processor) resetRoster(ctx context.Context) error {
	err := p.store.ResetRoster(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset roster: %w", err)
	}
	err = p.store.Upgrade(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// RefreshRoster clears the stored roster and asks the messenger to refetch all group contacts.
// The refetched lists come back through HandleEvent, so the dispatch lock is released before fetching.
//
// Running it several times in a row is harmless.
func (p *Processor) RefreshRoster(ctx context.Context) error {
	p.Log.Debugf("Updating group member list")
	err := p.CleanDB(ctx)
	if err != nil {
		return err
	}
	err = p.messenger.FetchGroupContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch group contacts: %w", err)
	}
	return nil
}
