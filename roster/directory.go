// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package roster contains the in-memory directory of group chats the bot is in.
package roster

import (
	"slices"
	"sync"

	"go.mau.fi/ssbot/types"
)

// Directory is an ordered list of group records. Lookups return the first match in directory order.
type Directory struct {
	groups []types.GroupRecord
	lock   sync.RWMutex
}

// NewDirectory returns a directory containing copies of the given records.
func NewDirectory(groups ...types.GroupRecord) *Directory {
	return &Directory{groups: slices.Clone(groups)}
}

// Replace swaps the entire directory contents.
func (d *Directory) Replace(groups []types.GroupRecord) {
	d.lock.Lock()
	d.groups = slices.Clone(groups)
	d.lock.Unlock()
}

// Add inserts a group at the end of the directory, or overwrites the existing entry with the same group ID.
func (d *Directory) Add(group types.GroupRecord) {
	d.lock.Lock()
	defer d.lock.Unlock()
	for i := range d.groups {
		if d.groups[i].GroupID == group.GroupID {
			d.groups[i] = group
			return
		}
	}
	d.groups = append(d.groups, group)
}

// Snapshot returns a copy of the directory contents.
func (d *Directory) Snapshot() []types.GroupRecord {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return slices.Clone(d.groups)
}

// Len returns the number of groups in the directory.
func (d *Directory) Len() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.groups)
}

// Get returns the group with the given ID.
func (d *Directory) Get(groupID string) (types.GroupRecord, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, group := range d.groups {
		if group.GroupID == groupID {
			return group, true
		}
	}
	return types.GroupRecord{}, false
}

// Rename sets the display name of the first group with the given ID. Returns false if there is no such group.
func (d *Directory) Rename(groupID, newName string) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	for i := range d.groups {
		if d.groups[i].GroupID == groupID {
			d.groups[i].DisplayName = newName
			return true
		}
	}
	return false
}

// ResolveByName returns the ID of the group with the given display name.
//
// Display names aren't unique: when several groups share a name, the last one in directory order wins.
func (d *Directory) ResolveByName(name string) (groupID string, ok bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, group := range d.groups {
		if group.DisplayName == name {
			groupID, ok = group.GroupID, true
		}
	}
	return
}
