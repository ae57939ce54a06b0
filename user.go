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

// BindingStore persists the proxy port binding of each user.
type BindingStore interface {
	GetBinding(ctx context.Context, userID string) (types.Binding, error)
	SetBinding(ctx context.Context, userID string, binding types.Binding) error
}

// RemarkAccessor is implemented by messengers that expose a writable remark name on user profiles.
type RemarkAccessor interface {
	GetRemarkName(ctx context.Context, userID string) (string, error)
	SetRemarkName(ctx context.Context, userID, remark string) error
}

// RemarkBindingStore stores bindings in the remark name of the user's profile ("SS <port>").
type RemarkBindingStore struct {
	Remarks RemarkAccessor
}

var _ BindingStore = (*RemarkBindingStore)(nil)

// NewRemarkBindingStore returns a BindingStore backed by profile remark names.
func NewRemarkBindingStore(remarks RemarkAccessor) *RemarkBindingStore {
	return &RemarkBindingStore{Remarks: remarks}
}

func (rbs *RemarkBindingStore) GetBinding(ctx context.Context, userID string) (types.Binding, error) {
	remark, err := rbs.Remarks.GetRemarkName(ctx, userID)
	if err != nil {
		return types.Unbound, fmt.Errorf("failed to get remark name of %s: %w", userID, err)
	}
	return types.ParseRemark(remark), nil
}

func (rbs *RemarkBindingStore) SetBinding(ctx context.Context, userID string, binding types.Binding) error {
	err := rbs.Remarks.SetRemarkName(ctx, userID, binding.Remark())
	if err != nil {
		return fmt.Errorf("failed to set remark name of %s: %w", userID, err)
	}
	return nil
}

// IsRegistered checks whether the given user has bound a proxy port.
func (p *Processor) IsRegistered(ctx context.Context, userID string) (bool, error) {
	binding, err := p.bindings.GetBinding(ctx, userID)
	if err != nil {
		return false, err
	}
	return binding.IsBound(), nil
}
