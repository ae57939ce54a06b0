// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"context"
	"errors"
	"testing"

	"go.mau.fi/ssbot/types"
)

type failingRemarks struct{}

var errRemarkFailed = errors.New("remark request failed")

func (failingRemarks) GetRemarkName(context.Context, string) (string, error) {
	return "", errRemarkFailed
}

func (failingRemarks) SetRemarkName(context.Context, string, string) error {
	return errRemarkFailed
}

func TestRemarkBindingStore(t *testing.T) {
	ctx := context.Background()
	messenger := newFakeMessenger()
	bindings := NewRemarkBindingStore(messenger)

	binding, err := bindings.GetBinding(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	} else if binding.IsBound() {
		t.Fatalf("Expected unbound user, Actual %s", binding)
	}

	err = bindings.SetBinding(ctx, testUser, types.Bound("20001"))
	if err != nil {
		t.Fatal(err)
	}
	if actual := messenger.remarks[testUser]; actual != "SS 20001" {
		t.Fatalf("remark, Expected %q, Actual %q", "SS 20001", actual)
	}
	binding, _ = bindings.GetBinding(ctx, testUser)
	if binding.Port() != "20001" {
		t.Fatalf("port, Expected %q, Actual %q", "20001", binding.Port())
	}

	messenger.remarks[testUser] = "Someone from work"
	binding, _ = bindings.GetBinding(ctx, testUser)
	if binding.IsBound() {
		t.Fatalf("free-form remark parsed as %s", binding)
	}
}

func TestRemarkBindingStoreErrors(t *testing.T) {
	bindings := NewRemarkBindingStore(failingRemarks{})
	_, err := bindings.GetBinding(context.Background(), testUser)
	if !errors.Is(err, errRemarkFailed) {
		t.Fatalf("Expected wrapped errRemarkFailed, Actual %v", err)
	}
	err = bindings.SetBinding(context.Background(), testUser, types.Unbound)
	if !errors.Is(err, errRemarkFailed) {
		t.Fatalf("Expected wrapped errRemarkFailed, Actual %v", err)
	}
}

func TestNewProcessorRequiresBindingStore(t *testing.T) {
	_, err := NewProcessor(Options{
		Messenger:   plainMessenger{newFakeMessenger()},
		Credentials: missingCredentials{},
		Provisioner: &fakeProvisioner{},
		IPResolver:  staticIP("127.0.0.1"),
	})
	if !errors.Is(err, ErrNoBindingStore) {
		t.Fatalf("Expected ErrNoBindingStore, Actual %v", err)
	}
}

// plainMessenger hides the RemarkAccessor methods of the wrapped messenger.
type plainMessenger struct {
	Messenger
}
