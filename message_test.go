// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"reflect"
	"testing"
)

const testUser = "@user1"

func TestParseCommand(t *testing.T) {
	for _, test := range []struct {
		text string
		name string
		args []string
	}{
		{text: "", name: "", args: nil},
		{text: "   ", name: "", args: nil},
		{text: "1", name: "1", args: []string{}},
		{text: " 绑定  2018\tpassword ", name: "绑定", args: []string{"2018", "password"}},
	} {
		name, args := parseCommand(test.text)
		if name != test.name || !reflect.DeepEqual(args, test.args) {
			t.Errorf("parseCommand(%q) = %q %q, want %q %q", test.text, name, args, test.name, test.args)
		}
	}
}

func TestRouterUnboundUser(t *testing.T) {
	for _, test := range []struct {
		text    string
		replies []string
	}{
		{text: "1", replies: []string{replyBindHelp}},
		{text: "2", replies: []string{replyNotBound}},
		{text: "3", replies: []string{"每月10日重置流量"}},
		{text: "4", replies: []string{replyNotBound}},
		// The notice and the normal branch are independent.
		{text: "5", replies: []string{replyNotBound, replyChangeHelp}},
		{text: "6", replies: []string{replyPlaceholder}},
		{text: "改密码 newpass", replies: []string{replyNotBound}},
		{text: "改密码", replies: []string{replyNotBound, replyMenu}},
		{text: "解除绑定", replies: []string{replyNotBound, replyUnbindSuccess}},
		{text: "绑定 2018", replies: []string{replyMenu}},
		{text: "hello", replies: []string{replyMenu}},
		{text: "", replies: []string{replyMenu}},
	} {
		env := newTestEnv(t)
		replies := env.send(t, testUser, test.text)
		if !reflect.DeepEqual(replies, test.replies) {
			t.Errorf("%q: Expected %q, Actual %q", test.text, test.replies, replies)
		}
		if len(env.provisioner.calls) != 0 {
			t.Errorf("%q: provisioner was called for an unbound user", test.text)
		}
	}
}

func TestRouterBoundUser(t *testing.T) {
	env := newTestEnv(t)
	env.messenger.remarks[testUser] = "SS 2018"
	for _, test := range []struct {
		text    string
		replies []string
	}{
		{text: "1", replies: []string{replyAlreadyBound}},
		{text: "2", replies: []string{"总量：100GB\n已用：60GB\n剩余：40GB"}},
		{text: "4", replies: []string{"IP：203.0.113.7\n端口：2018\n密码：password"}},
		{text: "5", replies: []string{replyChangeHelp}},
		{text: "改密码 newpass", replies: []string{replyChangeUnsupported}},
	} {
		replies := env.send(t, testUser, test.text)
		if !reflect.DeepEqual(replies, test.replies) {
			t.Errorf("%q: Expected %q, Actual %q", test.text, test.replies, replies)
		}
	}
}

func TestBindCommandSetsRemark(t *testing.T) {
	env := newTestEnv(t)
	replies := env.send(t, testUser, "绑定 2018 password")
	if len(replies) != 1 || replies[0] != replyBindSuccess {
		t.Fatalf("Expected %q, Actual %q", replyBindSuccess, replies)
	}
	if actual := env.messenger.remarks[testUser]; actual != "SS 2018" {
		t.Fatalf("remark, Expected %q, Actual %q", "SS 2018", actual)
	}
}
