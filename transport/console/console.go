// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package console implements a line-based chat transport on top of stdin and stdout, for running the bot locally.
//
// Plain lines are personal messages from DefaultSender. Lines starting with a slash are commands:
//
//	/as <user ID> <text>            personal message from another user
//	/group <group ID> <text>        group message
//	/image <group ID> <path>        group image message
//	/notify <group ID> <text>       group system notification
//	/rename <group ID> <new name>   group rename notification
//	/join <group ID> <name>         the bot was added to a new group
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go.mau.fi/ssbot/store"
	"go.mau.fi/ssbot/types"
	"go.mau.fi/ssbot/types/events"
	ssLog "go.mau.fi/ssbot/util/log"
)

// DefaultSender is the user ID of plain input lines.
const DefaultSender = "console"

var (
	ErrUnknownCommand = errors.New("unknown console command")
	ErrMissingArgs    = errors.New("not enough arguments")
	ErrUnknownGroup   = errors.New("unknown group")
)

// EventHandler receives the events parsed from input lines.
type EventHandler func(evt any)

type wrappedEventHandler struct {
	fn EventHandler
	id uint32
}

var nextHandlerID uint32

// Client is a console chat transport. It implements ssbot.Messenger and ssbot.RemarkAccessor.
type Client struct {
	Log ssLog.Logger

	self    types.SelfInfo
	remarks store.RemarkStore

	out     io.Writer
	outLock sync.Mutex

	groups     []types.GroupRecord
	members    map[string][]types.GroupMember
	groupsLock sync.RWMutex

	handlers     []wrappedEventHandler
	handlersLock sync.RWMutex

	now func() time.Time
}

// NewClient creates a console client writing outgoing messages to out.
// Remark names are kept in the given store, since there is no contact list to store them in.
func NewClient(out io.Writer, self types.SelfInfo, remarks store.RemarkStore, log ssLog.Logger) *Client {
	if log == nil {
		log = ssLog.Noop
	}
	if remarks == nil {
		remarks = &store.NoopStore{}
	}
	return &Client{
		Log:     log,
		self:    self,
		remarks: remarks,
		out:     out,
		members: make(map[string][]types.GroupMember),
		now:     time.Now,
	}
}

// SetGroups sets the groups the console pretends the bot is in.
func (cli *Client) SetGroups(groups []types.GroupRecord, members map[string][]types.GroupMember) {
	cli.groupsLock.Lock()
	cli.groups = groups
	if members != nil {
		cli.members = members
	}
	cli.groupsLock.Unlock()
}

// AddEventHandler registers a function that is called for every parsed event. The returned ID can be used to remove it.
func (cli *Client) AddEventHandler(handler EventHandler) uint32 {
	id := atomic.AddUint32(&nextHandlerID, 1)
	cli.handlersLock.Lock()
	cli.handlers = append(cli.handlers, wrappedEventHandler{handler, id})
	cli.handlersLock.Unlock()
	return id
}

// RemoveEventHandler removes a previously registered event handler function.
func (cli *Client) RemoveEventHandler(id uint32) bool {
	cli.handlersLock.Lock()
	defer cli.handlersLock.Unlock()
	for index := range cli.handlers {
		if cli.handlers[index].id == id {
			cli.handlers = append(cli.handlers[:index], cli.handlers[index+1:]...)
			return true
		}
	}
	return false
}

func (cli *Client) dispatchEvent(evt any) {
	cli.handlersLock.RLock()
	handlers := make([]wrappedEventHandler, len(cli.handlers))
	copy(handlers, cli.handlers)
	cli.handlersLock.RUnlock()
	for _, handler := range handlers {
		handler.fn(evt)
	}
}

// Run reads input lines until EOF or until the context is canceled.
func (cli *Client) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		evt, err := cli.ParseLine(line)
		if err != nil {
			cli.Log.Warnf("Failed to parse input %q: %v", line, err)
			continue
		}
		cli.dispatchEvent(evt)
	}
	return scanner.Err()
}

// ParseLine converts one input line into an event.
func (cli *Client) ParseLine(line string) (any, error) {
	if !strings.HasPrefix(line, "/") {
		return &events.PersonalMessage{SenderID: DefaultSender, Text: line}, nil
	}
	cmd, rest, _ := strings.Cut(line[1:], " ")
	target, arg, ok := strings.Cut(strings.TrimSpace(rest), " ")
	arg = strings.TrimSpace(arg)
	if !ok || target == "" || arg == "" {
		return nil, fmt.Errorf("%w for /%s", ErrMissingArgs, cmd)
	}
	switch cmd {
	case "as":
		return &events.PersonalMessage{SenderID: target, Text: arg}, nil
	case "join":
		group := types.GroupRecord{GroupID: target, DisplayName: arg, OwnerID: cli.self.UserID, MemberCount: 1}
		cli.groupsLock.Lock()
		cli.groups = append(cli.groups, group)
		cli.groupsLock.Unlock()
		return &events.GroupAdded{Group: group}, nil
	case "group", "image", "notify", "rename":
		msg, err := cli.newGroupMessage(target)
		if err != nil {
			return nil, err
		}
		switch cmd {
		case "group":
			msg.Text = arg
		case "image":
			msg.Type = types.MessageTypeImage
			msg.ImagePath = arg
		case "notify":
			msg.Type = types.MessageTypeSystemNotification
			msg.SystemNotification = arg
		case "rename":
			msg.Type = types.MessageTypeSystemNotification
			msg.SystemNotification = fmt.Sprintf("%s修改群名为“%s”", DefaultSender, arg)
			cli.renameGroup(target, arg)
		}
		return &events.GroupMessage{Message: msg}, nil
	default:
		return nil, fmt.Errorf("%w /%s", ErrUnknownCommand, cmd)
	}
}

func (cli *Client) newGroupMessage(groupID string) (*types.GroupMessage, error) {
	cli.groupsLock.RLock()
	defer cli.groupsLock.RUnlock()
	for _, group := range cli.groups {
		if group.GroupID == groupID {
			now := cli.now()
			return &types.GroupMessage{
				ID:                uuid.NewString(),
				GroupOwnerID:      group.OwnerID,
				GroupName:         group.DisplayName,
				MemberCount:       group.MemberCount,
				FromUserID:        group.GroupID,
				ToUserID:          cli.self.UserID,
				SenderDisplayName: DefaultSender,
				SenderNickname:    DefaultSender,
				Type:              types.MessageTypeText,
				TimeLabel:         now.Format("15:04"),
				Timestamp:         now.Unix(),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w %s", ErrUnknownGroup, groupID)
}

// renameGroup changes the local name, the rename notification itself still carries the old one.
func (cli *Client) renameGroup(groupID, newName string) {
	cli.groupsLock.Lock()
	defer cli.groupsLock.Unlock()
	for i := range cli.groups {
		if cli.groups[i].GroupID == groupID {
			cli.groups[i].DisplayName = newName
			return
		}
	}
}

func (cli *Client) write(kind, to, body string) error {
	cli.outLock.Lock()
	defer cli.outLock.Unlock()
	_, err := fmt.Fprintf(cli.out, "[%s] -> %s (%s): %s\n", uuid.NewString(), to, kind, body)
	return err
}

func (cli *Client) SendText(_ context.Context, to, text string) error {
	return cli.write("text", to, text)
}

func (cli *Client) SendImage(_ context.Context, to, path string) error {
	return cli.write("image", to, path)
}

func (cli *Client) SendFile(_ context.Context, to, path string) error {
	return cli.write("file", to, path)
}

func (cli *Client) SendEmoticon(_ context.Context, to, path string) error {
	return cli.write("emoticon", to, path)
}

func (cli *Client) Self() types.SelfInfo {
	return cli.self
}

// FetchGroupContacts emits a GroupList event followed by a GroupMembers event for every group.
func (cli *Client) FetchGroupContacts(_ context.Context) error {
	cli.groupsLock.RLock()
	groups := make([]types.GroupRecord, len(cli.groups))
	copy(groups, cli.groups)
	memberEvents := make([]*events.GroupMembers, 0, len(groups))
	for _, group := range groups {
		members := cli.members[group.GroupID]
		memberEvents = append(memberEvents, &events.GroupMembers{
			GroupID: group.GroupID,
			Members: append([]types.GroupMember(nil), members...),
		})
	}
	cli.groupsLock.RUnlock()

	cli.dispatchEvent(&events.GroupList{Groups: groups})
	for _, evt := range memberEvents {
		cli.dispatchEvent(evt)
	}
	return nil
}

func (cli *Client) GetRemarkName(ctx context.Context, userID string) (string, error) {
	return cli.remarks.GetRemarkName(ctx, userID)
}

func (cli *Client) SetRemarkName(ctx context.Context, userID, remark string) error {
	return cli.remarks.PutRemarkName(ctx, userID, remark)
}
