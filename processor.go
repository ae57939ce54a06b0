// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ssbot implements a chat bot that lets users bind their chat account to a proxy port,
// query traffic and change passwords, while logging the group chats it is in.
package ssbot

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"go.mau.fi/ssbot/roster"
	"go.mau.fi/ssbot/store"
	"go.mau.fi/ssbot/types"
	"go.mau.fi/ssbot/types/events"
	ssLog "go.mau.fi/ssbot/util/log"
)

// Messenger is the chat transport the processor replies through.
//
// Sending is fire-and-forget: errors are logged, never retried.
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
	SendImage(ctx context.Context, to, path string) error
	SendFile(ctx context.Context, to, path string) error
	SendEmoticon(ctx context.Context, to, path string) error
	// Self returns the names of the logged-in account.
	Self() types.SelfInfo
	// FetchGroupContacts refetches the group list and member lists.
	// The results are delivered back to the processor as GroupList and GroupMembers events.
	FetchGroupContacts(ctx context.Context) error
}

// CredentialStore answers lookups against the proxy user and traffic tables.
type CredentialStore interface {
	Authenticate(port, password string) (bool, error)
	Credential(port string) (types.CredentialEntry, bool, error)
	Traffic(port string) (types.TrafficEntry, bool, error)
}

// Provisioner changes proxy passwords in the external provisioning system.
type Provisioner interface {
	ChangePassword(ctx context.Context, port, password string) error
}

// IPResolver returns the public-facing IPv4 address of the proxy host.
type IPResolver interface {
	OutboundIPv4() (string, error)
}

// FileRenamer moves downloaded media files.
type FileRenamer interface {
	Rename(oldPath, newPath string) error
}

// Replier is an optional chatbot used by the test_bot group command.
type Replier interface {
	Reply(ctx context.Context, text string) (string, error)
}

// Store is the persistence the processor writes rosters and message logs to.
type Store interface {
	store.RosterStore
	store.MessageLog
	Upgrade(ctx context.Context) error
}

type osRenamer struct{}

func (osRenamer) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// DefaultMinPasswordChangePort is the password change threshold used by the default config.
const DefaultMinPasswordChangePort = 20000

// Defaults for the corresponding Options fields.
const (
	DefaultResetDay              = 10
	DefaultAssetDir              = "test"
)

// Options contains the collaborators and settings of a Processor.
type Options struct {
	Messenger   Messenger       // Required.
	Credentials CredentialStore // Required.
	Provisioner Provisioner     // Required.
	IPResolver  IPResolver      // Required.

	// Defaults to storing bindings in the messenger's remark names, if it implements RemarkAccessor.
	Bindings BindingStore
	// Defaults to an empty directory.
	Groups *roster.Directory
	// Defaults to a store that discards everything.
	Store Store
	// Defaults to os.Rename.
	Renamer FileRenamer
	// Optional.
	Bot Replier

	// Ports below this can't change their password through the bot. Zero allows every numeric port.
	MinPasswordChangePort int
	// Day of month when traffic quotas are reset.
	ResetDay int
	// Directory containing the emotion/ and Data/upload/ assets used by the test group commands.
	AssetDir string

	Now func() time.Time
	Log ssLog.Logger
}

// Processor routes decoded chat events to the command handlers and to persistence.
//
// Events are handled one at a time: Dispatch holds a lock for the whole duration of handling an event.
type Processor struct {
	Log ssLog.Logger

	messenger   Messenger
	bindings    BindingStore
	credentials CredentialStore
	provisioner Provisioner
	ip          IPResolver
	groups      *roster.Directory
	store       Store
	renamer     FileRenamer
	bot         Replier

	minPasswordChangePort int
	resetDay              int
	assetDir              string

	now       func() time.Time
	startedAt time.Time

	handleLock sync.Mutex
}

// NewProcessor validates the options and creates a Processor.
func NewProcessor(opts Options) (*Processor, error) {
	switch {
	case opts.Messenger == nil:
		return nil, ErrNoMessenger
	case opts.Credentials == nil:
		return nil, ErrNoCredentialStore
	case opts.Provisioner == nil:
		return nil, ErrNoProvisioner
	case opts.IPResolver == nil:
		return nil, ErrNoIPResolver
	}
	if opts.Bindings == nil {
		remarks, ok := opts.Messenger.(RemarkAccessor)
		if !ok {
			return nil, ErrNoBindingStore
		}
		opts.Bindings = NewRemarkBindingStore(remarks)
	}
	if opts.Groups == nil {
		opts.Groups = roster.NewDirectory()
	}
	if opts.Store == nil {
		opts.Store = &store.NoopStore{}
	}
	if opts.Renamer == nil {
		opts.Renamer = osRenamer{}
	}
	if opts.ResetDay == 0 {
		opts.ResetDay = DefaultResetDay
	}
	if opts.AssetDir == "" {
		opts.AssetDir = DefaultAssetDir
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = ssLog.Noop
	}
	return &Processor{
		Log: opts.Log,

		messenger:   opts.Messenger,
		bindings:    opts.Bindings,
		credentials: opts.Credentials,
		provisioner: opts.Provisioner,
		ip:          opts.IPResolver,
		groups:      opts.Groups,
		store:       opts.Store,
		renamer:     opts.Renamer,
		bot:         opts.Bot,

		minPasswordChangePort: opts.MinPasswordChangePort,
		resetDay:              opts.ResetDay,
		assetDir:              opts.AssetDir,

		now:       opts.Now,
		startedAt: opts.Now(),
	}, nil
}

// Groups returns the group directory the processor maintains.
func (p *Processor) Groups() *roster.Directory {
	return p.groups
}

// Dispatch handles a single event synchronously. Unknown event types are ignored.
func (p *Processor) Dispatch(ctx context.Context, rawEvt any) error {
	p.handleLock.Lock()
	defer p.handleLock.Unlock()
	switch evt := rawEvt.(type) {
	case *events.PersonalMessage:
		if evt == nil {
			return ErrNilEvent
		}
		return p.handleUserMessage(ctx, evt)
	case *events.GroupMessage:
		if evt == nil || evt.Message == nil {
			return ErrNilEvent
		}
		return p.handleGroupMessage(ctx, evt.Message)
	case *events.GroupList:
		if evt == nil {
			return ErrNilEvent
		}
		return p.handleGroupList(ctx, evt.Groups)
	case *events.GroupAdded:
		if evt == nil {
			return ErrNilEvent
		}
		return p.handleGroupAdded(ctx, evt.Group)
	case *events.GroupMembers:
		if evt == nil {
			return ErrNilEvent
		}
		return p.handleGroupMembers(ctx, evt.GroupID, evt.Members)
	case *events.GroupMembersChanged:
		if evt == nil {
			return ErrNilEvent
		}
		return p.handleGroupMembersChanged(ctx, evt.GroupID, evt.Members)
	default:
		p.Log.Debugf("Ignoring unknown event of type %T", rawEvt)
		return nil
	}
}

// HandleEvent is an event handler function that can be registered to a transport.
// Errors and panics are logged instead of being returned.
func (p *Processor) HandleEvent(evt any) {
	defer func() {
		if err := recover(); err != nil {
			p.Log.Errorf("Event handler panicked while handling %T: %v\n%s", evt, err, debug.Stack())
		}
	}()
	err := p.Dispatch(context.Background(), evt)
	if err != nil {
		p.Log.Errorf("Failed to handle %T: %v", evt, err)
	}
}

func (p *Processor) reply(ctx context.Context, to, text string) {
	err := p.messenger.SendText(ctx, to, text)
	if err != nil {
		p.Log.Warnf("Failed to send text to %s: %v", to, err)
	}
}

func (p *Processor) runtimeText() string {
	uptime := p.now().Sub(p.startedAt)
	if uptime < 0 {
		uptime = 0
	}
	days := int(uptime / (24 * time.Hour))
	uptime -= time.Duration(days) * 24 * time.Hour
	hours := int(uptime / time.Hour)
	uptime -= time.Duration(hours) * time.Hour
	minutes := int(uptime / time.Minute)
	uptime -= time.Duration(minutes) * time.Minute
	return fmt.Sprintf(replyRuntime, days, hours, minutes, int(uptime/time.Second))
}
