// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package whatsapp implements the ssbot chat transport on top of the whatsmeow multidevice client.
//
// WhatsApp has no editable remark names, so bindings are kept in a store.RemarkStore, and group
// changes arrive as structured events, which are rendered into the same system notification texts
// the processor classifies.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	waSQLStore "go.mau.fi/whatsmeow/store/sqlstore"
	waTypes "go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"

	"go.mau.fi/ssbot"
	"go.mau.fi/ssbot/store"
	"go.mau.fi/ssbot/store/sqlstore"
	"go.mau.fi/ssbot/types"
	ssLog "go.mau.fi/ssbot/util/log"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrInvalidJID  = errors.New("invalid chat ID")
)

// EventHandler receives the ssbot events converted from whatsmeow events.
type EventHandler func(evt any)

type wrappedEventHandler struct {
	fn EventHandler
	id uint32
}

var nextHandlerID uint32

// Options contains the settings for New.
type Options struct {
	// Database dialect and address of the whatsmeow device store.
	Dialect string
	Address string
	// Where remark names (and therefore bindings) are stored. Required.
	Remarks store.RemarkStore
	// Extra name the bot answers to in group mentions.
	RemarkName string
	// Directory where received group media is saved.
	UploadDir string
	// Where the login QR code is printed. Defaults to stdout.
	QRWriter io.Writer

	Log zerolog.Logger
}

type downloadFunc func(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error)

// Client is a WhatsApp transport. It implements ssbot.Messenger and ssbot.RemarkAccessor.
type Client struct {
	Log ssLog.Logger

	wa         *whatsmeow.Client
	remarks    store.RemarkStore
	remarkName string
	uploadDir  string
	qrWriter   io.Writer
	download   downloadFunc

	groups     map[waTypes.JID]types.GroupRecord
	groupsLock sync.RWMutex

	handlers     []wrappedEventHandler
	handlersLock sync.RWMutex
}

var (
	_ ssbot.Messenger      = (*Client)(nil)
	_ ssbot.RemarkAccessor = (*Client)(nil)
)

// New opens the whatsmeow device store and creates a client for the first device in it.
// The pgx or sqlite3 driver for the dialect must be imported by the caller.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Remarks == nil {
		return nil, fmt.Errorf("remark store is required")
	}
	container, err := waSQLStore.New(ctx, sqlstore.DriverName(opts.Dialect), opts.Address, waLog.Zerolog(opts.Log.With().Str("component", "whatsmeow_db").Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to open device store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	cli := newClient(opts)
	cli.wa = whatsmeow.NewClient(device, waLog.Zerolog(opts.Log.With().Str("component", "whatsmeow").Logger()))
	cli.download = cli.wa.Download
	cli.wa.AddEventHandler(cli.handleWAEvent)
	return cli, nil
}

func newClient(opts Options) *Client {
	if opts.QRWriter == nil {
		opts.QRWriter = os.Stdout
	}
	return &Client{
		Log:        ssLog.Zerolog(opts.Log.With().Str("component", "whatsapp").Logger()),
		remarks:    opts.Remarks,
		remarkName: opts.RemarkName,
		uploadDir:  opts.UploadDir,
		qrWriter:   opts.QRWriter,
		groups:     make(map[waTypes.JID]types.GroupRecord),
	}
}

// Connect connects to WhatsApp, printing a QR code to log in first if the device isn't paired yet.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID != nil {
		return c.wa.Connect()
	}
	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	err = c.wa.Connect()
	if err != nil {
		return err
	}
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			_, _ = fmt.Fprintln(c.qrWriter, "Scan this QR code with WhatsApp:")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, c.qrWriter)
		case "success":
			c.Log.Infof("Logged in successfully")
			return nil
		default:
			c.Log.Warnf("Login event: %s", evt.Event)
			if evt.Error != nil {
				return fmt.Errorf("login failed: %w", evt.Error)
			}
		}
	}
	if c.wa.Store.ID == nil {
		return ErrNotLoggedIn
	}
	return nil
}

// Disconnect closes the websocket connection.
func (c *Client) Disconnect() {
	c.wa.Disconnect()
}

// IsConnected checks if the websocket connection is open.
func (c *Client) IsConnected() bool {
	return c.wa != nil && c.wa.IsConnected()
}

// IsLoggedIn checks if the device is paired and authenticated.
func (c *Client) IsLoggedIn() bool {
	return c.wa != nil && c.wa.IsLoggedIn()
}

// AddEventHandler registers a function that is called for every converted event.
func (c *Client) AddEventHandler(handler EventHandler) uint32 {
	id := atomic.AddUint32(&nextHandlerID, 1)
	c.handlersLock.Lock()
	c.handlers = append(c.handlers, wrappedEventHandler{handler, id})
	c.handlersLock.Unlock()
	return id
}

func (c *Client) dispatchEvent(evt any) {
	c.handlersLock.RLock()
	handlers := make([]wrappedEventHandler, len(c.handlers))
	copy(handlers, c.handlers)
	c.handlersLock.RUnlock()
	for _, handler := range handlers {
		handler.fn(evt)
	}
}

func (c *Client) ownJID() waTypes.JID {
	if c.wa == nil || c.wa.Store.ID == nil {
		return waTypes.EmptyJID
	}
	return c.wa.Store.ID.ToNonAD()
}

func (c *Client) ownUsers() []string {
	if c.wa == nil || c.wa.Store.ID == nil {
		return nil
	}
	users := []string{c.wa.Store.ID.User}
	if !c.wa.Store.LID.IsEmpty() {
		users = append(users, c.wa.Store.LID.User)
	}
	return users
}

func (c *Client) Self() types.SelfInfo {
	self := types.SelfInfo{RemarkName: c.remarkName}
	if c.wa != nil {
		self.NickName = c.wa.Store.PushName
		if own := c.ownJID(); !own.IsEmpty() {
			self.UserID = own.String()
		}
	}
	return self
}

func (c *Client) GetRemarkName(ctx context.Context, userID string) (string, error) {
	return c.remarks.GetRemarkName(ctx, userID)
}

func (c *Client) SetRemarkName(ctx context.Context, userID, remark string) error {
	return c.remarks.PutRemarkName(ctx, userID, remark)
}
