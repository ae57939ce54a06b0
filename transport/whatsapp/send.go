// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	waTypes "go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

func parseChatJID(to string) (waTypes.JID, error) {
	jid, err := waTypes.ParseJID(to)
	if err != nil {
		return jid, fmt.Errorf("%w %q: %w", ErrInvalidJID, to, err)
	} else if jid.User == "" {
		return jid, fmt.Errorf("%w %q", ErrInvalidJID, to)
	}
	return jid, nil
}

func (c *Client) send(ctx context.Context, to string, message *waE2E.Message) error {
	jid, err := parseChatJID(to)
	if err != nil {
		return err
	}
	resp, err := c.wa.SendMessage(ctx, jid, message)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid, err)
	}
	c.Log.Debugf("Sent message %s to %s", resp.ID, jid)
	return nil
}

func (c *Client) SendText(ctx context.Context, to, text string) error {
	return c.send(ctx, to, &waE2E.Message{Conversation: proto.String(text)})
}

type uploadedFile struct {
	whatsmeow.UploadResponse
	mimeType string
	fileName string
}

func (c *Client) upload(ctx context.Context, path string, mediaType whatsmeow.MediaType) (*uploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	resp, err := c.wa.Upload(ctx, data, mediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return &uploadedFile{
		UploadResponse: resp,
		mimeType:       http.DetectContentType(data),
		fileName:       filepath.Base(path),
	}, nil
}

func (uf *uploadedFile) imageMessage() *waE2E.ImageMessage {
	return &waE2E.ImageMessage{
		URL:           proto.String(uf.URL),
		DirectPath:    proto.String(uf.DirectPath),
		MediaKey:      uf.MediaKey,
		Mimetype:      proto.String(uf.mimeType),
		FileEncSHA256: uf.FileEncSHA256,
		FileSHA256:    uf.FileSHA256,
		FileLength:    proto.Uint64(uf.FileLength),
	}
}

func (c *Client) SendImage(ctx context.Context, to, path string) error {
	uploaded, err := c.upload(ctx, path, whatsmeow.MediaImage)
	if err != nil {
		return err
	}
	return c.send(ctx, to, &waE2E.Message{ImageMessage: uploaded.imageMessage()})
}

func (c *Client) SendFile(ctx context.Context, to, path string) error {
	uploaded, err := c.upload(ctx, path, whatsmeow.MediaDocument)
	if err != nil {
		return err
	}
	return c.send(ctx, to, &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
		URL:           proto.String(uploaded.URL),
		DirectPath:    proto.String(uploaded.DirectPath),
		MediaKey:      uploaded.MediaKey,
		Mimetype:      proto.String(uploaded.mimeType),
		FileEncSHA256: uploaded.FileEncSHA256,
		FileSHA256:    uploaded.FileSHA256,
		FileLength:    proto.Uint64(uploaded.FileLength),
		FileName:      proto.String(uploaded.fileName),
		Title:         proto.String(uploaded.fileName),
	}})
}

// SendEmoticon sends webp files as stickers and anything else as a plain image.
func (c *Client) SendEmoticon(ctx context.Context, to, path string) error {
	uploaded, err := c.upload(ctx, path, whatsmeow.MediaImage)
	if err != nil {
		return err
	}
	if uploaded.mimeType != "image/webp" {
		return c.send(ctx, to, &waE2E.Message{ImageMessage: uploaded.imageMessage()})
	}
	return c.send(ctx, to, &waE2E.Message{StickerMessage: &waE2E.StickerMessage{
		URL:           proto.String(uploaded.URL),
		DirectPath:    proto.String(uploaded.DirectPath),
		MediaKey:      uploaded.MediaKey,
		Mimetype:      proto.String(uploaded.mimeType),
		FileEncSHA256: uploaded.FileEncSHA256,
		FileSHA256:    uploaded.FileSHA256,
		FileLength:    proto.Uint64(uploaded.FileLength),
	}})
}
