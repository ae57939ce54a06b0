// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	waTypes "go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"

	"go.mau.fi/ssbot"
	"go.mau.fi/ssbot/types"
	"go.mau.fi/ssbot/types/events"
)

const timeLabelFormat = "15:04"

// Participant attribute flags stored in GroupMember.AttrStatus.
const (
	AttrAdmin      = 1 << 0
	AttrSuperAdmin = 1 << 1
)

func (c *Client) handleWAEvent(rawEvt any) {
	ctx := context.Background()
	switch evt := rawEvt.(type) {
	case *waEvents.Connected:
		c.Log.Infof("Connected to WhatsApp")
		go func() {
			err := c.FetchGroupContacts(ctx)
			if err != nil {
				c.Log.Errorf("Failed to fetch group contacts after connecting: %v", err)
			}
		}()
	case *waEvents.LoggedOut:
		c.Log.Warnf("Logged out from WhatsApp (reason: %s)", evt.Reason)
	case *waEvents.Message:
		c.handleMessage(ctx, evt)
	case *waEvents.GroupInfo:
		c.handleGroupInfo(ctx, evt)
	case *waEvents.JoinedGroup:
		record := c.rememberGroup(&evt.GroupInfo)
		c.dispatchEvent(&events.GroupAdded{Group: record})
		c.dispatchEvent(&events.GroupMembers{GroupID: record.GroupID, Members: groupMembers(&evt.GroupInfo)})
	}
}

func (c *Client) handleMessage(ctx context.Context, evt *waEvents.Message) {
	if evt.Info.IsFromMe || evt.Message == nil {
		return
	}
	if !evt.Info.IsGroup {
		text := messageText(evt.Message)
		if text == "" {
			return
		}
		c.dispatchEvent(&events.PersonalMessage{SenderID: evt.Info.Chat.String(), Text: text})
		return
	}
	msg := c.newGroupMessage(evt.Info.Chat, evt.Info.ID, evt.Info.Timestamp)
	msg.SenderDisplayName = evt.Info.PushName
	msg.SenderNickname = evt.Info.PushName
	c.fillContent(ctx, msg, evt.Message)
	if msg.Type == types.MessageTypeText {
		self := c.Self()
		msg.Text = rewriteSelfMention(msg.Text, c.ownUsers(), self.NickName)
	}
	c.dispatchEvent(&events.GroupMessage{Message: msg})
}

func (c *Client) handleGroupInfo(ctx context.Context, evt *waEvents.GroupInfo) {
	actor := evt.Notify
	if actor == "" && evt.Sender != nil {
		actor = evt.Sender.User
	}
	for _, joined := range evt.Join {
		msg := c.newGroupMessage(evt.JID, uuid.NewString(), evt.Timestamp)
		msg.Type = types.MessageTypeSystemNotification
		msg.SystemNotification = renderMemberJoined(actor, joined.User)
		c.dispatchEvent(&events.GroupMessage{Message: msg})
	}
	if evt.Name != nil {
		// The notification carries the old name, the directory is renamed by the processor.
		msg := c.newGroupMessage(evt.JID, uuid.NewString(), evt.Timestamp)
		msg.Type = types.MessageTypeSystemNotification
		msg.SystemNotification = renderGroupRenamed(actor, evt.Name.Name)
		c.renameGroup(evt.JID, evt.Name.Name)
		c.dispatchEvent(&events.GroupMessage{Message: msg})
	}
	if len(evt.Join) > 0 || len(evt.Leave) > 0 {
		go c.refreshMembers(ctx, evt.JID)
	}
}

func (c *Client) refreshMembers(ctx context.Context, jid waTypes.JID) {
	info, err := c.wa.GetGroupInfo(ctx, jid)
	if err != nil {
		c.Log.Warnf("Failed to get info of %s after membership change: %v", jid, err)
		return
	}
	record := c.rememberGroup(info)
	c.dispatchEvent(&events.GroupMembersChanged{GroupID: record.GroupID, Members: groupMembers(info)})
}

// FetchGroupContacts emits a GroupList event with all joined groups, followed by a GroupMembers event for each group.
func (c *Client) FetchGroupContacts(ctx context.Context) error {
	groups, err := c.wa.GetJoinedGroups(ctx)
	if err != nil {
		return err
	}
	records := make([]types.GroupRecord, len(groups))
	c.groupsLock.Lock()
	clear(c.groups)
	c.groupsLock.Unlock()
	for i, info := range groups {
		records[i] = c.rememberGroup(info)
	}
	c.Log.Debugf("Fetched %d groups", len(records))
	c.dispatchEvent(&events.GroupList{Groups: records})
	for _, info := range groups {
		c.dispatchEvent(&events.GroupMembers{GroupID: info.JID.String(), Members: groupMembers(info)})
	}
	return nil
}

func groupRecord(info *waTypes.GroupInfo) types.GroupRecord {
	return types.GroupRecord{
		GroupID:     info.JID.String(),
		DisplayName: info.Name,
		OwnerID:     info.OwnerJID.String(),
		MemberCount: len(info.Participants),
	}
}

func groupMembers(info *waTypes.GroupInfo) []types.GroupMember {
	members := make([]types.GroupMember, len(info.Participants))
	for i, participant := range info.Participants {
		var attr int64
		if participant.IsAdmin {
			attr |= AttrAdmin
		}
		if participant.IsSuperAdmin {
			attr |= AttrSuperAdmin
		}
		members[i] = types.GroupMember{
			GroupID:     info.JID.String(),
			UserID:      participant.JID.String(),
			NickName:    participant.DisplayName,
			DisplayName: participant.DisplayName,
			AttrStatus:  attr,
		}
	}
	return members
}

func (c *Client) rememberGroup(info *waTypes.GroupInfo) types.GroupRecord {
	record := groupRecord(info)
	c.groupsLock.Lock()
	c.groups[info.JID] = record
	c.groupsLock.Unlock()
	return record
}

func (c *Client) renameGroup(jid waTypes.JID, newName string) {
	c.groupsLock.Lock()
	record, ok := c.groups[jid]
	if ok {
		record.DisplayName = newName
		c.groups[jid] = record
	}
	c.groupsLock.Unlock()
}

func (c *Client) newGroupMessage(chat waTypes.JID, id waTypes.MessageID, ts time.Time) *types.GroupMessage {
	c.groupsLock.RLock()
	group, ok := c.groups[chat]
	c.groupsLock.RUnlock()
	if !ok {
		group = types.GroupRecord{GroupID: chat.String()}
	}
	return &types.GroupMessage{
		ID:           id,
		GroupOwnerID: group.OwnerID,
		GroupName:    group.DisplayName,
		MemberCount:  group.MemberCount,
		FromUserID:   chat.String(),
		ToUserID:     c.Self().UserID,
		Type:         types.MessageTypeText,
		TimeLabel:    ts.Local().Format(timeLabelFormat),
		Timestamp:    ts.Unix(),
	}
}

func renderMemberJoined(actor, joined string) string {
	return fmt.Sprintf(`"%s"邀请"%s"加入了群聊`, actor, joined)
}

func renderGroupRenamed(actor, newName string) string {
	return fmt.Sprintf("%s修改群名为“%s”", actor, newName)
}

// rewriteSelfMention turns a leading "@<own number> " into "@<nickname><U+2005>", which is how the processor
// expects self-mentions to look.
func rewriteSelfMention(text string, ownUsers []string, nickName string) string {
	if nickName == "" {
		return text
	}
	for _, user := range ownUsers {
		if user == "" {
			continue
		}
		rest, ok := strings.CutPrefix(text, "@"+user)
		if !ok {
			continue
		}
		rest, ok = strings.CutPrefix(rest, " ")
		if !ok {
			rest, ok = strings.CutPrefix(rest, ssbot.MentionSeparator)
		}
		if ok {
			return "@" + nickName + ssbot.MentionSeparator + rest
		}
	}
	return text
}

func messageText(msg *waE2E.Message) string {
	if conv := msg.GetConversation(); conv != "" {
		return conv
	}
	return msg.GetExtendedTextMessage().GetText()
}

type mediaKind struct {
	prefix string
	ext    string
	typ    types.MessageType
}

var (
	mediaImage   = mediaKind{"img", ".jpg", types.MessageTypeImage}
	mediaVideo   = mediaKind{"video", ".mp4", types.MessageTypeVideo}
	mediaVoice   = mediaKind{"voice", ".ogg", types.MessageTypeVoice}
	mediaSticker = mediaKind{"sticker", ".webp", types.MessageTypeEmoticon}
)

// fillContent sets the type and content fields of the group message from the WhatsApp message.
// Media is downloaded into the upload directory.
func (c *Client) fillContent(ctx context.Context, msg *types.GroupMessage, content *waE2E.Message) {
	switch {
	case content.GetConversation() != "" || content.GetExtendedTextMessage() != nil:
		msg.Type = types.MessageTypeText
		msg.Text = messageText(content)
		msg.Link = content.GetExtendedTextMessage().GetMatchedText()
	case content.GetImageMessage() != nil:
		msg.ImagePath = c.saveMedia(ctx, msg, content.GetImageMessage(), mediaImage)
		msg.Text = content.GetImageMessage().GetCaption()
	case content.GetVideoMessage() != nil:
		msg.VideoPath = c.saveMedia(ctx, msg, content.GetVideoMessage(), mediaVideo)
		msg.Text = content.GetVideoMessage().GetCaption()
	case content.GetAudioMessage() != nil:
		msg.VoicePath = c.saveMedia(ctx, msg, content.GetAudioMessage(), mediaVoice)
	case content.GetStickerMessage() != nil:
		msg.Emoticon = c.saveMedia(ctx, msg, content.GetStickerMessage(), mediaSticker)
	case content.GetContactMessage() != nil:
		msg.Type = types.MessageTypeContactCard
		msg.ContactCard = content.GetContactMessage().GetDisplayName()
	case content.GetLocationMessage() != nil:
		loc := content.GetLocationMessage()
		msg.Type = types.MessageTypeLocation
		msg.Location = fmt.Sprintf("%.6f,%.6f %s", loc.GetDegreesLatitude(), loc.GetDegreesLongitude(), loc.GetName())
	case content.GetDocumentMessage() != nil:
		msg.Type = types.MessageTypeApp
		msg.Link = content.GetDocumentMessage().GetFileName()
	case content.GetProtocolMessage().GetType() == waE2E.ProtocolMessage_REVOKE:
		msg.Type = types.MessageTypeRecalled
		msg.RecalledMessageID = content.GetProtocolMessage().GetKey().GetID()
	default:
		msg.Type = types.MessageTypeApp
	}
}

// saveMedia downloads the attachment to <upload dir>/<prefix>_<unix time>_<message ID><ext> and returns the path.
// The processor renames the file afterwards. Failures are logged and result in an empty path.
func (c *Client) saveMedia(ctx context.Context, msg *types.GroupMessage, media whatsmeow.DownloadableMessage, kind mediaKind) string {
	msg.Type = kind.typ
	data, err := c.download(ctx, media)
	if err != nil {
		c.Log.Warnf("Failed to download %s in %s: %v", kind.prefix, msg.ID, err)
		return ""
	}
	err = os.MkdirAll(c.uploadDir, 0700)
	if err != nil {
		c.Log.Warnf("Failed to create upload directory: %v", err)
		return ""
	}
	path := filepath.Join(c.uploadDir, fmt.Sprintf("%s_%d_%s%s", kind.prefix, msg.Timestamp, msg.ID, kind.ext))
	err = os.WriteFile(path, data, 0600)
	if err != nil {
		c.Log.Warnf("Failed to save %s of %s: %v", kind.prefix, msg.ID, err)
		return ""
	}
	return path
}
