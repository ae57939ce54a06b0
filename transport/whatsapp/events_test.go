// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package whatsapp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCommon"
	"go.mau.fi/whatsmeow/proto/waE2E"
	waTypes "go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"go.mau.fi/ssbot"
	"go.mau.fi/ssbot/store"
	"go.mau.fi/ssbot/types"
	"go.mau.fi/ssbot/types/events"
)

var (
	testGroupJID = waTypes.NewJID("123456789-987654321", waTypes.GroupServer)
	testUserJID  = waTypes.NewJID("15551234567", waTypes.DefaultUserServer)
	testTime     = time.Date(2026, 10, 18, 9, 8, 7, 0, time.Local)
)

func newTestClient(t *testing.T) (*Client, *[]any) {
	t.Helper()
	c := newClient(Options{
		Remarks:   &store.NoopStore{},
		UploadDir: t.TempDir(),
		Log:       zerolog.Nop(),
	})
	c.download = func(_ context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error) {
		if _, ok := msg.(*waE2E.VideoMessage); ok {
			return nil, errors.New("media expired")
		}
		return []byte("media data"), nil
	}
	var received []any
	c.AddEventHandler(func(evt any) {
		received = append(received, evt)
	})
	c.rememberGroup(&waTypes.GroupInfo{
		JID:       testGroupJID,
		OwnerJID:  testUserJID,
		GroupName: waTypes.GroupName{Name: "Old Name"},
		Participants: []waTypes.GroupParticipant{
			{JID: testUserJID, IsAdmin: true, IsSuperAdmin: true, DisplayName: "Alice"},
			{JID: waTypes.NewJID("15557654321", waTypes.DefaultUserServer)},
		},
	})
	return c, &received
}

func TestRewriteSelfMention(t *testing.T) {
	own := []string{"15550000000", "123456"}
	for _, test := range []struct {
		input, expected string
	}{
		{"@15550000000 runtime", "@BotName\u2005runtime"},
		{"@123456 test_emot", "@BotName\u2005test_emot"},
		{"@15550000000\u2005runtime", "@BotName\u2005runtime"},
		{"@15550000001 runtime", "@15550000001 runtime"},
		{"@155500000001 runtime", "@155500000001 runtime"},
		{"hello @15550000000 runtime", "hello @15550000000 runtime"},
	} {
		if actual := rewriteSelfMention(test.input, own, "BotName"); actual != test.expected {
			t.Errorf("%q: Expected %q, Actual %q", test.input, test.expected, actual)
		}
	}
	if actual := rewriteSelfMention("@15550000000 runtime", own, ""); actual != "@15550000000 runtime" {
		t.Errorf("mention rewritten without a nickname: %q", actual)
	}
}

func TestRenderedNotificationsMatchClassifier(t *testing.T) {
	name, ok := ssbot.MatchMemberJoined(renderMemberJoined("Alice", "15557654321"))
	if !ok || name != `"15557654321"` {
		t.Errorf("member joined, Actual %q (%v)", name, ok)
	}
	actor, newName, ok := ssbot.MatchGroupRenamed(renderGroupRenamed("Alice", "Fun Club"))
	if !ok || actor != "Alice" || newName != "Fun Club" {
		t.Errorf("group renamed, Actual %q %q (%v)", actor, newName, ok)
	}
}

func TestGroupMembers(t *testing.T) {
	info := &waTypes.GroupInfo{
		JID: testGroupJID,
		Participants: []waTypes.GroupParticipant{
			{JID: testUserJID, IsAdmin: true, DisplayName: "Alice"},
			{JID: testUserJID, IsAdmin: true, IsSuperAdmin: true},
		},
	}
	members := groupMembers(info)
	if len(members) != 2 {
		t.Fatalf("Expected %d members, Actual %d", 2, len(members))
	}
	if members[0].GroupID != testGroupJID.String() || members[0].UserID != testUserJID.String() || members[0].NickName != "Alice" {
		t.Errorf("Unexpected member %+v", members[0])
	}
	if members[0].AttrStatus != AttrAdmin || members[1].AttrStatus != AttrAdmin|AttrSuperAdmin {
		t.Errorf("Unexpected attributes %d and %d", members[0].AttrStatus, members[1].AttrStatus)
	}
}

func TestHandleGroupRename(t *testing.T) {
	c, received := newTestClient(t)
	c.handleWAEvent(&waEvents.GroupInfo{
		JID:       testGroupJID,
		Notify:    "Alice",
		Timestamp: testTime,
		Name:      &waTypes.GroupName{Name: "Fun Club"},
	})
	if len(*received) != 1 {
		t.Fatalf("Expected %d events, Actual %d", 1, len(*received))
	}
	msg := (*received)[0].(*events.GroupMessage).Message
	if !msg.IsSystemNotification() || msg.SystemNotification != "Alice修改群名为“Fun Club”" {
		t.Errorf("Unexpected notification %q", msg.SystemNotification)
	}
	if msg.GroupName != "Old Name" || msg.FromUserID != testGroupJID.String() || msg.ID == "" {
		t.Errorf("Unexpected message %+v", msg)
	}
	if next := c.newGroupMessage(testGroupJID, "next", testTime); next.GroupName != "Fun Club" {
		t.Errorf("group name after rename, Expected %q, Actual %q", "Fun Club", next.GroupName)
	}
}

func TestHandleMessages(t *testing.T) {
	c, received := newTestClient(t)
	c.handleWAEvent(&waEvents.Message{
		Info: waTypes.MessageInfo{
			MessageSource: waTypes.MessageSource{Chat: testUserJID, Sender: testUserJID},
			ID:            "DM1",
		},
		Message: &waE2E.Message{Conversation: proto.String("绑定 2018 password")},
	})
	c.handleWAEvent(&waEvents.Message{
		Info: waTypes.MessageInfo{
			MessageSource: waTypes.MessageSource{Chat: testUserJID, Sender: testUserJID, IsFromMe: true},
			ID:            "DM2",
		},
		Message: &waE2E.Message{Conversation: proto.String("2")},
	})
	c.handleWAEvent(&waEvents.Message{
		Info: waTypes.MessageInfo{
			MessageSource: waTypes.MessageSource{Chat: testGroupJID, Sender: testUserJID, IsGroup: true},
			ID:            "GM1",
			PushName:      "Alice",
			Timestamp:     testTime,
		},
		Message: &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text:        proto.String("look at https://example.com"),
			MatchedText: proto.String("https://example.com"),
		}},
	})
	if len(*received) != 2 {
		t.Fatalf("Expected %d events, Actual %d", 2, len(*received))
	}
	pm, ok := (*received)[0].(*events.PersonalMessage)
	if !ok || pm.SenderID != testUserJID.String() || pm.Text != "绑定 2018 password" {
		t.Errorf("Unexpected personal message %#v", (*received)[0])
	}
	gm := (*received)[1].(*events.GroupMessage).Message
	if gm.ID != "GM1" || gm.GroupName != "Old Name" || gm.MemberCount != 2 || gm.SenderNickname != "Alice" {
		t.Errorf("Unexpected group message %+v", gm)
	}
	if gm.Text != "look at https://example.com" || gm.Link != "https://example.com" || gm.TimeLabel != "09:08" {
		t.Errorf("Unexpected group message content %+v", gm)
	}
}

func TestFillContent(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	msg := c.newGroupMessage(testGroupJID, "IMG1", testTime)
	c.fillContent(ctx, msg, &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("cat")}})
	if msg.Type != types.MessageTypeImage || msg.Text != "cat" {
		t.Fatalf("Unexpected image message %+v", msg)
	}
	expectedPath := filepath.Join(c.uploadDir, "img_"+strconv.FormatInt(testTime.Unix(), 10)+"_IMG1.jpg")
	if msg.ImagePath != expectedPath {
		t.Fatalf("image path, Expected %q, Actual %q", expectedPath, msg.ImagePath)
	}
	if data, err := os.ReadFile(msg.ImagePath); err != nil || string(data) != "media data" {
		t.Fatalf("Unexpected saved file: %q %v", data, err)
	}

	msg = c.newGroupMessage(testGroupJID, "VID1", testTime)
	c.fillContent(ctx, msg, &waE2E.Message{VideoMessage: &waE2E.VideoMessage{}})
	if msg.Type != types.MessageTypeVideo || msg.VideoPath != "" {
		t.Fatalf("failed download should leave an empty path: %+v", msg)
	}

	msg = c.newGroupMessage(testGroupJID, "REV1", testTime)
	c.fillContent(ctx, msg, &waE2E.Message{ProtocolMessage: &waE2E.ProtocolMessage{
		Type: waE2E.ProtocolMessage_REVOKE.Enum(),
		Key:  &waCommon.MessageKey{ID: proto.String("GM1")},
	}})
	if msg.Type != types.MessageTypeRecalled || msg.RecalledMessageID != "GM1" {
		t.Fatalf("Unexpected recall message %+v", msg)
	}

	msg = c.newGroupMessage(testGroupJID, "LOC1", testTime)
	c.fillContent(ctx, msg, &waE2E.Message{LocationMessage: &waE2E.LocationMessage{
		DegreesLatitude:  proto.Float64(60.1699),
		DegreesLongitude: proto.Float64(24.9384),
		Name:             proto.String("Helsinki"),
	}})
	if msg.Type != types.MessageTypeLocation || msg.Location != "60.169900,24.938400 Helsinki" {
		t.Fatalf("Unexpected location message %+v", msg)
	}
}

func TestParseChatJID(t *testing.T) {
	if jid, err := parseChatJID(testGroupJID.String()); err != nil || jid != testGroupJID {
		t.Errorf("Expected %s, Actual %s (%v)", testGroupJID, jid, err)
	}
	if _, err := parseChatJID("@s.whatsapp.net"); !errors.Is(err, ErrInvalidJID) {
		t.Errorf("Expected ErrInvalidJID, Actual %v", err)
	}
}
