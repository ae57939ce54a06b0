package ssbot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.mau.fi/ssbot/types"
	"go.mau.fi/ssbot/types/events"
)

func TestMatchMemberJoined(t *testing.T) {
	name, ok := MatchMemberJoined(`"Alice"邀请"Bob"加入了群聊`)
	if !ok || name != `"Bob"` {
		t.Fatalf("Expected %q, Actual %q (%v)", `"Bob"`, name, ok)
	}
	if _, ok = MatchMemberJoined("Alice修改群名为“Fun Club”"); ok {
		t.Fatal("rename notification matched the member-joined pattern")
	}
}

func TestMatchGroupRenamed(t *testing.T) {
	actor, newName, ok := MatchGroupRenamed("Alice修改群名为“Fun Club”")
	if !ok || actor != "Alice" || newName != "Fun Club" {
		t.Fatalf("Expected Alice / Fun Club, Actual %q / %q (%v)", actor, newName, ok)
	}
	if _, _, ok = MatchGroupRenamed("you were removed from the group"); ok {
		t.Fatal("unrelated notification matched the rename pattern")
	}
}

func newGroupMessage(id string) *types.GroupMessage {
	return &types.GroupMessage{
		ID:         id,
		GroupName:  "Old Name",
		FromUserID: "@@group1",
		ToUserID:   "@bot",
		Type:       types.MessageTypeText,
		TimeLabel:  "12:00",
		Timestamp:  time.Date(2026, 10, 18, 9, 8, 7, 0, time.Local).Unix(),
	}
}

func TestRenameNotificationRenamesDirectoryEntry(t *testing.T) {
	env := newTestEnv(t)
	msg := newGroupMessage("1001")
	msg.Type = types.MessageTypeSystemNotification
	msg.SystemNotification = "Alice修改群名为“Fun Club”"
	if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
		t.Fatal(err)
	}
	group, _ := env.proc.Groups().Get("@@group1")
	if group.DisplayName != "Fun Club" {
		t.Fatalf("directory name, Expected %q, Actual %q", "Fun Club", group.DisplayName)
	}
	if other, _ := env.proc.Groups().Get("@@group2"); other.DisplayName != "Other" {
		t.Fatalf("unrelated group was renamed: %+v", other)
	}
	expected := types.RenameGroupRecord{MessageID: "1001", GroupName: "Old Name", NewName: "Fun Club", Actor: "Alice", TimeLabel: "12:00"}
	if len(env.store.renames) != 1 || env.store.renames[0] != expected {
		t.Fatalf("rename records, Expected %+v, Actual %+v", expected, env.store.renames)
	}
	if len(env.store.enters) != 0 {
		t.Fatalf("unexpected enter records: %+v", env.store.enters)
	}
	if len(env.store.messages) != 1 {
		t.Fatalf("message log, Expected 1 message, Actual %d", len(env.store.messages))
	}
}

func TestMemberJoinedNotification(t *testing.T) {
	env := newTestEnv(t)
	msg := newGroupMessage("1002")
	msg.Type = types.MessageTypeSystemNotification
	msg.SystemNotification = `"Alice"邀请"Bob"加入了群聊`
	if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
		t.Fatal(err)
	}
	expected := types.EnterGroupRecord{MessageID: "1002", GroupName: "Old Name", FromUserID: "@@group1", ToUserID: "@bot", InvitedName: `"Bob"`, TimeLabel: "12:00"}
	if len(env.store.enters) != 1 || env.store.enters[0] != expected {
		t.Fatalf("enter records, Expected %+v, Actual %+v", expected, env.store.enters)
	}
	if len(env.store.renames) != 0 {
		t.Fatalf("unexpected rename records: %+v", env.store.renames)
	}
}

func TestNotificationMatchesBothPatterns(t *testing.T) {
	env := newTestEnv(t)
	msg := newGroupMessage("1003")
	msg.Type = types.MessageTypeSystemNotification
	msg.SystemNotification = `"Alice"邀请"Bob"加入了群聊 Alice修改群名为“Fun Club”`
	if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
		t.Fatal(err)
	}
	if len(env.store.enters) != 1 || env.store.enters[0].MessageID != "1003" {
		t.Fatalf("enter records, Expected 1 for message 1003, Actual %+v", env.store.enters)
	}
	if len(env.store.renames) != 1 || env.store.renames[0].NewName != "Fun Club" {
		t.Fatalf("rename records, Expected 1 renaming to %q, Actual %+v", "Fun Club", env.store.renames)
	}
	if group, _ := env.proc.Groups().Get("@@group1"); group.DisplayName != "Fun Club" {
		t.Fatalf("directory name, Expected %q, Actual %q", "Fun Club", group.DisplayName)
	}
	if len(env.store.messages) != 1 {
		t.Fatalf("message log, Expected 1 message, Actual %d", len(env.store.messages))
	}
}

func TestNotificationTextOnlyClassifiedForSystemMessages(t *testing.T) {
	env := newTestEnv(t)
	msg := newGroupMessage("1003")
	msg.Text = "Alice修改群名为“Fun Club”"
	msg.SystemNotification = msg.Text
	if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
		t.Fatal(err)
	}
	if len(env.store.renames) != 0 {
		t.Fatal("text message was classified as a rename")
	}
}

func TestMediaFileName(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 8, 7, 0, time.Local)
	actual := MediaFileName(filepath.Join("data", "upload", "img_1500000000.jpg"), ts, "1001", "Fun/Club")
	expected := filepath.Join("data", "upload", "20261018090807_1001_Fun_Club.jpg")
	if actual != expected {
		t.Fatalf("Expected %q, Actual %q", expected, actual)
	}
}

func TestMediaIsRenamedBeforePersisting(t *testing.T) {
	env := newTestEnv(t)
	msg := newGroupMessage("1004")
	msg.Type = types.MessageTypeImage
	msg.ImagePath = filepath.Join("upload", "img_1500000000.jpg")
	msg.VoicePath = filepath.Join("upload", "voice_1500000000.mp3")
	if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
		t.Fatal(err)
	}
	stored := env.store.messages[0]
	if expected := filepath.Join("upload", "20261018090807_1004_Old Name.jpg"); stored.ImagePath != expected {
		t.Fatalf("image path, Expected %q, Actual %q", expected, stored.ImagePath)
	}
	if expected := filepath.Join("upload", "20261018090807_1004_Old Name.mp3"); stored.VoicePath != expected {
		t.Fatalf("voice path, Expected %q, Actual %q", expected, stored.VoicePath)
	}
	if stored.VideoPath != "" || len(env.renamer.renames) != 2 {
		t.Fatalf("unexpected renames: %+v", env.renamer.renames)
	}
}

func TestSelfMentionCommands(t *testing.T) {
	for _, test := range []struct {
		text string
		kind string
		body string
	}{
		{text: "@BotName\u2005runtime", kind: "text", body: "已运行0天0小时0分0秒"},
		{text: "@Bot\u2005 test_sendimg ", kind: "image", body: filepath.Join("test", "emotion", "7.gif")},
		{text: "@BotName\u2005test_sendfile", kind: "file", body: filepath.Join("test", "Data", "upload", "shake.wav")},
		{text: "@BotName\u2005test_emot", kind: "emoticon"},
	} {
		env := newTestEnv(t)
		msg := newGroupMessage("2001")
		msg.Text = test.text
		if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
			t.Fatal(err)
		}
		if len(env.messenger.sent) != 1 {
			t.Fatalf("%q: Expected 1 message, Actual %+v", test.text, env.messenger.sent)
		}
		sent := env.messenger.sent[0]
		if sent.to != "@@group1" || sent.kind != test.kind || (test.body != "" && sent.body != test.body) {
			t.Errorf("%q: unexpected message %+v", test.text, sent)
		}
	}
}

func TestSelfMentionIgnored(t *testing.T) {
	for _, text := range []string{
		"@Someone\u2005runtime",
		"@BotName runtime",
		"BotName\u2005runtime",
		"@BotName\u2005unknown",
		"@\u2005runtime",
		"@BotName\u2005test_bot",
	} {
		env := newTestEnv(t)
		msg := newGroupMessage("2002")
		msg.Text = text
		if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
			t.Fatal(err)
		}
		if len(env.messenger.sent) != 0 {
			t.Errorf("%q: Expected no messages, Actual %+v", text, env.messenger.sent)
		}
	}
}

type echoBot struct{}

func (echoBot) Reply(_ context.Context, text string) (string, error) {
	return "bot: " + text, nil
}

func TestSelfMentionBot(t *testing.T) {
	env := newTestEnv(t)
	env.proc.bot = echoBot{}
	msg := newGroupMessage("2003")
	msg.Text = "@BotName\u2005test_bot"
	if err := env.proc.Dispatch(context.Background(), &events.GroupMessage{Message: msg}); err != nil {
		t.Fatal(err)
	}
	if texts := env.messenger.texts(); len(texts) != 1 || texts[0] != "bot: test_bot" {
		t.Fatalf("Expected bot reply, Actual %q", texts)
	}
}
