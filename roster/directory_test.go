package roster

import (
	"testing"

	"go.mau.fi/ssbot/types"
)

func testDirectory() *Directory {
	return NewDirectory(
		types.GroupRecord{GroupID: "@@a", DisplayName: "Alpha", OwnerID: "1"},
		types.GroupRecord{GroupID: "@@b", DisplayName: "Beta", OwnerID: "2"},
		types.GroupRecord{GroupID: "@@c", DisplayName: "Alpha", OwnerID: "3"},
	)
}

func TestRenameFirstMatchOnly(t *testing.T) {
	dir := testDirectory()
	dir.Add(types.GroupRecord{GroupID: "@@b", DisplayName: "Beta", OwnerID: "2"})
	if !dir.Rename("@@b", "Fun Club") {
		t.Fatal("Rename(@@b) returned false")
	}
	groups := dir.Snapshot()
	if actual := groups[1].DisplayName; actual != "Fun Club" {
		t.Fatalf("groups[1].DisplayName, Expected %q, Actual %q", "Fun Club", actual)
	}
	if actual := len(groups); actual != 3 {
		t.Fatalf("len(groups), Expected %d, Actual %d", 3, actual)
	}
	if dir.Rename("@@missing", "x") {
		t.Fatal("Rename of unknown group returned true")
	}
}

func TestResolveByName(t *testing.T) {
	dir := testDirectory()
	id, ok := dir.ResolveByName("Alpha")
	if !ok || id != "@@c" {
		t.Fatalf("ResolveByName(Alpha), Expected @@c, Actual %q (%v)", id, ok)
	}
	if _, ok = dir.ResolveByName("Gamma"); ok {
		t.Fatal("ResolveByName(Gamma) should fail")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	dir := testDirectory()
	snap := dir.Snapshot()
	snap[0].DisplayName = "changed"
	if group, _ := dir.Get("@@a"); group.DisplayName != "Alpha" {
		t.Fatalf("directory was modified through snapshot: %+v", group)
	}
	dir.Add(types.GroupRecord{GroupID: "@@d", DisplayName: "Delta"})
	if actual := dir.Len(); actual != 4 {
		t.Fatalf("Len(), Expected %d, Actual %d", 4, actual)
	}
}
