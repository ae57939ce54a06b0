package types

import (
	"testing"
)

func TestParseRemark(t *testing.T) {
	for _, test := range []struct {
		remark string
		want   Binding
	}{
		{remark: "", want: Unbound},
		{remark: "SS", want: Unbound},
		{remark: "SS 2018", want: Bound("2018")},
		{remark: "  SS   2018  extra", want: Bound("2018")},
		{remark: "ss 2018", want: Unbound},
		{remark: "Friend 2018", want: Unbound},
		{remark: "SS2018", want: Unbound},
	} {
		if got := ParseRemark(test.remark); got != test.want {
			t.Errorf("ParseRemark(%q) = %s, want %s", test.remark, got, test.want)
		}
	}
}

func TestBindingRemarkRoundTrip(t *testing.T) {
	b := Bound("20001")
	if actual := b.Remark(); actual != "SS 20001" {
		t.Fatalf("Remark(), Expected %q, Actual %q", "SS 20001", actual)
	}
	if actual := ParseRemark(b.Remark()); actual != b {
		t.Fatalf("ParseRemark(Remark()), Expected %s, Actual %s", b, actual)
	}
	if actual := Unbound.Remark(); actual != "" {
		t.Fatalf("Unbound.Remark(), Expected empty string, Actual %q", actual)
	}
	if Unbound.IsBound() || !b.IsBound() {
		t.Fatalf("IsBound mismatch: unbound=%v bound=%v", Unbound.IsBound(), b.IsBound())
	}
}

func TestSelfInfoIsSelfName(t *testing.T) {
	self := SelfInfo{NickName: "BotName", RemarkName: ""}
	if !self.IsSelfName("BotName") {
		t.Error("nickname should match")
	}
	if self.IsSelfName("") {
		t.Error("empty name must not match an empty remark name")
	}
	if self.IsSelfName("Other") {
		t.Error("unrelated name should not match")
	}
}
