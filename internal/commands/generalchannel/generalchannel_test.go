package generalchannel

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTopic(t *testing.T) {
	tests := []struct {
		current, text, want string
	}{
		{"viejo", "nuevo", "nuevo"},
		{"viejo", "+ más", "viejo\nmás"},
		{"", "+x", "\nx"},
		{"viejo", "", ""},
	}
	for _, tt := range tests {
		if got := Topic(tt.current, tt.text); got != tt.want {
			t.Errorf("Topic(%q, %q) = %q, want %q", tt.current, tt.text, got, tt.want)
		}
	}
}

func TestTopicKeepsTail(t *testing.T) {
	current := strings.Repeat("a", 1000)
	got := Topic(current, "+"+strings.Repeat("b", 100))
	if n := utf8.RuneCountInString(got); n != maxTopicLength {
		t.Errorf("len(Topic()) = %d, want %d", n, maxTopicLength)
	}
	if !strings.HasSuffix(got, strings.Repeat("b", 100)) {
		t.Errorf("Topic() lost the appended text")
	}
}

func TestName(t *testing.T) {
	if got := Name(strings.Repeat("ñ", 150)); utf8.RuneCountInString(got) != maxNameLength {
		t.Errorf("Name() kept %d runes, want %d", utf8.RuneCountInString(got), maxNameLength)
	}
	if got := Name("general"); got != "general" {
		t.Errorf("Name() = %q, want %q", got, "general")
	}
}
