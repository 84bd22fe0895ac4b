package captcha

import (
	"strings"
	"testing"

	"emperror.dev/errors"
)

func TestNewCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := NewCode()
		if len(code) != CodeLength {
			t.Fatalf("len(NewCode()) = %d, want %d", len(code), CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Errorf("NewCode() = %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("NewCode() produced only %d distinct codes out of 50", len(seen))
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    bool
		wantErr error
	}{
		{"exact", "ABCD2345", true, nil},
		{"lowercase", "abcd2345", true, nil},
		{"spaces", "  AB CD 23 45 ", true, nil},
		{"wrong", "ABCD2346", false, nil},
		{"short", "ABCD", false, nil},
		{"pasted", Obfuscate("ABCD2345"), false, ErrCopiedCode},
		{"zero width space", "ABCD\u200b2345", false, ErrCopiedCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Verify("ABCD2345", tt.answer)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObfuscate(t *testing.T) {
	got := Obfuscate("AB2")
	if got != "A\u200dB\u200d2" {
		t.Errorf("Obfuscate() = %q", got)
	}
	if !IsCopied(got) {
		t.Error("IsCopied(Obfuscate()) = false, want true")
	}
}
