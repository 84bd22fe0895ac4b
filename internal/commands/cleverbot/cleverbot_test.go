package cleverbot

import "testing"

func TestStripMention(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"<@42> hola", "hola", true},
		{"<@!42>   ¿qué tal?", "¿qué tal?", true},
		{"hola <@42>", "hola <@42>", false},
		{"<@43> hola", "<@43> hola", false},
	}
	for _, tt := range tests {
		got, ok := StripMention(tt.in, "42")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("StripMention(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEnabledWithoutDatabase(t *testing.T) {
	if Enabled("g") {
		t.Errorf("Enabled() = true, want false")
	}
}
