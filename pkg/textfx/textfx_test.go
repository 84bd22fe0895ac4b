package textfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func first(int) int { return 0 }

func TestTransforms(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"eciho latin", Eciho, "Hello", "Gelo"},
		{"eciho cyrillic", Eciho, "привет", "приоет"},
		{"flip", FlipText, "abc", "ɔqɐ"},
		{"flip punctuation", FlipText, "Hi!", "¡ıɥ"},
		{"flip multi", FlipText, "ю", "oı"},
		{"fullwidth", Fullwidth, "Ab1!", "Ａｂ１！"},
		{"leet", func(s string) string { return Leet(s, first) }, "Leet", "|_337"},
		{"cyrillic leet", func(s string) string { return CyrillicLeet(s, first) }, "привет", "IIPuBET"},
		{"emojify", Emojify, "ab", "\u200b🇦\u200b🇧\u200b"},
		{"emojify digits", Emojify, "A1", "\u200b🇦\u200b:one:\u200b"},
		{"base64", Base64Encode, "hola", "aG9sYQ=="},
		{"urlencode", URLEncode, "abc def/ü", "abc%20def/%C3%BC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
			}
		})
	}
}

func TestLeetUsesChooser(t *testing.T) {
	last := func(n int) int { return n - 1 }
	assert.Equal(t, "()", Leet("o", last))
	assert.Equal(t, "9I", CyrillicLeet("я", last))
}

func TestBase64Decode(t *testing.T) {
	got, err := Base64Decode("aG9sYQ==")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	got, err = Base64Decode("aG9sYQ")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	_, err = Base64Decode("***")
	assert.Error(t, err)
}

func TestRecode(t *testing.T) {
	got, err := Recode("РїСЂРёРІРµС‚", "windows-1251", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "привет", got)

	_, err = Recode("x", "klingon", "utf-8")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}
