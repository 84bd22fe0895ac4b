package translators

import (
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/yandex"
)

func TestTranslationMessage(t *testing.T) {
	got := TranslationMessage(yandex.Translation{Lang: "en-es", Text: "hola"})
	want := "**[EN-ES] Traducción:** ```\nhola\n```"
	if got != want {
		t.Errorf("TranslationMessage() = %q, want %q", got, want)
	}
}

func TestPlain(t *testing.T) {
	out, err := plain(func(s string) string { return s + "!" })("hey")
	if err != nil || out != "hey!" {
		t.Errorf("plain()() = %q, %v, want %q, nil", out, err, "hey!")
	}
}
