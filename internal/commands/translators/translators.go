// Package translators has Yandex translation, Google TTS and the text toys.
package translators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/googletts"
	"github.com/PancyStudios/CogsBotGo/pkg/apis/yandex"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const requestTimeout = 20 * time.Second

// Cog holds the translator clients
type Cog struct {
	yandex *yandex.Client
	tts    *googletts.Client
}

// Register adds /ytranslate, /googlesay and /text
func Register(client *discord.ExtendedClient, yandexKey string) *Cog {
	c := &Cog{yandex: yandex.New(yandexKey), tts: googletts.New()}
	h := client.CommandHandler

	for _, cmd := range []*discord.Command{
		discord.NewCommand("ytranslate", "Traduce un texto con Yandex.Translate", "translators", c.translateHandler).
			WithOptions(
				stringOption("idioma", "Idioma destino (\"es\") o dirección (\"en-es\")", 2, 5),
				stringOption("texto", "Texto a traducir", 1, yandex.MaxTextLength),
			),
		discord.NewCommand("googlesay", "Lee un texto con la voz de Google Translate", "translators", c.sayHandler).
			WithOptions(
				stringOption("idioma", "Código del idioma, p. ej. \"es\"", 2, 10),
				stringOption("texto", "Texto (se corta a 200 caracteres)", 1, 1000),
			),
	} {
		h.RegisterCommand(cmd)
	}

	group := h.BuildCommandGroup("text", "Transformaciones de texto", textCommands()...)
	h.AddGlobalCommand(group)
	return c
}

func stringOption(name, description string, min, max int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
		MinLength:   &min,
		MaxLength:   max,
	}
}

// TranslationMessage formats a translation result
func TranslationMessage(t yandex.Translation) string {
	return fmt.Sprintf("**[%s] Traducción:** %s", strings.ToUpper(t.Lang), discord.Box(t.Text, ""))
}

func (c *Cog) translateHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := c.yandex.Translate(rctx, strings.ToLower(ctx.GetStringOption("idioma")), ctx.GetStringOption("texto"))
		if err != nil {
			ctx.Fail(err, "Translators")
			return
		}
		ctx.EditReply(TranslationMessage(t))
	}()
	return nil
}

func (c *Cog) sayHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		text := ctx.GetStringOption("texto")
		speech, err := c.tts.Speak(rctx, ctx.GetStringOption("idioma"), text)
		if err != nil {
			ctx.Fail(err, "Translators")
			return
		}
		ctx.EditReplyFile("", googletts.FileName(text), speech)
	}()
	return nil
}
