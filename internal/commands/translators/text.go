package translators

import (
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/textfx"
	"github.com/bwmarrin/discordgo"
)

func textOption() *discordgo.ApplicationCommandOption {
	return stringOption("texto", "Texto", 1, 2000)
}

// transform builds a subcommand that replies with fn applied to the text.
// boxed results go in a code block.
func transform(name, description string, boxed bool, fn func(string) (string, error)) *discord.Command {
	return discord.NewCommand(name, description, "translators", func(ctx *discord.CommandContext) error {
		out, err := fn(ctx.GetStringOption("texto"))
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Translators")))
		}
		if boxed {
			return ctx.Reply(discord.Box(out, ""))
		}
		return ctx.Reply(discord.Truncate(out, discord.MaxMessageLength))
	}).WithOptions(textOption())
}

func plain(fn func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return fn(s), nil }
}

func textCommands() []*discord.Command {
	return []*discord.Command{
		transform("eciho", "Texto en eciho", false, plain(textfx.Eciho)),
		transform("flip", "Pone el texto del revés", false, plain(textfx.FlipText)),
		transform("fullwidth", "Texto de ancho completo", false, plain(textfx.Fullwidth)),
		transform("leet", "Texto en 1337", true, plain(func(s string) string {
			return textfx.Leet(s, textfx.RandomChooser())
		})),
		transform("cyrleet", "Texto en 1337 con letras cirílicas", true, plain(func(s string) string {
			return textfx.CyrillicLeet(s, textfx.RandomChooser())
		})),
		transform("emojify", "Convierte el texto en emojis", false, plain(textfx.Emojify)),
		transform("urlencode", "Codifica el texto para una URL", true, plain(textfx.URLEncode)),
		transform("b64encode", "Codifica el texto en base64", true, plain(textfx.Base64Encode)),
		transform("b64decode", "Decodifica un texto en base64", true, textfx.Base64Decode),
		discord.NewCommand("recode", "Arregla un texto escrito con la codificación equivocada", "translators", recodeHandler).
			WithOptions(
				textOption(),
				stringOption("de", "Codificación en la que se ve, p. ej. windows-1251", 2, 40),
				stringOption("a", "Codificación real, p. ej. utf-8", 2, 40),
			),
	}
}

func recodeHandler(ctx *discord.CommandContext) error {
	out, err := textfx.Recode(ctx.GetStringOption("texto"), ctx.GetStringOption("de"), ctx.GetStringOption("a"))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Translators")))
	}
	return ctx.Reply(discord.Box(out, ""))
}
