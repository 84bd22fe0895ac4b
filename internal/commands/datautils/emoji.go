package datautils

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/imagefinder"
	"github.com/bwmarrin/discordgo"
	"github.com/forPelevin/gomoji"
)

// TwemojiBase serves the 72x72 twemoji PNGs
const TwemojiBase = "https://cdn.jsdelivr.net/gh/twitter/twemoji@latest/assets/72x72"

// TwemojiURL returns the image of a unicode emoji. The variation selector
// fe0f is dropped unless the emoji is a zero width joiner sequence.
func TwemojiURL(emoji string) string {
	zwj := strings.ContainsRune(emoji, 0x200d)
	var parts []string
	for _, r := range emoji {
		if r == 0xfe0f && !zwj {
			continue
		}
		parts = append(parts, fmt.Sprintf("%x", r))
	}
	return TwemojiBase + "/" + strings.Join(parts, "-") + ".png"
}

func (c *Cog) createEInfoCommand() *discord.Command {
	return discord.NewCommand("einfo", "Información de un emoji", "info", func(ctx *discord.CommandContext) error {
		arg := strings.TrimSpace(ctx.GetStringOption("emoji"))
		embed, ok := EmojiEmbed(arg)
		if !ok {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Eso no es un emoji."))
		}
		return ctx.ReplyEmbed(embed)
	}).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "emoji",
		Description: "Emoji personalizado o unicode",
		Required:    true,
	})
}

// EmojiEmbed describes a custom or unicode emoji
func EmojiEmbed(arg string) (*discordgo.MessageEmbed, bool) {
	if id, name, animated, ok := imagefinder.CustomEmoji(arg); ok {
		url := imagefinder.EmojiURL(id, animated)
		return &discordgo.MessageEmbed{
			Title: name,
			URL:   url,
			Color: discord.ColorInfo,
			Image: &discordgo.MessageEmbedImage{URL: url},
			Fields: []*discordgo.MessageEmbedField{
				field("ID", id, true),
				field("Animado", discord.YesNo(animated), true),
				field("Creado", created(id), false),
			},
		}, true
	}
	info, err := gomoji.GetInfo(arg)
	if err != nil {
		return nil, false
	}
	codepoints := make([]string, 0, len(arg))
	for _, r := range arg {
		codepoints = append(codepoints, fmt.Sprintf("U+%04X", r))
	}
	url := TwemojiURL(arg)
	return &discordgo.MessageEmbed{
		Title: info.Slug,
		URL:   url,
		Color: discord.ColorInfo,
		Image: &discordgo.MessageEmbedImage{URL: url},
		Fields: []*discordgo.MessageEmbedField{
			field("Nombre unicode", info.UnicodeName, false),
			field("Puntos de código", strings.Join(codepoints, " "), true),
			field("Grupo", info.Group+" / "+info.SubGroup, true),
		},
	}, true
}
