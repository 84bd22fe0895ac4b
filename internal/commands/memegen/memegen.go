// Package memegen builds memes with memegen.link.
package memegen

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/memegen"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const requestTimeout = 15 * time.Second

// Cog holds the memegen client
type Cog struct {
	pages  *discord.Interactive
	client *memegen.Client
}

// Register adds the /meme group
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{pages: client.Interactive, client: memegen.New()}
	h := client.CommandHandler
	h.AddGlobalCommand(h.BuildCommandGroup("meme", "Generador de memes",
		discord.NewCommand("embed", "Crea un meme y lo muestra", "memegen", c.memeHandler(true)).
			WithOptions(c.memeOptions()...).WithAutoComplete(c.suggestTemplates),
		discord.NewCommand("link", "Crea un meme y envía el enlace", "memegen", c.memeHandler(false)).
			WithOptions(c.memeOptions()...).WithAutoComplete(c.suggestTemplates),
		discord.NewCommand("fonts", "Fuentes disponibles", "memegen", c.fontsHandler),
	))
	return c
}

func (c *Cog) memeOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "plantilla",
			Description:  "Plantilla o enlace a una imagen",
			Required:     true,
			Autocomplete: true,
		},
		{Type: discordgo.ApplicationCommandOptionString, Name: "arriba", Description: "Texto superior"},
		{Type: discordgo.ApplicationCommandOptionString, Name: "abajo", Description: "Texto inferior"},
		{Type: discordgo.ApplicationCommandOptionString, Name: "fuente", Description: "Fuente (impact por defecto)"},
	}
}

func (c *Cog) suggestTemplates(ctx *discord.CommandContext) {
	rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	templates, err := c.client.Templates(rctx)
	if err != nil {
		logger.Debug("Sin plantillas para autocompletar: "+err.Error(), "Memegen")
	}
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	ctx.Suggest(ids)
}

// FontLines lists the fonts with their aliases
func FontLines(fonts []memegen.Font) []string {
	lines := make([]string, len(fonts))
	for i, f := range fonts {
		lines[i] = "`" + f.ID + "`"
		if f.Alias != "" && f.Alias != f.ID {
			lines[i] += fmt.Sprintf(" (alias `%s`)", f.Alias)
		}
	}
	return lines
}

func (c *Cog) memeHandler(asEmbed bool) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		go func() {
			defer errors.RecoverMiddleware()()

			if err := ctx.Defer(); err != nil {
				return
			}
			rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			link, err := c.client.Meme(rctx,
				ctx.GetStringOption("plantilla"),
				ctx.GetStringOption("arriba"),
				ctx.GetStringOption("abajo"),
				ctx.GetStringOption("fuente"),
			)
			if err != nil {
				ctx.Fail(err, "Memegen")
				return
			}
			if !asEmbed {
				ctx.EditReply(link)
				return
			}
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Color:  discord.ColorInfo,
				Image:  &discordgo.MessageEmbedImage{URL: link},
				Footer: &discordgo.MessageEmbedFooter{Text: "Hecho con memegen.link"},
			})
		}()
		return nil
	}
}

func (c *Cog) fontsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		fonts, err := c.client.Fonts(rctx)
		if err != nil {
			ctx.Fail(err, "Memegen")
			return
		}
		c.pages.PaginateEdit(ctx, discord.TextPages("Fuentes de memegen.link", discord.ColorInfo, FontLines(fonts)))
	}()
	return nil
}
