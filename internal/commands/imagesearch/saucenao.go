package imagesearch

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/saucenao"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const sauceIcon = "https://www.google.com/s2/favicons?domain=saucenao.com"

// SauceEmbeds builds one page per result
func SauceEmbeds(res *saucenao.Result) []*discordgo.MessageEmbed {
	pages := make([]*discordgo.MessageEmbed, 0, len(res.Results))
	for i, e := range res.Results {
		title := e.Source
		if title == "" {
			title = e.Title
		}
		if title == "" {
			title = e.Service()
		}
		lines := []string{fmt.Sprintf("Similitud: %s%%", e.Similarity)}
		for _, n := range []string{e.EngName, e.JpName} {
			if n != "" {
				lines = append(lines, n)
			}
		}
		if e.Part != "" {
			lines = append(lines, "Parte/episodio: "+e.Part)
		}
		if e.Year != "" {
			lines = append(lines, "Año: "+e.Year)
		}
		if e.EstTime != "" {
			lines = append(lines, "Tiempo estimado: "+e.EstTime)
		}
		if creator := e.CreatorString(); creator != "" {
			lines = append(lines, "Autor: "+creator)
		}
		embed := &discordgo.MessageEmbed{
			Title:       discord.Truncate(title, 256),
			Description: strings.Join(lines, "\n"),
			Color:       discord.ColorInfo,
			Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail},
			Footer: &discordgo.MessageEmbedFooter{
				Text:    fmt.Sprintf("Vía SauceNAO • Página %d/%d", i+1, len(res.Results)),
				IconURL: sauceIcon,
			},
		}
		if len(e.URLs) > 0 {
			embed.URL = e.URLs[0]
		}
		if !e.CreatedAt.IsZero() {
			embed.Timestamp = e.CreatedAt.Format(time.RFC3339)
		}
		pages = append(pages, embed)
	}
	return pages
}

func (c *Cog) sauceHandler(ctx *discord.CommandContext) error {
	if wait := c.throttle("saucenao", ctx.User().ID); wait > 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(cooldownMessage(wait)))
	}
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		image, err := c.resolveImage(ctx)
		if err != nil {
			ctx.Fail(err, "SauceNAO")
			return
		}
		rctx, cancel := timeoutContext()
		defer cancel()
		res, err := c.sauce.Search(rctx, image, int(c.numRes.Load()))
		if err != nil {
			ctx.Fail(err, "SauceNAO")
			return
		}
		c.mu.Lock()
		limits := res.Limits
		c.limits = &limits
		c.mu.Unlock()

		pages := SauceEmbeds(res)
		if len(pages) == 0 {
			ctx.EditReplyEmbed(nothingFound())
			return
		}
		c.pages.PaginateEdit(ctx, pages)
	}()
	return nil
}

func (c *Cog) maxResHandler(ctx *discord.CommandContext) error {
	n := ctx.GetIntOption("resultados")
	c.numRes.Store(n)
	return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed(fmt.Sprintf("SauceNAO devolverá hasta %d resultados.", n)))
}

// LimitsText describes the remaining SauceNAO searches
func LimitsText(l *saucenao.Limits) string {
	if l == nil {
		return "Todavía no se ha usado /saucenao search."
	}
	return fmt.Sprintf("Búsquedas restantes:\nCortas (30 segundos): %d/%d\nLargas (24 horas): %d/%d",
		l.ShortRemaining, l.Short, l.LongRemaining, l.Long)
}

func (c *Cog) sauceStatsHandler(ctx *discord.CommandContext) error {
	c.mu.Lock()
	text := LimitsText(c.limits)
	c.mu.Unlock()
	return ctx.ReplyEphemeral(text)
}
