package imagesearch

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/tracemoe"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const traceIcon = "https://trace.moe/favicon128.png"

// TraceEmbeds builds one page per match
func TraceEmbeds(docs []tracemoe.Doc) []*discordgo.MessageEmbed {
	pages := make([]*discordgo.MessageEmbed, len(docs))
	for i, d := range docs {
		lines := []string{fmt.Sprintf("Similitud: %.2f%%", d.Similarity*100)}
		add := func(prefix, value string) {
			if value != "" {
				lines = append(lines, prefix+value)
			}
		}
		add("🇯🇵 Título original: ", d.TitleNative)
		add("🇯🇵 Romaji: ", d.TitleRomaji)
		add("🇨🇳 Título chino: ", d.TitleChinese)
		add("🇺🇸 Título inglés: ", d.TitleEnglish)
		add("Momento: ", d.TimeString())
		add("Episodio: ", d.EpisodeString())
		add("También conocido como: ", strings.Join(d.Synonyms, ", "))
		add("AniList: ", d.AnilistURL())
		add("MyAnimeList: ", d.MalURL())

		url := d.MalURL()
		if url == "" {
			url = d.AnilistURL()
		}
		pages[i] = &discordgo.MessageEmbed{
			Title:       discord.Truncate(d.Title, 256),
			URL:         url,
			Description: strings.Join(lines, "\n"),
			Color:       discord.ColorInfo,
			Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: d.Thumbnail()},
			Footer: &discordgo.MessageEmbedFooter{
				Text:    fmt.Sprintf("Vía trace.moe • Página %d/%d", i+1, len(docs)),
				IconURL: traceIcon,
			},
		}
	}
	return pages
}

// channelNSFW reports whether adult results may be shown in the channel
func channelNSFW(ctx *discord.CommandContext) bool {
	if ch := ctx.Channel(); ch != nil {
		return ch.NSFW
	}
	if ch, err := ctx.Session.Channel(ctx.Interaction.ChannelID); err == nil {
		return ch.NSFW
	}
	return false
}

func (c *Cog) traceHandler(ctx *discord.CommandContext) error {
	if wait := c.throttle("tracemoe", ctx.User().ID); wait > 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(cooldownMessage(wait)))
	}
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		image, err := c.resolveImage(ctx)
		if err != nil {
			ctx.Fail(err, "TraceMoe")
			return
		}
		rctx, cancel := timeoutContext()
		defer cancel()
		res, err := c.trace.SearchURL(rctx, image)
		if err != nil {
			ctx.Fail(err, "TraceMoe")
			return
		}
		pages := TraceEmbeds(res.Filter(channelNSFW(ctx)))
		if len(pages) == 0 {
			ctx.EditReplyEmbed(nothingFound())
			return
		}
		c.pages.PaginateEdit(ctx, pages)
	}()
	return nil
}

func (c *Cog) traceStatsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.DeferEphemeral(); err != nil {
			return
		}
		rctx, cancel := timeoutContext()
		defer cancel()
		me, err := c.trace.Me(rctx)
		if err != nil {
			ctx.Fail(err, "TraceMoe")
			return
		}
		ctx.EditReply(fmt.Sprintf(
			"Peticiones restantes (límite): %d/%d\nPeticiones restantes (cuota): %d/%d\n"+
				"El límite se renueva en %d/%d s\nLa cuota se renueva en %d/%d s",
			me.Limit, me.UserLimit, me.Quota, me.UserQuota,
			me.LimitTTL, me.UserLimitTTL, me.QuotaTTL, me.UserQuotaTTL))
	}()
	return nil
}
