package leveler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

const renderTimeout = 20 * time.Second

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
	}
}

// target returns the user option, or the caller when it was omitted
func target(ctx *discord.CommandContext) (*discordgo.User, *discordgo.Member) {
	if u := ctx.GetUserOption("usuario"); u != nil {
		var member *discordgo.Member
		if data := ctx.Interaction.ApplicationCommandData(); data.Resolved != nil {
			member = data.Resolved.Members[u.ID]
		}
		return u, member
	}
	return ctx.User(), ctx.Member()
}

func (c *Cog) createProfileCommand() *discord.Command {
	return discord.NewCommand("profile", "Muestra la tarjeta de perfil", "leveler", c.profileHandler).
		WithOptions(userOption("Usuario del que ver el perfil")).
		RequiresDatabase().InGuild()
}

func (c *Cog) createRankCommand() *discord.Command {
	return discord.NewCommand("rank", "Muestra la tarjeta de rango", "leveler", c.rankHandler).
		WithOptions(userOption("Usuario del que ver el rango")).
		RequiresDatabase().InGuild()
}

func (c *Cog) createLvlInfoCommand() *discord.Command {
	return discord.NewCommand("lvlinfo", "Muestra la información de nivel en texto", "leveler", c.lvlInfoHandler).
		WithOptions(userOption("Usuario del que ver la información")).
		RequiresDatabase().InGuild()
}

func (c *Cog) createTopCommand() *discord.Command {
	return discord.NewCommand("top", "Tabla de clasificación", "leveler", c.topHandler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "global",
				Description: "Clasificación de todos los servidores",
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "rep",
				Description: "Ordenar por reputación",
			},
		).RequiresDatabase().InGuild()
}

func (c *Cog) createRepCommand() *discord.Command {
	return discord.NewCommand("rep", "Da un punto de reputación", "leveler", c.repHandler).
		WithOptions(userOption("Usuario que recibe el punto (vacío para ver tu espera)")).
		RequiresDatabase().InGuild()
}

// loadTarget defers the response and loads the target's document. ok is
// false when a reply was already sent.
func (c *Cog) loadTarget(ctx *discord.CommandContext) (*discordgo.User, *discordgo.Member, *models.LevelerUser, bool) {
	if err := ctx.Defer(); err != nil {
		logger.Error("Error difiriendo respuesta: "+err.Error(), "Leveler")
		return nil, nil, nil, false
	}
	user, member := target(ctx)
	if user.Bot {
		ctx.EditReplyEmbed(discord.ErrorEmbed("Los bots no tienen perfil."))
		return nil, nil, nil, false
	}
	guild, err := c.svc.Guild(ctx.Interaction.GuildID)
	if err != nil {
		ctx.Fail(err, "Leveler")
		return nil, nil, nil, false
	}
	if guild.Disabled {
		ctx.EditReplyEmbed(discord.ErrorEmbed("El sistema de niveles está desactivado en este servidor."))
		return nil, nil, nil, false
	}
	u, err := c.svc.User(user.ID, user.Username, ctx.Interaction.GuildID)
	if err != nil {
		ctx.Fail(err, "Leveler")
		return nil, nil, nil, false
	}
	return user, member, u, true
}

func (c *Cog) profileHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		user, member, u, ok := c.loadTarget(ctx)
		if !ok {
			return
		}
		guildID := ctx.Interaction.GuildID
		guild, _ := c.svc.Guild(guildID)
		global, _ := c.svc.Global()
		serverRank, _ := c.svc.ServerRank(user.ID, guildID)
		globalRank, _ := c.svc.GlobalRank(user.ID)
		name := discord.DisplayName(member, user)

		if guild.TextOnly {
			ctx.EditReplyEmbed(profileEmbed(u, name, user, guildID, serverRank, globalRank))
			return
		}

		rctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()
		card := lvl.ProfileCard{
			User: u, Name: name, GuildID: guildID,
			ServerRank: serverRank, GlobalRank: globalRank,
			BadgeType: global.BadgeType, GlobalLevels: global.GlobalLevels,
		}
		c.assets.ProfileAssets(rctx, &card, user.AvatarURL("256"))
		data, err := c.cards.Profile(card)
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		if err := ctx.EditReplyFile("", "profile.png", data); err != nil {
			logger.Error("Error enviando perfil: "+err.Error(), "Leveler")
		}
	}()
	return nil
}

func (c *Cog) rankHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		user, member, u, ok := c.loadTarget(ctx)
		if !ok {
			return
		}
		guildID := ctx.Interaction.GuildID
		guild, _ := c.svc.Guild(guildID)
		serverRank, _ := c.svc.ServerRank(user.ID, guildID)
		name := discord.DisplayName(member, user)

		if guild.TextOnly {
			stats := u.Servers[guildID]
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title: "Rango de " + name,
				Color: discord.ColorInfo,
				Description: fmt.Sprintf("Rango en el servidor: **#%d**\nNivel: **%d**\nExperiencia: **%d/%d**",
					serverRank, stats.Level, stats.CurrentExp, lvl.RequiredExp(stats.Level)),
				Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("128")},
			})
			return
		}

		rctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()
		imgs := c.assets.Load(rctx, u.RankBackground, user.AvatarURL("128"))
		data, err := c.cards.Rank(lvl.RankCard{
			User: u, Name: name, GuildID: guildID, ServerRank: serverRank,
			Background: imgs[0], Avatar: imgs[1],
		})
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		if err := ctx.EditReplyFile("", "rank.png", data); err != nil {
			logger.Error("Error enviando rango: "+err.Error(), "Leveler")
		}
	}()
	return nil
}

func (c *Cog) lvlInfoHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		user, member, u, ok := c.loadTarget(ctx)
		if !ok {
			return
		}
		guildID := ctx.Interaction.GuildID
		serverRank, _ := c.svc.ServerRank(user.ID, guildID)
		globalRank, _ := c.svc.GlobalRank(user.ID)
		ctx.EditReplyEmbed(profileEmbed(u, discord.DisplayName(member, user), user, guildID, serverRank, globalRank))
	}()
	return nil
}

// profileEmbed is the text rendition of a profile
func profileEmbed(u *models.LevelerUser, name string, user *discordgo.User, guildID string, serverRank, globalRank int) *discordgo.MessageEmbed {
	stats := u.Servers[guildID]
	badges := lvl.ProfileBadges(u, 0)
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.BadgeName)
	}
	badgeText := "Ninguna"
	if len(names) > 0 {
		badgeText = discord.Truncate(strings.Join(names, ", "), discord.MaxFieldLength)
	}
	title := u.Title
	if title == "" {
		title = "Sin título"
	}
	return &discordgo.MessageEmbed{
		Title:       "Perfil de " + name,
		Description: u.Info,
		Color:       discord.ColorInfo,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("128")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Título", Value: title, Inline: true},
			{Name: "Reputación", Value: humanize.Comma(int64(u.Rep)), Inline: true},
			{Name: "Créditos", Value: humanize.Comma(int64(u.Credits)), Inline: true},
			{Name: "Rango en el servidor", Value: fmt.Sprintf("#%d", serverRank), Inline: true},
			{Name: "Rango global", Value: fmt.Sprintf("#%d", globalRank), Inline: true},
			{Name: "Nivel", Value: fmt.Sprintf("%d", stats.Level), Inline: true},
			{Name: "Experiencia", Value: fmt.Sprintf("%d/%d", stats.CurrentExp, lvl.RequiredExp(stats.Level)), Inline: true},
			{Name: "Experiencia total", Value: humanize.Comma(int64(u.TotalExp)), Inline: true},
			{Name: "Insignias", Value: badgeText},
		},
	}
}

func (c *Cog) topHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		global := ctx.GetBoolOption("global")
		settings, err := c.svc.Global()
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		if global && !settings.AllowGlobalTop && !ctx.IsOwner() {
			ctx.EditReplyEmbed(discord.ErrorEmbed("La clasificación global está desactivada."))
			return
		}
		q := lvl.BoardQuery{
			GuildID: ctx.Interaction.GuildID,
			UserID:  ctx.User().ID,
			Global:  global,
			Rep:     ctx.GetBoolOption("rep"),
			BotName: ctx.Session.State.User.Username,
		}
		if g := ctx.Guild(); g != nil {
			q.GuildName = g.Name
		}
		board, err := c.svc.Leaderboard(q)
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		c.pages.PaginateEdit(ctx, boardPages(board))
	}()
	return nil
}

// boardPages renders a leaderboard as paginator embeds
func boardPages(b *lvl.Board) []*discordgo.MessageEmbed {
	texts := b.Pages(10)
	pages := make([]*discordgo.MessageEmbed, len(texts))
	for i, text := range texts {
		footer := fmt.Sprintf("Página %d de %d", i+1, len(texts))
		if self := b.Footer(); self != "" {
			footer = self + " • " + footer
		}
		pages[i] = &discordgo.MessageEmbed{
			Title:       b.Title,
			Description: text,
			Color:       discord.ColorInfo,
			Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		}
	}
	return pages
}

func (c *Cog) repHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		giver := ctx.User()
		receiver := ctx.GetUserOption("usuario")
		if receiver == nil {
			wait, err := c.svc.RepReady(giver.ID)
			if err != nil {
				ctx.Fail(err, "Leveler")
				return
			}
			if wait == 0 {
				ctx.EditReplyEmbed(discord.SuccessEmbed("Ya puedes dar un punto de reputación."))
				return
			}
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Description: fmt.Sprintf("⏳ Podrás dar reputación <t:%d:R>.", time.Now().Add(wait).Unix()),
				Color:       discord.ColorWarn,
			})
			return
		}

		u, err := c.svc.GiveRep(giver.ID, giver.Username, receiver.ID, receiver.Username, receiver.Bot)
		var cooldown *lvl.RepCooldownError
		switch {
		case errors.As(err, &cooldown):
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Description: fmt.Sprintf("⏳ Podrás volver a dar reputación <t:%d:R>.", time.Now().Add(cooldown.Remaining).Unix()),
				Color:       discord.ColorWarn,
			})
		case err != nil:
			ctx.Fail(err, "Leveler")
		default:
			ctx.EditReply(fmt.Sprintf("🎉 Has dado un punto de reputación a %s. Ahora tiene **%d**.", receiver.Mention(), u.Rep))
		}
	}()
	return nil
}
