package datautils

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

var verificationLevels = map[discordgo.VerificationLevel]string{
	discordgo.VerificationLevelNone:     "Ninguno",
	discordgo.VerificationLevelLow:      "Bajo",
	discordgo.VerificationLevelMedium:   "Medio",
	discordgo.VerificationLevelHigh:     "Alto",
	discordgo.VerificationLevelVeryHigh: "Muy alto",
}

// ChannelCounts tallies the channels of a guild by kind
type ChannelCounts struct {
	Text, Voice, Category, Stage, Forum, Other int
}

// CountChannels classifies channels
func CountChannels(channels []*discordgo.Channel) ChannelCounts {
	var c ChannelCounts
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			c.Text++
		case discordgo.ChannelTypeGuildVoice:
			c.Voice++
		case discordgo.ChannelTypeGuildCategory:
			c.Category++
		case discordgo.ChannelTypeGuildStageVoice:
			c.Stage++
		case discordgo.ChannelTypeGuildForum:
			c.Forum++
		default:
			c.Other++
		}
	}
	return c
}

func (c *Cog) createSInfoCommand() *discord.Command {
	return discord.NewCommand("sinfo", "Información del servidor", "info", func(ctx *discord.CommandContext) error {
		guild := ctx.Guild()
		if guild == nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("No tengo datos de este servidor."))
		}
		return ctx.ReplyEmbed(GuildEmbed(guild))
	}).InGuild()
}

// GuildEmbed describes a guild from the state cache
func GuildEmbed(g *discordgo.Guild) *discordgo.MessageEmbed {
	counts := CountChannels(g.Channels)
	humans, bots := 0, 0
	for _, m := range g.Members {
		if m.User != nil && m.User.Bot {
			bots++
		} else {
			humans++
		}
	}
	embed := &discordgo.MessageEmbed{
		Title: g.Name,
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("ID", g.ID, true),
			field("Dueño", "<@"+g.OwnerID+">", true),
			field("Creado", created(g.ID), false),
			field("Miembros", fmt.Sprintf("%s en total\n%d humanos, %d bots en caché",
				humanize.Comma(int64(g.MemberCount)), humans, bots), true),
			field("Canales", fmt.Sprintf("💬 %d · 🔊 %d · 📁 %d · 🎙️ %d · 🗂️ %d",
				counts.Text, counts.Voice, counts.Category, counts.Stage, counts.Forum), true),
			field("Roles", strconv.Itoa(len(g.Roles)), true),
			field("Emojis", strconv.Itoa(len(g.Emojis)), true),
			field("Verificación", verificationLevels[g.VerificationLevel], true),
			field("Mejoras", fmt.Sprintf("Nivel %d (%d mejoras)", g.PremiumTier, g.PremiumSubscriptionCount), true),
		},
	}
	if icon := g.IconURL("256"); icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}
	if banner := g.BannerURL("1024"); banner != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: banner}
	}
	return embed
}

func (c *Cog) createBansCommand() *discord.Command {
	return c.listCommand("bans", "Usuarios baneados", discordgo.PermissionBanMembers,
		func(ctx *discord.CommandContext, g *discordgo.Guild) (string, []string, error) {
			var (
				lines []string
				after string
			)
			for {
				bans, err := ctx.Session.GuildBans(g.ID, 1000, "", after)
				if err != nil {
					return "", nil, err
				}
				for _, b := range bans {
					line := fmt.Sprintf("**%s** (%s)", b.User.Username, b.User.ID)
					if b.Reason != "" {
						line += ": " + b.Reason
					}
					lines = append(lines, line)
				}
				if len(bans) < 1000 {
					break
				}
				after = bans[len(bans)-1].User.ID
			}
			return fmt.Sprintf("Baneos de %s (%d)", g.Name, len(lines)), lines, nil
		})
}

func (c *Cog) createInvitesCommand() *discord.Command {
	return c.listCommand("invites", "Invitaciones del servidor", discordgo.PermissionManageGuild,
		func(ctx *discord.CommandContext, g *discordgo.Guild) (string, []string, error) {
			invites, err := ctx.Session.GuildInvites(g.ID)
			if err != nil {
				return "", nil, err
			}
			lines := make([]string, len(invites))
			for i, inv := range invites {
				inviter := "desconocido"
				if inv.Inviter != nil {
					inviter = inv.Inviter.Username
				}
				expires := "nunca caduca"
				if inv.MaxAge > 0 {
					expires = fmt.Sprintf("caduca <t:%d:R>", inv.CreatedAt.Add(time.Duration(inv.MaxAge)*time.Second).Unix())
				}
				lines[i] = fmt.Sprintf("`%s` de %s, %d usos, %s", inv.Code, inviter, inv.Uses, expires)
			}
			return "Invitaciones de " + g.Name, lines, nil
		})
}

func (c *Cog) createChannelsCommand() *discord.Command {
	return c.listCommand("channels", "Canales del servidor", 0,
		func(ctx *discord.CommandContext, g *discordgo.Guild) (string, []string, error) {
			return "Canales de " + g.Name, ChannelTree(g.Channels), nil
		})
}

// ChannelTree lists channels grouped under their category, in display order
func ChannelTree(channels []*discordgo.Channel) []string {
	byParent := map[string][]*discordgo.Channel{}
	var categories []*discordgo.Channel
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			categories = append(categories, ch)
			continue
		}
		byParent[ch.ParentID] = append(byParent[ch.ParentID], ch)
	}
	byPos := func(list []*discordgo.Channel) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}
	byPos(categories)
	var lines []string
	add := func(list []*discordgo.Channel, indent string) {
		byPos(list)
		for _, ch := range list {
			lines = append(lines, indent+channelIcon(ch.Type)+" "+ch.Name)
		}
	}
	add(byParent[""], "")
	for _, cat := range categories {
		lines = append(lines, "📁 **"+cat.Name+"**")
		add(byParent[cat.ID], "    ")
	}
	return lines
}

func channelIcon(t discordgo.ChannelType) string {
	switch t {
	case discordgo.ChannelTypeGuildVoice:
		return "🔊"
	case discordgo.ChannelTypeGuildStageVoice:
		return "🎙️"
	case discordgo.ChannelTypeGuildNews:
		return "📢"
	case discordgo.ChannelTypeGuildForum:
		return "🗂️"
	default:
		return "#"
	}
}

func (c *Cog) createRolesCommand() *discord.Command {
	return c.listCommand("roles", "Roles del servidor", 0,
		func(ctx *discord.CommandContext, g *discordgo.Guild) (string, []string, error) {
			roles := append([]*discordgo.Role(nil), g.Roles...)
			sort.SliceStable(roles, func(i, j int) bool { return roles[i].Position > roles[j].Position })
			lines := make([]string, 0, len(roles))
			for _, r := range roles {
				if r.ID == g.ID {
					continue
				}
				lines = append(lines, fmt.Sprintf("%s `%s` #%06x", r.Mention(), r.ID, r.Color))
			}
			return fmt.Sprintf("Roles de %s (%d)", g.Name, len(lines)), lines, nil
		})
}

func (c *Cog) createEmojisCommand() *discord.Command {
	return c.listCommand("emojis", "Emojis del servidor", 0,
		func(ctx *discord.CommandContext, g *discordgo.Guild) (string, []string, error) {
			lines := make([]string, len(g.Emojis))
			for i, e := range g.Emojis {
				lines[i] = fmt.Sprintf("%s `:%s:` `%s`", e.MessageFormat(), e.Name, e.ID)
			}
			return fmt.Sprintf("Emojis de %s (%d)", g.Name, len(lines)), lines, nil
		})
}

// Widget is the public widget of a guild
type Widget struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	InstantInvite string `json:"instant_invite"`
	PresenceCount int    `json:"presence_count"`
	Channels      []struct {
		Name string `json:"name"`
	} `json:"channels"`
	Members []struct {
		Username string `json:"username"`
	} `json:"members"`
}

func (c *Cog) createFetchWidgetCommand() *discord.Command {
	return discord.NewCommand("fetchwidget", "Información de un servidor por su widget", "info", func(ctx *discord.CommandContext) error {
		go func() {
			defer errors.RecoverMiddleware()()

			if err := ctx.Defer(); err != nil {
				return
			}
			id := ctx.GetStringOption("id")
			rctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			var w Widget
			if err := c.api.GetJSON(rctx, "/guilds/"+id+"/widget.json", nil, &w); err != nil {
				ctx.EditReplyEmbed(discord.ErrorEmbed("Ese servidor no existe o no tiene el widget activado."))
				return
			}
			embed := &discordgo.MessageEmbed{
				Title: w.Name,
				URL:   c.api.URL("/guilds/"+id+"/widget.json", nil),
				Color: discord.ColorInfo,
				Fields: []*discordgo.MessageEmbedField{
					field("ID", w.ID, true),
					field("Creado", created(w.ID), false),
					field("Conectados", humanize.Comma(int64(w.PresenceCount)), true),
					field("Canales públicos", strconv.Itoa(len(w.Channels)), true),
				},
			}
			if w.InstantInvite != "" {
				embed.Fields = append(embed.Fields, field("Invitación del widget", w.InstantInvite, false))
			}
			ctx.EditReplyEmbed(embed)
		}()
		return nil
	}).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "id",
		Description: "ID del servidor",
		Required:    true,
	})
}
