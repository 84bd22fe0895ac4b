package datautils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

var activityTypes = map[discordgo.ActivityType]string{
	discordgo.ActivityTypeGame:      "Jugando a",
	discordgo.ActivityTypeStreaming: "Transmitiendo",
	discordgo.ActivityTypeListening: "Escuchando",
	discordgo.ActivityTypeWatching:  "Viendo",
	discordgo.ActivityTypeCustom:    "Estado personalizado",
	discordgo.ActivityTypeCompeting: "Compitiendo en",
}

func (c *Cog) createUInfoCommand() *discord.Command {
	return discord.NewCommand("uinfo", "Información de un miembro", "info", c.uinfoHandler).
		WithOptions(userOption("Miembro (por defecto tú)", false)).InGuild()
}

func (c *Cog) uinfoHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		user = ctx.User()
	}
	member, err := ctx.Session.State.Member(ctx.Interaction.GuildID, user.ID)
	if err != nil {
		if member, err = ctx.Session.GuildMember(ctx.Interaction.GuildID, user.ID); err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Ese usuario no está en el servidor."))
		}
	}
	return ctx.ReplyEmbed(MemberEmbed(ctx.Guild(), member, user))
}

// MemberEmbed describes a guild member
func MemberEmbed(guild *discordgo.Guild, m *discordgo.Member, u *discordgo.User) *discordgo.MessageEmbed {
	roles := RoleMentions(guild, m.Roles)
	embed := &discordgo.MessageEmbed{
		Title:     discord.DisplayName(m, u),
		Color:     discord.ColorInfo,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: m.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			field("Usuario", u.Username, true),
			field("ID", u.ID, true),
			field("Bot", discord.YesNo(u.Bot), true),
			field("Cuenta creada", created(u.ID), false),
			field("Se unió", stamp(m.JoinedAt), false),
			field(fmt.Sprintf("Roles (%d)", len(m.Roles)), strings.Join(roles, " "), false),
		},
	}
	if m.PremiumSince != nil {
		embed.Fields = append(embed.Fields, field("Mejorando el servidor desde", stamp(*m.PremiumSince), false))
	}
	if m.Nick != "" {
		embed.Fields = append(embed.Fields, field("Apodo", m.Nick, true))
	}
	return embed
}

// RoleMentions lists the mentions of roleIDs, highest first
func RoleMentions(guild *discordgo.Guild, roleIDs []string) []string {
	pos := map[string]int{}
	if guild != nil {
		pos = discord.RolePositions(guild)
	}
	ids := append([]string(nil), roleIDs...)
	sort.SliceStable(ids, func(i, j int) bool { return pos[ids[i]] > pos[ids[j]] })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "<@&" + id + ">"
	}
	return out
}

func (c *Cog) createActivitiesCommand() *discord.Command {
	return discord.NewCommand("activities", "Actividades de un miembro", "info", func(ctx *discord.CommandContext) error {
		user := ctx.GetUserOption("usuario")
		if user == nil {
			user = ctx.User()
		}
		presence, err := ctx.Session.State.Presence(ctx.Interaction.GuildID, user.ID)
		if err != nil || len(presence.Activities) == 0 {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(user.Username + " no tiene actividades."))
		}
		lines := make([]string, len(presence.Activities))
		for i, a := range presence.Activities {
			lines[i] = ActivityLine(a)
		}
		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title:       "Actividades de " + user.Username,
			Description: strings.Join(lines, "\n"),
			Color:       discord.ColorInfo,
		})
	}).WithOptions(userOption("Miembro (por defecto tú)", false)).InGuild()
}

// ActivityLine renders one presence activity
func ActivityLine(a *discordgo.Activity) string {
	kind := activityTypes[a.Type]
	if a.Type == discordgo.ActivityTypeCustom {
		text := strings.TrimSpace(a.Emoji.Name + " " + a.State)
		return fmt.Sprintf("**%s**: %s", kind, text)
	}
	line := fmt.Sprintf("**%s** %s", kind, a.Name)
	var extra []string
	for _, s := range []string{a.Details, a.State} {
		if s != "" {
			extra = append(extra, s)
		}
	}
	if len(extra) > 0 {
		line += " (" + strings.Join(extra, " · ") + ")"
	}
	if a.URL != "" {
		line += " " + a.URL
	}
	return line
}

func (c *Cog) createGetUserInfoCommand() *discord.Command {
	return discord.NewCommand("getuserinfo", "Información de cualquier usuario por ID", "info", func(ctx *discord.CommandContext) error {
		user, err := ctx.Session.User(ctx.GetStringOption("id"))
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("No encontré ningún usuario con ese ID."))
		}
		embed := &discordgo.MessageEmbed{
			Title:     user.Username,
			Color:     discord.ColorInfo,
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
			Fields: []*discordgo.MessageEmbedField{
				field("ID", user.ID, true),
				field("Bot", discord.YesNo(user.Bot), true),
				field("Nombre global", user.GlobalName, true),
				field("Cuenta creada", created(user.ID), false),
			},
		}
		if banner := user.BannerURL("512"); banner != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: banner}
		}
		return ctx.ReplyEmbed(embed)
	}).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "id",
		Description: "ID del usuario",
		Required:    true,
	})
}
