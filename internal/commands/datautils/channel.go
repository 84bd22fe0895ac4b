package datautils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// permissionNames in the order Discord shows them
var permissionNames = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrador"},
	{discordgo.PermissionViewChannel, "Ver canal"},
	{discordgo.PermissionManageChannels, "Gestionar canales"},
	{discordgo.PermissionManageRoles, "Gestionar roles"},
	{discordgo.PermissionManageEmojis, "Gestionar expresiones"},
	{discordgo.PermissionViewAuditLogs, "Ver registro de auditoría"},
	{discordgo.PermissionManageWebhooks, "Gestionar webhooks"},
	{discordgo.PermissionManageGuild, "Gestionar servidor"},
	{discordgo.PermissionCreateInstantInvite, "Crear invitación"},
	{discordgo.PermissionChangeNickname, "Cambiar apodo"},
	{discordgo.PermissionManageNicknames, "Gestionar apodos"},
	{discordgo.PermissionKickMembers, "Expulsar miembros"},
	{discordgo.PermissionBanMembers, "Banear miembros"},
	{discordgo.PermissionModerateMembers, "Aislar temporalmente"},
	{discordgo.PermissionSendMessages, "Enviar mensajes"},
	{discordgo.PermissionEmbedLinks, "Insertar enlaces"},
	{discordgo.PermissionAttachFiles, "Adjuntar archivos"},
	{discordgo.PermissionAddReactions, "Añadir reacciones"},
	{discordgo.PermissionUseExternalEmojis, "Usar emojis externos"},
	{discordgo.PermissionMentionEveryone, "Mencionar @everyone"},
	{discordgo.PermissionManageMessages, "Gestionar mensajes"},
	{discordgo.PermissionReadMessageHistory, "Leer el historial"},
	{discordgo.PermissionSendTTSMessages, "Enviar mensajes de texto a voz"},
	{discordgo.PermissionUseSlashCommands, "Usar comandos de aplicación"},
	{discordgo.PermissionVoiceConnect, "Conectar"},
	{discordgo.PermissionVoiceSpeak, "Hablar"},
	{discordgo.PermissionVoiceMuteMembers, "Silenciar miembros"},
	{discordgo.PermissionVoiceDeafenMembers, "Ensordecer miembros"},
	{discordgo.PermissionVoiceMoveMembers, "Mover miembros"},
	{discordgo.PermissionVoiceUseVAD, "Usar actividad de voz"},
	{discordgo.PermissionVoicePrioritySpeaker, "Prioridad de palabra"},
}

// PermissionList names the permissions set in perms
func PermissionList(perms int64) []string {
	var out []string
	for _, p := range permissionNames {
		if perms&p.bit == p.bit {
			out = append(out, p.name)
		}
	}
	return out
}

var channelTypeNames = map[discordgo.ChannelType]string{
	discordgo.ChannelTypeGuildText:       "Texto",
	discordgo.ChannelTypeGuildVoice:      "Voz",
	discordgo.ChannelTypeGuildCategory:   "Categoría",
	discordgo.ChannelTypeGuildNews:       "Anuncios",
	discordgo.ChannelTypeGuildStageVoice: "Escenario",
	discordgo.ChannelTypeGuildForum:      "Foro",
}

func (c *Cog) createCInfoCommand() *discord.Command {
	return discord.NewCommand("cinfo", "Información de un canal", "info", func(ctx *discord.CommandContext) error {
		ch := ctx.GetChannelOption("canal")
		if ch == nil {
			ch = ctx.Channel()
		}
		if ch == nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("No tengo datos de este canal."))
		}
		if full, err := ctx.Session.State.Channel(ch.ID); err == nil {
			ch = full
		}
		return ctx.ReplyEmbed(ChannelEmbed(ch))
	}).WithOptions(channelOption("Canal (por defecto este)")).InGuild()
}

// ChannelEmbed describes a guild channel
func ChannelEmbed(ch *discordgo.Channel) *discordgo.MessageEmbed {
	kind, ok := channelTypeNames[ch.Type]
	if !ok {
		kind = "Otro"
	}
	embed := &discordgo.MessageEmbed{
		Title: ch.Name,
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("ID", ch.ID, true),
			field("Tipo", kind, true),
			field("Posición", strconv.Itoa(ch.Position), true),
			field("Creado", created(ch.ID), false),
		},
	}
	if ch.ParentID != "" {
		embed.Fields = append(embed.Fields, field("Categoría", "<#"+ch.ParentID+">", true))
	}
	switch ch.Type {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		limit := "Sin límite"
		if ch.UserLimit > 0 {
			limit = strconv.Itoa(ch.UserLimit)
		}
		embed.Fields = append(embed.Fields,
			field("Bitrate", fmt.Sprintf("%d kbps", ch.Bitrate/1000), true),
			field("Límite de usuarios", limit, true))
	default:
		embed.Fields = append(embed.Fields,
			field("NSFW", discord.YesNo(ch.NSFW), true),
			field("Modo lento", fmt.Sprintf("%d s", ch.RateLimitPerUser), true),
			field("Tema", ch.Topic, false))
	}
	embed.Fields = append(embed.Fields, field("Permisos especiales", strconv.Itoa(len(ch.PermissionOverwrites)), true))
	return embed
}

func (c *Cog) createChanPermsCommand() *discord.Command {
	return discord.NewCommand("chanperms", "Permisos efectivos de un miembro en un canal", "info", func(ctx *discord.CommandContext) error {
		ch := ctx.GetChannelOption("canal")
		channelID := ctx.Interaction.ChannelID
		if ch != nil {
			channelID = ch.ID
		}
		user := ctx.GetUserOption("usuario")
		if user == nil {
			user = ctx.User()
		}
		perms, err := ctx.Session.State.UserChannelPermissions(user.ID, channelID)
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("No pude calcular los permisos."))
		}
		names := PermissionList(perms)
		if len(names) == 0 {
			names = []string{"Ninguno"}
		}
		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Permisos de %s en #%s", user.Username, channelName(ctx, channelID)),
			Description: "✅ " + strings.Join(names, "\n✅ "),
			Color:       discord.ColorInfo,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Valor: %d", perms)},
		})
	}).WithOptions(channelOption("Canal (por defecto este)"), userOption("Miembro (por defecto tú)", false)).InGuild()
}

func channelName(ctx *discord.CommandContext, id string) string {
	if ch, err := ctx.Session.State.Channel(id); err == nil {
		return ch.Name
	}
	return id
}
