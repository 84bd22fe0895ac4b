package admin

import (
	"fmt"
	"net/url"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// invitePermissions are requested in the bot invite link
const invitePermissions = discordgo.PermissionManageRoles | discordgo.PermissionKickMembers |
	discordgo.PermissionManageNicknames | discordgo.PermissionManageEmojis |
	discordgo.PermissionManageMessages | discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles | discordgo.PermissionAddReactions |
	discordgo.PermissionReadMessageHistory | discordgo.PermissionCreateInstantInvite

// InviteURL is the OAuth2 link adding the bot with slash commands
func InviteURL(clientID string, perms int64) string {
	q := url.Values{
		"client_id":   {clientID},
		"scope":       {"bot applications.commands"},
		"permissions": {fmt.Sprint(perms)},
	}
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}

func (c *Cog) createInviteCommand() *discord.Command {
	return discord.NewCommand("invite", "Enlace para invitar al bot", "admin", func(ctx *discord.CommandContext) error {
		return ctx.ReplyEphemeral(InviteURL(ctx.Session.State.User.ID, invitePermissions))
	})
}

func (c *Cog) createSelfInviteCommand() *discord.Command {
	return discord.NewCommand("selfinvite", "Crea una invitación temporal a este canal", "admin", func(ctx *discord.CommandContext) error {
		inv, err := ctx.Session.ChannelInviteCreate(ctx.Interaction.ChannelID, discordgo.Invite{
			MaxAge:    3600,
			Temporary: true,
		})
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Admin")))
		}
		return ctx.ReplyEphemeral("https://discord.gg/" + inv.Code)
	}).WithUserPermissions(discordgo.PermissionCreateInstantInvite).
		WithBotPermissions(discordgo.PermissionCreateInstantInvite)
}
