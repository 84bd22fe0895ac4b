package admin

import (
	"fmt"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (c *Cog) createMassNickCommand() *discord.Command {
	return discord.NewCommand("massnick", "Cambia el apodo de todos los miembros", "admin",
		func(ctx *discord.CommandContext) error { return c.nickAll(ctx, ctx.GetStringOption("apodo")) },
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "apodo",
		Description: "Nuevo apodo",
		Required:    true,
		MaxLength:   32,
	}).WithUserPermissions(discordgo.PermissionManageNicknames).
		WithBotPermissions(discordgo.PermissionManageNicknames)
}

func (c *Cog) createResetNicksCommand() *discord.Command {
	return discord.NewCommand("resetnicks", "Quita el apodo de todos los miembros", "admin",
		func(ctx *discord.CommandContext) error { return c.nickAll(ctx, "") },
	).WithUserPermissions(discordgo.PermissionManageNicknames).
		WithBotPermissions(discordgo.PermissionManageNicknames)
}

// nickAll sets nick on every member, an empty nick resets them
func (c *Cog) nickAll(ctx *discord.CommandContext, nick string) error {
	guildID := ctx.Interaction.GuildID
	if wait := c.cooldown("nick:" + guildID); wait > 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(cooldownMessage(wait)))
	}
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		members, err := discord.AllMembers(ctx.Session, guildID)
		if err != nil {
			ctx.Fail(err, "Admin")
			return
		}
		failed := 0
		for _, m := range members {
			if m.Nick == nick {
				continue
			}
			if err := ctx.Session.GuildMemberNickname(guildID, m.User.ID, nick); err != nil {
				failed++
			}
		}
		logger.Info(fmt.Sprintf("Apodos cambiados en %s: %d miembros, %d fallos", guildID, len(members), failed), "Admin")
		msg := "Apodos cambiados."
		if nick == "" {
			msg = "Apodos restablecidos."
		}
		if failed > 0 {
			msg += fmt.Sprintf(" No pude cambiar %d apodos.", failed)
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed(msg))
	}()
	return nil
}
