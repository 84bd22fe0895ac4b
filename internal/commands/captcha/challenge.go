package captcha

import (
	"context"
	"fmt"
	"time"

	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// manualTimeout is the answer time of challenges started by hand
const manualTimeout = 20 * time.Minute

func memberOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "miembro",
		Description: description,
		Required:    true,
	}
}

func (c *Cog) createChallengeCommand() *discord.Command {
	return discord.NewCommand("challenge", "Inicia un captcha para un miembro", "captcha", c.challengeHandler).
		WithOptions(memberOption("Miembro a verificar")).
		InGuild().RequiresDatabase()
}

func (c *Cog) createSkipCommand() *discord.Command {
	return discord.NewCommand("skip", "Cancela el captcha de un miembro y le da acceso", "captcha", c.skipHandler).
		WithOptions(memberOption("Miembro a dejar pasar")).
		WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase()
}

func (c *Cog) challengeHandler(ctx *discord.CommandContext) error {
	guild := ctx.Guild()
	if guild == nil || (guild.OwnerID != ctx.User().ID && !ctx.IsOwner()) {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Solo el dueño del servidor puede iniciar captchas a mano."))
	}
	user := ctx.GetUserOption("miembro")
	if user.Bot {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Los bots no hacen captchas."))
	}
	member, err := ctx.Session.GuildMember(guild.ID, user.ID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Ese usuario no está en el servidor."))
	}
	member.GuildID = guild.ID
	if _, running := c.manager.Challenge(guild.ID, user.ID); running {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(cpt.ErrAlreadyRunning, "Captcha")))
	}
	if err := ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Captcha iniciado para %s. Puede tardar un rato.", user.Mention()))); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		outcome, err := c.manager.Start(context.Background(), MemberOf(ctx.Session, member), manualTimeout)
		if err != nil {
			logger.Warn(fmt.Sprintf("Captcha manual de %s falló: %v", user.ID, err), "Captcha")
			ctx.Session.ChannelMessageSendEmbed(ctx.Interaction.ChannelID,
				discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
			return
		}
		ctx.Session.ChannelMessageSendEmbed(ctx.Interaction.ChannelID, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("El captcha de %s terminó: **%s**.", user.Mention(), OutcomeText(outcome)),
			Color:       discord.ColorInfo,
		})
	}()
	return nil
}

func (c *Cog) skipHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("miembro")
	if err := c.manager.Skip(ctx.Interaction.GuildID, user.ID, ctx.User().Username); err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed("Captcha de " + user.Mention() + " cancelado."))
}

// OutcomeText names an outcome for users
func OutcomeText(o cpt.Outcome) string {
	switch o {
	case cpt.OutcomePassed:
		return "superado"
	case cpt.OutcomeFailed:
		return "fallido"
	case cpt.OutcomeTimeout:
		return "sin respuesta"
	case cpt.OutcomeLeft:
		return "salió del servidor"
	case cpt.OutcomeSkipped:
		return "omitido"
	default:
		return "error"
	}
}
