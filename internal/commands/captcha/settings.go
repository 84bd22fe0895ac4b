package captcha

import (
	"fmt"
	"strconv"
	"strings"

	"emperror.dev/errors"
	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const (
	errRoleListed   = errors.Sentinel("ese rol ya está en la lista")
	errRoleUnlisted = errors.Sentinel("ese rol no está en la lista")
)

// change applies fn to the guild settings and saves them. fn returns the
// confirmation shown to the user.
func (c *Cog) change(ctx *discord.CommandContext, fn func(s *cpt.Settings) (string, error)) error {
	store := c.manager.Store()
	settings, err := store.Load(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
	}
	msg, err := fn(settings)
	if err == nil {
		err = store.Save(settings)
	}
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

func adminCommand(name, description string, run discord.CommandRunFunc, opts ...*discordgo.ApplicationCommandOption) *discord.Command {
	cmd := discord.NewCommand(name, description, "captcha", run).
		WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase()
	if len(opts) > 0 {
		cmd.WithOptions(opts...)
	}
	return cmd
}

func intOption(name, description string, lo, hi int) *discordgo.ApplicationCommandOption {
	min := float64(lo)
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
		MinValue:    &min,
		MaxValue:    float64(hi),
	}
}

func channelOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "canal",
		Description:  description,
		Required:     required,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

func roleOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "rol",
		Description: description,
		Required:    required,
	}
}

func (c *Cog) settingsCommands() []*discord.Command {
	return []*discord.Command{
		adminCommand("channel", "Canal donde se hacen los captchas", c.channelHandler,
			channelOption("Canal de verificación", false),
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "dm",
				Description: "Hacer los captchas por mensaje directo",
			},
		),
		adminCommand("logs", "Canal de registros del captcha", c.logsHandler, channelOption("Canal de registros", true)),
		adminCommand("type", "Tipo de captcha", c.typeHandler, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tipo",
			Description: "Tipo",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "imagen", Value: cpt.TypeImage},
				{Name: "imagen ligera", Value: cpt.TypeWheezy},
				{Name: "texto", Value: cpt.TypeText},
			},
		}),
		adminCommand("timeout", "Minutos para responder", c.timeoutHandler, intOption("minutos", "1 a 15", 1, 15)),
		adminCommand("retries", "Intentos permitidos", c.retriesHandler, intOption("intentos", "1 a 10", 1, 10)),
		adminCommand("simultaneous", "Captchas simultáneos por servidor", c.simultaneousHandler, intOption("cantidad", "1 a 10", 1, 10)),
		adminCommand("temprole", "Rol durante el captcha (vacío para quitarlo)", c.tempRoleHandler, roleOption("Rol temporal", false)),
		adminCommand("autorole", "Roles que se dan al superar el captcha", c.autoRoleHandler,
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "accion",
				Description: "Añadir o quitar",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "añadir", Value: "add"},
					{Name: "quitar", Value: "remove"},
				},
			},
			roleOption("Rol", true),
		),
		adminCommand("enable", "Activa el captcha", c.enableHandler),
		adminCommand("disable", "Desactiva el captcha", c.disableHandler),
		adminCommand("show", "Muestra los ajustes", c.showHandler),
		adminCommand("export", "Exporta los ajustes en JSON", c.exportHandler),
		adminCommand("reset", "Borra todos los ajustes", c.resetHandler),
	}
}

func (c *Cog) channelHandler(ctx *discord.CommandContext) error {
	ch := ctx.GetChannelOption("canal")
	dm := ctx.GetBoolOption("dm")
	if ch == nil && !dm {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Indica un canal o activa la opción dm."))
	}
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		if dm {
			s.SetChannel(cpt.ChannelDM)
			return "Los captchas se harán por mensaje directo.", nil
		}
		s.SetChannel(ch.ID)
		return "Los captchas se harán en " + ch.Mention() + ".", nil
	})
}

func (c *Cog) logsHandler(ctx *discord.CommandContext) error {
	ch := ctx.GetChannelOption("canal")
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		s.SetLogsChannel(ch.ID)
		return "Registros en " + ch.Mention() + ".", nil
	})
}

func (c *Cog) typeHandler(ctx *discord.CommandContext) error {
	t := ctx.GetStringOption("tipo")
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		return "Tipo de captcha: **" + t + "**.", s.SetType(t)
	})
}

func (c *Cog) timeoutHandler(ctx *discord.CommandContext) error {
	n := int(ctx.GetIntOption("minutos"))
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		return fmt.Sprintf("Tiempo para responder: %d minutos.", n), s.SetTimeout(n)
	})
}

func (c *Cog) retriesHandler(ctx *discord.CommandContext) error {
	n := int(ctx.GetIntOption("intentos"))
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		return fmt.Sprintf("Intentos permitidos: %d.", n), s.SetRetries(n)
	})
}

func (c *Cog) simultaneousHandler(ctx *discord.CommandContext) error {
	n := int(ctx.GetIntOption("cantidad"))
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		return fmt.Sprintf("Captchas simultáneos: %d.", n), s.SetSimultaneous(n)
	})
}

func (c *Cog) tempRoleHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		if role == nil {
			s.SetTempRole("")
			return "Rol temporal quitado.", nil
		}
		s.SetTempRole(role.ID)
		return "Rol temporal: " + role.Mention() + ".", nil
	})
}

func (c *Cog) autoRoleHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	add := ctx.GetStringOption("accion") == "add"
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		if add {
			if !s.AddAutoRole(role.ID) {
				return "", errRoleListed
			}
			return role.Mention() + " se dará al superar el captcha.", nil
		}
		if !s.RemoveAutoRole(role.ID) {
			return "", errRoleUnlisted
		}
		return role.Mention() + " ya no se dará al superar el captcha.", nil
	})
}

// botState describes what the bot can do in the guild of ctx
func botState(ctx *discord.CommandContext) (cpt.BotState, error) {
	guild := ctx.Guild()
	if guild == nil {
		return cpt.BotState{}, cpt.ErrMissingPerms
	}
	rank, err := discord.GuildRank(ctx.Session, guild.ID, ctx.Session.State.User.ID)
	if err != nil {
		return cpt.BotState{}, err
	}
	return cpt.BotState{
		ManageRoles:   rank.Can(discordgo.PermissionManageRoles),
		KickMembers:   rank.Can(discordgo.PermissionKickMembers),
		TopRole:       rank.TopRole,
		RolePositions: discord.RolePositions(guild),
	}, nil
}

func (c *Cog) enableHandler(ctx *discord.CommandContext) error {
	bot, err := botState(ctx)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
	}
	settings, err := c.manager.Store().Load(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
	}
	if problems := settings.Problems(bot); len(problems) > 0 {
		return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       "No se puede activar el captcha",
			Description: "• " + strings.Join(problems, "\n• "),
			Color:       discord.ColorError,
		})
	}
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		s.SetEnabled(true)
		return "Captcha activado.", nil
	})
}

func (c *Cog) disableHandler(ctx *discord.CommandContext) error {
	return c.change(ctx, func(s *cpt.Settings) (string, error) {
		s.SetEnabled(false)
		return "Captcha desactivado.", nil
	})
}

// SettingsEmbed describes a guild configuration
func SettingsEmbed(s *cpt.Settings) *discordgo.MessageEmbed {
	cfg := s.Config()
	channel, logs, temp := "Ninguno", "Ninguno", "Ninguno"
	switch cfg.Channel {
	case "":
	case cpt.ChannelDM:
		channel = "Mensaje directo"
	default:
		channel = "<#" + cfg.Channel + ">"
	}
	if cfg.LogsChannel != "" {
		logs = "<#" + cfg.LogsChannel + ">"
	}
	if cfg.TempRole != "" {
		temp = "<@&" + cfg.TempRole + ">"
	}
	roles := "Ninguno"
	if len(cfg.AutoRoles) > 0 {
		mentions := make([]string, len(cfg.AutoRoles))
		for i, r := range cfg.AutoRoles {
			mentions[i] = "<@&" + r + ">"
		}
		roles = strings.Join(mentions, ", ")
	}
	return &discordgo.MessageEmbed{
		Title: "Ajustes del captcha",
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Activado", Value: discord.YesNo(cfg.Enabled), Inline: true},
			{Name: "Tipo", Value: cfg.Type, Inline: true},
			{Name: "Canal", Value: channel, Inline: true},
			{Name: "Registros", Value: logs, Inline: true},
			{Name: "Tiempo", Value: strconv.Itoa(cfg.Timeout) + " min", Inline: true},
			{Name: "Intentos", Value: strconv.Itoa(cfg.Retries), Inline: true},
			{Name: "Simultáneos", Value: strconv.Itoa(cfg.SimultaneousChallenges), Inline: true},
			{Name: "Rol temporal", Value: temp, Inline: true},
			{Name: "Roles automáticos", Value: discord.Truncate(roles, discord.MaxFieldLength)},
		},
	}
}

func (c *Cog) showHandler(ctx *discord.CommandContext) error {
	settings, err := c.manager.Store().Load(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
	}
	return ctx.ReplyEphemeralEmbed(SettingsEmbed(settings))
}

func (c *Cog) exportHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.DeferEphemeral(); err != nil {
			return
		}
		settings, err := c.manager.Store().Load(ctx.Interaction.GuildID)
		if err != nil {
			ctx.Fail(err, "Captcha")
			return
		}
		data, err := settings.Export()
		if err != nil {
			ctx.Fail(err, "Captcha")
			return
		}
		ctx.EditReplyFile("Ajustes del captcha:", "captcha.json", data)
	}()
	return nil
}

func (c *Cog) resetHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		guildID := ctx.Interaction.GuildID
		c.pages.Confirm(ctx, "¿Borrar todos los ajustes del captcha?", func(cc *discord.ComponentContext) error {
			if err := c.manager.Store().Erase(guildID); err != nil {
				return cc.Finish(discord.ErrorEmbed(discord.FailureMessage(err, "Captcha")))
			}
			return cc.Finish(discord.SuccessEmbed("Ajustes del captcha borrados."))
		})
	}()
	return nil
}
