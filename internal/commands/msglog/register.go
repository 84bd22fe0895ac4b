package msglog

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const errNoChannel = errors.Sentinel("primero configura el canal de registro con /msglog channel")

// Cog holds the message log commands
type Cog struct {
	pages *discord.Interactive
}

// Register adds /msglog
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{pages: client.Interactive}
	h := client.CommandHandler
	group := h.BuildCommandGroup("msglog", "Registro de mensajes eliminados y editados",
		command("channel", "Canal de registro (vacío para desactivar)", c.channelHandler,
			&discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "canal",
				Description:  "Canal de texto",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}),
		command("delete", "Activa o desactiva el registro de mensajes eliminados", c.kindHandler(Deleted)),
		command("edit", "Activa o desactiva el registro de mensajes editados", c.kindHandler(Edited)),
		command("ignore", "Ignora o deja de ignorar un canal, categoría o usuario", c.ignoreHandler,
			&discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "canal",
				Description:  "Canal de texto o categoría",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildCategory},
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "usuario",
				Description: "Miembro",
			}),
		command("ignored", "Lista de lo que se ignora", c.ignoredHandler),
	)
	h.AddGlobalCommand(group)
	return c
}

func command(name, description string, run discord.CommandRunFunc, opts ...*discordgo.ApplicationCommandOption) *discord.Command {
	cmd := discord.NewCommand(name, description, "msglog", run).
		WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase()
	if len(opts) > 0 {
		cmd.WithOptions(opts...)
	}
	return cmd
}

// update loads the settings, applies fn and saves the result
func update(ctx *discord.CommandContext, fn func(cfg *models.MessagesLogConfig) (string, error)) error {
	cfg, err := Load(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "MessagesLog")))
	}
	msg, err := fn(cfg)
	if err == nil {
		err = save(cfg)
	}
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "MessagesLog")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

func (c *Cog) channelHandler(ctx *discord.CommandContext) error {
	return update(ctx, func(cfg *models.MessagesLogConfig) (string, error) {
		ch := ctx.GetChannelOption("canal")
		if ch == nil {
			cfg.Channel = ""
			return "Registro de mensajes desactivado.", nil
		}
		cfg.Channel = ch.ID
		return fmt.Sprintf("Los mensajes se registrarán en <#%s>.", ch.ID), nil
	})
}

func (c *Cog) kindHandler(kind Kind) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		return update(ctx, func(cfg *models.MessagesLogConfig) (string, error) {
			if cfg.Channel == "" {
				return "", errNoChannel
			}
			label, flag := "mensajes eliminados", &cfg.Deletion
			if kind == Edited {
				label, flag = "mensajes editados", &cfg.Editing
			}
			*flag = !*flag
			state := "desactivado"
			if *flag {
				state = "activado"
			}
			return fmt.Sprintf("Registro de %s %s.", label, state), nil
		})
	}
}

func (c *Cog) ignoreHandler(ctx *discord.CommandContext) error {
	ch := ctx.GetChannelOption("canal")
	user := ctx.GetUserOption("usuario")
	if ch == nil && user == nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Indica un canal, una categoría o un usuario."))
	}
	return update(ctx, func(cfg *models.MessagesLogConfig) (string, error) {
		if cfg.Channel == "" {
			return "", errNoChannel
		}
		var lines []string
		if ch != nil {
			var added bool
			if ch.Type == discordgo.ChannelTypeGuildCategory {
				cfg.IgnoredCategories, added = toggle(cfg.IgnoredCategories, ch.ID)
			} else {
				cfg.IgnoredChannels, added = toggle(cfg.IgnoredChannels, ch.ID)
			}
			lines = append(lines, ignoreLine("<#"+ch.ID+">", added))
		}
		if user != nil {
			var added bool
			cfg.IgnoredUsers, added = toggle(cfg.IgnoredUsers, user.ID)
			lines = append(lines, ignoreLine("<@"+user.ID+">", added))
		}
		return strings.Join(lines, "\n"), nil
	})
}

func ignoreLine(mention string, added bool) string {
	if added {
		return mention + " ahora se ignora."
	}
	return mention + " ya no se ignora."
}

// IgnoredPages lists ignored users, channels and categories, one section
// after another
func IgnoredPages(cfg *models.MessagesLogConfig) []*discordgo.MessageEmbed {
	var pages []*discordgo.MessageEmbed
	add := func(title, format string, ids []string) {
		if len(ids) == 0 {
			return
		}
		lines := make([]string, len(ids))
		for i, id := range ids {
			lines[i] = fmt.Sprintf(format, id)
		}
		pages = append(pages, discord.TextPages(title, discord.ColorInfo, lines)...)
	}
	add("Usuarios ignorados", "<@%s>", cfg.IgnoredUsers)
	add("Canales ignorados", "<#%s>", cfg.IgnoredChannels)
	add("Categorías ignoradas", "<#%s>", cfg.IgnoredCategories)
	return pages
}

func (c *Cog) ignoredHandler(ctx *discord.CommandContext) error {
	cfg, err := Load(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "MessagesLog")))
	}
	pages := IgnoredPages(cfg)
	if len(pages) == 0 {
		return ctx.ReplyEmbed(&discordgo.MessageEmbed{Description: "No se ignora nada.", Color: discord.ColorInfo})
	}
	return c.pages.Paginate(ctx, pages)
}
