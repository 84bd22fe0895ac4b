// Package datautils provides /info: read only details about users, guilds,
// channels, roles and emojis.
package datautils

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/bwmarrin/discordgo"
)

// Cog holds what the info commands share
type Cog struct {
	pages *discord.Interactive
	api   *httpx.Client
}

// Register adds /info
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{
		pages: client.Interactive,
		api:   httpx.New("Discord widget", httpx.WithBaseURL("https://discord.com/api/v10")),
	}
	group := client.CommandHandler.BuildCommandGroup("info", "Información de Discord",
		c.createUInfoCommand(),
		c.createActivitiesCommand(),
		c.createGetUserInfoCommand(),
		c.createSInfoCommand(),
		c.createBansCommand(),
		c.createInvitesCommand(),
		c.createChannelsCommand(),
		c.createRolesCommand(),
		c.createEmojisCommand(),
		c.createFetchWidgetCommand(),
		c.createCInfoCommand(),
		c.createChanPermsCommand(),
		c.createRInfoCommand(),
		c.createRoleMembersCommand(),
		c.createEInfoCommand(),
	)
	client.CommandHandler.AddGlobalCommand(group)
	return c
}

// stamp renders t as an absolute and a relative Discord timestamp
func stamp(t time.Time) string {
	if t.IsZero() {
		return "Desconocido"
	}
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", t.Unix(), t.Unix())
}

// created returns when a snowflake was created
func created(id string) string {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return "Desconocido"
	}
	return stamp(t)
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if value == "" {
		value = "—"
	}
	return &discordgo.MessageEmbedField{Name: name, Value: discord.Truncate(value, discord.MaxFieldLength), Inline: inline}
}

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
		Required:    required,
	}
}

func channelOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "canal",
		Description: description,
	}
}

func roleOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "rol",
		Description: "Rol",
		Required:    true,
	}
}

// listCommand builds a paginated list of the current guild
func (c *Cog) listCommand(name, description string, perm int64, lines func(ctx *discord.CommandContext, g *discordgo.Guild) (string, []string, error)) *discord.Command {
	cmd := discord.NewCommand(name, description, "info", func(ctx *discord.CommandContext) error {
		guild := ctx.Guild()
		if guild == nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Este comando solo puede usarse en un servidor."))
		}
		title, out, err := lines(ctx, guild)
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Info")))
		}
		if len(out) == 0 {
			out = []string{"Nada que mostrar."}
		}
		return c.pages.Paginate(ctx, discord.TextPages(title, discord.ColorInfo, out))
	}).InGuild()
	if perm != 0 {
		cmd.WithUserPermissions(perm).WithBotPermissions(perm)
	}
	return cmd
}
