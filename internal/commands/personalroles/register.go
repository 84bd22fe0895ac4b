// Package personalroles gives members a role of their own they can rename,
// recolor and share with friends.
package personalroles

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
)

// editCooldown limits role edits per member
const editCooldown = 30 * time.Second

// Cog holds the personal role commands
type Cog struct {
	pages     *discord.Interactive
	http      *httpx.Client
	cooldowns *cache.Cache
}

// Register adds /myrole
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{
		pages:     client.Interactive,
		http:      httpx.New("PersonalRoles"),
		cooldowns: cache.New(editCooldown, time.Minute),
	}
	h := client.CommandHandler

	group := h.BuildCommandGroup("myrole", "Tu rol personal", append(c.adminCommands(), c.memberCommands()...)...)
	group.Options = append(group.Options,
		h.BuildSubcommandGroup("myrole", "blocklist", "Nombres de rol bloqueados", c.blocklistCommands()...),
		h.BuildSubcommandGroup("myrole", "icon", "Icono del rol personal", c.iconCommands()...),
		h.BuildSubcommandGroup("myrole", "friends", "Amigos que comparten tu rol", c.friendCommands()...),
	)
	h.AddGlobalCommand(group)
	return c
}

func manageRoles(cmd *discord.Command) *discord.Command {
	return cmd.WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild()
}

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
		Required:    required,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// throttle starts the member cooldown, returning the remaining wait when
// it is already running
func (c *Cog) throttle(ctx *discord.CommandContext) time.Duration {
	key := ctx.Interaction.GuildID + ":" + ctx.User().ID
	if exp, found := c.cooldowns.Get(key); found {
		return time.Until(exp.(time.Time)).Round(time.Second)
	}
	c.cooldowns.SetDefault(key, time.Now().Add(editCooldown))
	return 0
}

func (c *Cog) release(ctx *discord.CommandContext) {
	c.cooldowns.Delete(ctx.Interaction.GuildID + ":" + ctx.User().ID)
}

func failed(ctx *discord.CommandContext, err error) error {
	return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "PersonalRoles")))
}

func waitMessage(wait time.Duration) string {
	return fmt.Sprintf("Espera %s antes de volver a editar el rol.", wait)
}
