// Package selfrole lets members toggle roles the staff marked as public.
package selfrole

import (
	"fmt"
	"slices"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	errNotConfigured = errors.Sentinel("los roles automáticos no están configurados en este servidor")
	errNotAllowed    = errors.Sentinel("ese rol no se puede autoasignar, mira /selfroleset list")
	errListed        = errors.Sentinel("ese rol ya está en la lista")
	errUnlisted      = errors.Sentinel("ese rol no está en la lista")
	errTooHigh       = errors.Sentinel("ese rol está por encima del mío")
)

// Cog holds the self role commands
type Cog struct {
	pages *discord.Interactive
}

// Register adds /selfrole and /selfroleset
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{pages: client.Interactive}
	h := client.CommandHandler

	cmd := discord.NewCommand("selfrole", "Ponte o quítate un rol público", "selfrole", c.toggleHandler).
		WithOptions(roleOption("Rol a ponerte o quitarte")).
		WithBotPermissions(discordgo.PermissionManageRoles).
		RequiresDatabase().InGuild()
	h.RegisterCommand(cmd)

	perm := int64(discordgo.PermissionManageRoles)
	group := h.BuildCommandGroup("selfroleset", "Roles que los miembros pueden autoasignarse",
		discord.NewCommand("add", "Permite autoasignar un rol", "selfrole", c.addHandler).
			WithOptions(roleOption("Rol")).WithUserPermissions(perm).RequiresDatabase(),
		discord.NewCommand("remove", "Deja de permitir un rol", "selfrole", c.removeHandler).
			WithOptions(roleOption("Rol")).WithUserPermissions(perm).RequiresDatabase(),
		discord.NewCommand("removeid", "Quita de la lista un rol que ya no existe", "selfrole", c.removeIDHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "id",
				Description: "ID del rol",
				Required:    true,
			}).WithUserPermissions(perm).RequiresDatabase(),
		discord.NewCommand("list", "Roles que se pueden autoasignar", "selfrole", c.listHandler).
			RequiresDatabase(),
	)
	h.AddGlobalCommand(group)
	return c
}

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "rol",
		Description: description,
		Required:    true,
	}
}

func load(guildID string) (*models.SelfRoleGuild, error) {
	cfg, err := database.GlobalSelfRoleDM.Get(bson.M{"guild_id": guildID})
	if err != nil {
		return nil, errors.WrapIf(err, "leer roles automáticos")
	}
	if cfg == nil {
		return &models.SelfRoleGuild{GuildID: guildID}, nil
	}
	return cfg, nil
}

// edit loads the guild list, lets fn change it and saves it
func edit(ctx *discord.CommandContext, fn func(cfg *models.SelfRoleGuild) (string, error)) error {
	cfg, err := load(ctx.Interaction.GuildID)
	if err == nil {
		var msg string
		if msg, err = fn(cfg); err == nil {
			if _, err = database.GlobalSelfRoleDM.Set(bson.M{"guild_id": cfg.GuildID}, cfg); err == nil {
				return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
			}
		}
	}
	return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "SelfRole")))
}

// Add puts roleID in the list
func Add(cfg *models.SelfRoleGuild, roleID string) error {
	if slices.Contains(cfg.Roles, roleID) {
		return errListed
	}
	cfg.Roles = append(slices.Clone(cfg.Roles), roleID)
	return nil
}

// Remove takes roleID out of the list
func Remove(cfg *models.SelfRoleGuild, roleID string) error {
	i := slices.Index(cfg.Roles, roleID)
	if i < 0 {
		return errUnlisted
	}
	cfg.Roles = slices.Delete(slices.Clone(cfg.Roles), i, i+1)
	return nil
}

func (c *Cog) addHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	return edit(ctx, func(cfg *models.SelfRoleGuild) (string, error) {
		if err := Add(cfg, role.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Ahora `%s` (`%s`) se puede autoasignar.", role.Name, role.ID), nil
	})
}

func (c *Cog) removeHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	return edit(ctx, func(cfg *models.SelfRoleGuild) (string, error) {
		if err := Remove(cfg, role.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("`%s` (`%s`) ya no se puede autoasignar.", role.Name, role.ID), nil
	})
}

func (c *Cog) removeIDHandler(ctx *discord.CommandContext) error {
	id := ctx.GetStringOption("id")
	return edit(ctx, func(cfg *models.SelfRoleGuild) (string, error) {
		if err := Remove(cfg, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Rol con ID `%s` quitado de la lista.", id), nil
	})
}

func (c *Cog) toggleHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	cfg, err := load(ctx.Interaction.GuildID)
	if err == nil && len(cfg.Roles) == 0 {
		err = errNotConfigured
	} else if err == nil && !slices.Contains(cfg.Roles, role.ID) {
		err = errNotAllowed
	}
	if err == nil {
		var bot discord.MemberRank
		if bot, err = discord.GuildRank(ctx.Session, ctx.Interaction.GuildID, ctx.Session.State.User.ID); err == nil && !bot.Above(role.Position) {
			err = errTooHigh
		}
	}
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "SelfRole")))
	}

	member := ctx.Member()
	reason := discordgo.WithAuditLogReason("Rol automático")
	if slices.Contains(member.Roles, role.ID) {
		err = ctx.Session.GuildMemberRoleRemove(ctx.Interaction.GuildID, member.User.ID, role.ID, reason)
		if err == nil {
			return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed(fmt.Sprintf("Te quité el rol `%s`.", role.Name)))
		}
	} else {
		err = ctx.Session.GuildMemberRoleAdd(ctx.Interaction.GuildID, member.User.ID, role.ID, reason)
		if err == nil {
			return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed(fmt.Sprintf("Te puse el rol `%s`.", role.Name)))
		}
	}
	return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "SelfRole")))
}

// Rows renders the list as "name | id" lines, keeping IDs of deleted roles
func Rows(cfg *models.SelfRoleGuild, guild *discordgo.Guild) []string {
	rows := make([]string, len(cfg.Roles))
	for i, id := range cfg.Roles {
		name := id
		if guild != nil {
			if r := discord.FindRole(guild, id); r != nil {
				name = r.Name
			}
		}
		rows[i] = fmt.Sprintf("%s | `%s`", name, id)
	}
	return rows
}

func (c *Cog) listHandler(ctx *discord.CommandContext) error {
	cfg, err := load(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "SelfRole")))
	}
	if len(cfg.Roles) == 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(errNotConfigured, "SelfRole")))
	}
	return c.pages.Paginate(ctx, discord.TextPages("Roles autoasignables", discord.ColorInfo, Rows(cfg, ctx.Guild())))
}
