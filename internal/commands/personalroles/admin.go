package personalroles

import (
	"fmt"

	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson"
)

func (c *Cog) adminCommands() []*discord.Command {
	min := float64(MinLimit)
	return []*discord.Command{
		manageRoles(discord.NewCommand("assign", "Asigna un rol personal a alguien", "personalroles", c.assignHandler).
			WithOptions(userOption("Miembro", true), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "rol",
				Description: "Rol",
				Required:    true,
			})),
		manageRoles(discord.NewCommand("unassign", "Quita el rol personal de alguien", "personalroles", c.unassignHandler).
			WithOptions(userOption("Miembro", false), stringOption("id", "ID de un usuario que ya no está", false))),
		manageRoles(discord.NewCommand("list", "Roles personales asignados", "personalroles", c.listHandler)),
		manageRoles(discord.NewCommand("persistence", "Devolver el rol al volver a entrar", "personalroles", c.persistenceHandler)),
		manageRoles(discord.NewCommand("limit", "Con cuántos amigos puede compartir alguien su rol", "personalroles", c.limitHandler).
			WithOptions(userOption("Miembro", true), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "cantidad",
				Description: "Vacío para no permitirlo",
				MinValue:    &min,
				MaxValue:    MaxLimit,
			})),
	}
}

func (c *Cog) assignHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	role := ctx.GetRoleOption("rol")
	m, err := LoadMember(ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return failed(ctx, err)
	}
	if m == nil {
		m = &models.PersonalRoleMember{GuildID: ctx.Interaction.GuildID, UserID: user.ID}
	}
	if m.Role != role.ID {
		m.Friends = nil
	}
	m.Role = role.ID
	if err := saveMember(m); err != nil {
		return failed(ctx, err)
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Asigné a %s (`%s`) el rol %s (`%s`).", user.Username, user.ID, role.Name, role.ID)))
}

func (c *Cog) unassignHandler(ctx *discord.CommandContext) error {
	id, name := ctx.GetStringOption("id"), "[usuario desconocido]"
	if user := ctx.GetUserOption("usuario"); user != nil {
		id, name = user.ID, user.Username
	}
	if id == "" {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Indica un miembro o un ID."))
	}
	if err := database.GlobalPersonalMemberDM.Delete(memberQuery(ctx.Interaction.GuildID, id)); err != nil {
		return failed(ctx, err)
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s (`%s`) ya no tiene rol personal.", name, id)))
}

// AssignedRows renders "member | role" lines, marking members and roles
// that no longer exist
func AssignedRows(records []*models.PersonalRoleMember, guild *discordgo.Guild, present map[string]string) []string {
	rows := make([]string, 0, len(records))
	for _, r := range records {
		if r.Role == "" {
			continue
		}
		user, ok := present[r.UserID]
		if !ok {
			user = "[X] " + r.UserID
		}
		role := "[X] " + r.Role
		if found := discord.FindRole(guild, r.Role); found != nil {
			role = discord.Truncate(found.Name, 32)
		}
		rows = append(rows, fmt.Sprintf("%s | %s", user, role))
	}
	return rows
}

func (c *Cog) listHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		guildID := ctx.Interaction.GuildID
		records, err := database.GlobalPersonalMemberDM.GetAll(bson.M{"guild_id": guildID})
		if err != nil {
			ctx.Fail(err, "PersonalRoles")
			return
		}
		guild, err := ctx.Session.State.Guild(guildID)
		if err != nil {
			if guild, err = ctx.Session.Guild(guildID); err != nil {
				ctx.Fail(err, "PersonalRoles")
				return
			}
		}
		present := make(map[string]string, len(records))
		for _, r := range records {
			if m, err := ctx.Session.State.Member(guildID, r.UserID); err == nil {
				present[r.UserID] = discord.DisplayName(m, m.User)
			}
		}
		rows := AssignedRows(records, guild, present)
		if len(rows) == 0 {
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{Description: "No hay roles personales asignados.", Color: discord.ColorInfo})
			return
		}
		c.pages.PaginateEdit(ctx, discord.TextPages("Roles personales", discord.ColorInfo, rows))
	}()
	return nil
}

func (c *Cog) persistenceHandler(ctx *discord.CommandContext) error {
	cfg, err := LoadGuild(ctx.Interaction.GuildID)
	if err != nil {
		return failed(ctx, err)
	}
	cfg.RolePersistence = !cfg.RolePersistence
	if err := saveGuild(cfg); err != nil {
		return failed(ctx, err)
	}
	msg := "Los miembros recuperarán su rol al volver a entrar."
	if !cfg.RolePersistence {
		msg = "Los miembros no recuperarán su rol al volver a entrar."
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

func (c *Cog) limitHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	m, err := LoadMember(ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return failed(ctx, err)
	}
	if m == nil || m.Role == "" {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(user.Username + " no tiene rol personal."))
	}
	m.Limit = int(ctx.GetIntOption("cantidad"))
	if err := saveMember(m); err != nil {
		return failed(ctx, err)
	}
	if m.Limit == 0 {
		return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s ya no puede compartir su rol.", user.Username)))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s puede compartir su rol con %d amigos.", user.Username, m.Limit)))
}

func (c *Cog) blocklistCommands() []*discord.Command {
	name := stringOption("nombre", "Nombre de rol", true)
	return []*discord.Command{
		manageRoles(discord.NewCommand("add", "Bloquea un nombre de rol", "personalroles", c.blockHandler).WithOptions(name)),
		manageRoles(discord.NewCommand("remove", "Desbloquea un nombre de rol", "personalroles", c.unblockHandler).WithOptions(name)),
		manageRoles(discord.NewCommand("list", "Nombres bloqueados", "personalroles", c.blocklistHandler)),
	}
}

func (c *Cog) editBlocklist(ctx *discord.CommandContext, fn func(*models.PersonalRolesGuild, string) (string, error), done string) error {
	cfg, err := LoadGuild(ctx.Interaction.GuildID)
	if err != nil {
		return failed(ctx, err)
	}
	name, err := fn(cfg, ctx.GetStringOption("nombre"))
	if err == nil {
		err = saveGuild(cfg)
	}
	if err != nil {
		return failed(ctx, err)
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf(done, name)))
}

func (c *Cog) blockHandler(ctx *discord.CommandContext) error {
	return c.editBlocklist(ctx, Block, "`%s` bloqueado.")
}

func (c *Cog) unblockHandler(ctx *discord.CommandContext) error {
	return c.editBlocklist(ctx, Unblock, "`%s` desbloqueado.")
}

func (c *Cog) blocklistHandler(ctx *discord.CommandContext) error {
	cfg, err := LoadGuild(ctx.Interaction.GuildID)
	if err != nil {
		return failed(ctx, err)
	}
	if len(cfg.Blacklist) == 0 {
		return ctx.ReplyEmbed(&discordgo.MessageEmbed{Description: "No hay nombres bloqueados.", Color: discord.ColorInfo})
	}
	return c.pages.Paginate(ctx, discord.TextPages("Nombres bloqueados", discord.ColorInfo, cfg.Blacklist))
}
