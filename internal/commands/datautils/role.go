package datautils

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

func (c *Cog) createRInfoCommand() *discord.Command {
	return discord.NewCommand("rinfo", "Información de un rol", "info", func(ctx *discord.CommandContext) error {
		role := ctx.GetRoleOption("rol")
		members := -1
		if g := ctx.Guild(); g != nil && len(g.Members) >= g.MemberCount {
			members = len(RoleHolders(g.Members, role.ID))
		}
		return ctx.ReplyEmbed(RoleEmbed(role, members))
	}).WithOptions(roleOption()).InGuild()
}

// RoleEmbed describes a role. members below zero means unknown.
func RoleEmbed(r *discordgo.Role, members int) *discordgo.MessageEmbed {
	count := "Desconocido"
	if members >= 0 {
		count = strconv.Itoa(members)
	}
	perms := PermissionList(r.Permissions)
	permText := "Ninguno"
	if len(perms) > 0 {
		permText = fmt.Sprint(len(perms), " permisos: ")
		for i, p := range perms {
			if i > 0 {
				permText += ", "
			}
			permText += p
		}
	}
	return &discordgo.MessageEmbed{
		Title: r.Name,
		Color: r.Color,
		Fields: []*discordgo.MessageEmbedField{
			field("ID", r.ID, true),
			field("Color", fmt.Sprintf("#%06x", r.Color), true),
			field("Posición", strconv.Itoa(r.Position), true),
			field("Miembros", count, true),
			field("Separado", discord.YesNo(r.Hoist), true),
			field("Mencionable", discord.YesNo(r.Mentionable), true),
			field("Gestionado", discord.YesNo(r.Managed), true),
			field("Creado", created(r.ID), false),
			field("Permisos", permText, false),
		},
	}
}

// RoleHolders returns the members holding roleID
func RoleHolders(members []*discordgo.Member, roleID string) []*discordgo.Member {
	var out []*discordgo.Member
	for _, m := range members {
		for _, id := range m.Roles {
			if id == roleID {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func (c *Cog) createRoleMembersCommand() *discord.Command {
	return discord.NewCommand("rolemembers", "Miembros con un rol", "info", func(ctx *discord.CommandContext) error {
		go func() {
			defer errors.RecoverMiddleware()()

			if err := ctx.Defer(); err != nil {
				return
			}
			role := ctx.GetRoleOption("rol")
			members, err := discord.AllMembers(ctx.Session, ctx.Interaction.GuildID)
			if err != nil {
				ctx.Fail(err, "Info")
				return
			}
			holders := RoleHolders(members, role.ID)
			lines := make([]string, len(holders))
			for i, m := range holders {
				lines[i] = fmt.Sprintf("%s (%s)", discord.DisplayName(m, m.User), m.User.ID)
			}
			sort.Strings(lines)
			if len(lines) == 0 {
				lines = []string{"Nadie tiene este rol."}
			}
			c.pages.PaginateEdit(ctx, discord.TextPages(fmt.Sprintf("Miembros con %s (%d)", role.Name, len(holders)), role.Color, lines))
		}()
		return nil
	}).WithOptions(roleOption()).InGuild()
}
