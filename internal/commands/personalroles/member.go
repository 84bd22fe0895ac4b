package personalroles

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/imagefinder"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/forPelevin/gomoji"
)

const (
	featureRoleIcons = discordgo.GuildFeature("ROLE_ICONS")
	downloadTimeout  = 20 * time.Second
	auditReason      = "Rol personal"
)

func (c *Cog) memberCommands() []*discord.Command {
	return []*discord.Command{
		discord.NewCommand("colour", "Cambia el color de tu rol", "personalroles", c.colourHandler).
			WithOptions(stringOption("color", "Color hexadecimal (vacío para quitarlo)", false)).
			WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
		discord.NewCommand("name", "Cambia el nombre de tu rol", "personalroles", c.nameHandler).
			WithOptions(stringOption("nombre", "Nuevo nombre", true)).
			WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
	}
}

// ParseColour turns "#rrggbb", "#rgb" or an empty string into a role color
func ParseColour(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	hex, err := lvl.ParseHex(s)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(hex[1:], 16, 32)
	return int(v), err
}

// withRole resolves the role the caller may edit, checks the bot can edit
// it and runs fn with the member cooldown held. fn returns the success
// message; the cooldown is released when it fails.
func (c *Cog) withRole(ctx *discord.CommandContext, fn func(rec *models.PersonalRoleMember, role *discordgo.Role) (string, error)) error {
	if wait := c.throttle(ctx); wait > 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(waitMessage(wait)))
	}
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			c.release(ctx)
			return
		}
		msg, err := c.editRole(ctx, fn)
		if err != nil {
			c.release(ctx)
			ctx.Fail(err, "PersonalRoles")
			return
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed(msg))
	}()
	return nil
}

func (c *Cog) editRole(ctx *discord.CommandContext, fn func(rec *models.PersonalRoleMember, role *discordgo.Role) (string, error)) (string, error) {
	guildID := ctx.Interaction.GuildID
	rec, err := editable(guildID, ctx.User().ID)
	if err != nil {
		return "", err
	}
	guild, err := ctx.Session.State.Guild(guildID)
	if err != nil {
		if guild, err = ctx.Session.Guild(guildID); err != nil {
			return "", errors.WrapIf(err, "obtener servidor")
		}
	}
	role := discord.FindRole(guild, rec.Role)
	if role == nil {
		return "", errNoRole
	}
	bot, err := discord.GuildRank(ctx.Session, guildID, ctx.Session.State.User.ID)
	if err != nil {
		return "", err
	}
	if !bot.Above(role.Position) {
		return "", errRoleTooHigh
	}
	return fn(rec, role)
}

func editErr(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == 403 {
		return errRoleTooHigh
	}
	return err
}

func (c *Cog) colourHandler(ctx *discord.CommandContext) error {
	colour, err := ParseColour(ctx.GetStringOption("color"))
	if err != nil {
		return failed(ctx, err)
	}
	return c.withRole(ctx, func(rec *models.PersonalRoleMember, role *discordgo.Role) (string, error) {
		_, err := ctx.Session.GuildRoleEdit(ctx.Interaction.GuildID, role.ID, &discordgo.RoleParams{Color: &colour},
			discordgo.WithAuditLogReason(auditReason))
		if err != nil {
			return "", editErr(err)
		}
		if colour == 0 {
			return "Color del rol personal restablecido.", nil
		}
		return fmt.Sprintf("Color del rol personal cambiado a #%06x.", colour), nil
	})
}

func (c *Cog) nameHandler(ctx *discord.CommandContext) error {
	return c.withRole(ctx, func(rec *models.PersonalRoleMember, role *discordgo.Role) (string, error) {
		cfg, err := LoadGuild(ctx.Interaction.GuildID)
		if err != nil {
			return "", err
		}
		name, err := CheckName(cfg, ctx.GetStringOption("nombre"))
		if err != nil {
			return "", err
		}
		if _, err := ctx.Session.GuildRoleEdit(ctx.Interaction.GuildID, role.ID, &discordgo.RoleParams{Name: name},
			discordgo.WithAuditLogReason(auditReason)); err != nil {
			return "", editErr(err)
		}
		return fmt.Sprintf("Nombre del rol personal cambiado a **%s**.", name), nil
	})
}

func (c *Cog) iconCommands() []*discord.Command {
	return []*discord.Command{
		discord.NewCommand("emoji", "Usa un emoji como icono", "personalroles", c.iconEmojiHandler).
			WithOptions(stringOption("emoji", "Emoji normal o personalizado", true)).
			WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
		discord.NewCommand("image", "Usa una imagen como icono", "personalroles", c.iconImageHandler).
			WithOptions(
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "imagen",
					Description: "Imagen adjunta",
				},
				stringOption("url", "URL de la imagen", false),
			).WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
		discord.NewCommand("reset", "Quita el icono", "personalroles", c.iconResetHandler).
			WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
	}
}

func hasRoleIcons(ctx *discord.CommandContext) bool {
	guild := ctx.Guild()
	return guild != nil && slices.Contains(guild.Features, featureRoleIcons)
}

// setIcon uploads image data, or sets a unicode emoji when data is nil
func (c *Cog) setIcon(ctx *discord.CommandContext, unicode string, load func() ([]byte, error)) error {
	if !hasRoleIcons(ctx) {
		return failed(ctx, errNoRoleIcons)
	}
	return c.withRole(ctx, func(rec *models.PersonalRoleMember, role *discordgo.Role) (string, error) {
		params := &discordgo.RoleParams{}
		if load != nil {
			data, err := load()
			if err != nil {
				return "", err
			}
			icon := imagefinder.DataURI(data)
			params.Icon = &icon
		} else {
			params.UnicodeEmoji = &unicode
		}
		if _, err := ctx.Session.GuildRoleEdit(ctx.Interaction.GuildID, role.ID, params,
			discordgo.WithAuditLogReason(auditReason)); err != nil {
			return "", editErr(err)
		}
		return "Icono del rol personal cambiado.", nil
	})
}

func (c *Cog) fetch(url string) ([]byte, error) {
	rctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	data, _, err := imagefinder.Fetch(rctx, c.http, url)
	return data, err
}

func (c *Cog) iconEmojiHandler(ctx *discord.CommandContext) error {
	text := strings.TrimSpace(ctx.GetStringOption("emoji"))
	if custom := imagefinder.CustomEmojis(text); len(custom) > 0 {
		url := custom[0].URL()
		return c.setIcon(ctx, "", func() ([]byte, error) { return c.fetch(url) })
	}
	if !gomoji.ContainsEmoji(text) {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Eso no es un emoji."))
	}
	return c.setIcon(ctx, text, nil)
}

// attachmentURL returns the URL of an attachment option
func attachmentURL(ctx *discord.CommandContext, name string) string {
	opt := ctx.GetOption(name)
	if opt == nil {
		return ""
	}
	id, _ := opt.Value.(string)
	resolved := ctx.Interaction.ApplicationCommandData().Resolved
	if resolved == nil {
		return ""
	}
	if att, ok := resolved.Attachments[id]; ok {
		return att.URL
	}
	return ""
}

func (c *Cog) iconImageHandler(ctx *discord.CommandContext) error {
	url := attachmentURL(ctx, "imagen")
	if url == "" {
		url = strings.TrimSpace(ctx.GetStringOption("url"))
	}
	if url == "" {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Adjunta una imagen o indica una URL."))
	}
	return c.setIcon(ctx, "", func() ([]byte, error) { return c.fetch(url) })
}

// clearIcon removes both icon kinds, which RoleParams cannot express
func clearIcon(s *discordgo.Session, guildID, roleID string) error {
	endpoint := discordgo.EndpointGuildRole(guildID, roleID)
	_, err := s.RequestWithBucketID("PATCH", endpoint,
		map[string]any{"icon": nil, "unicode_emoji": nil},
		discordgo.EndpointGuildRoles(guildID), discordgo.WithAuditLogReason(auditReason))
	return err
}

func (c *Cog) iconResetHandler(ctx *discord.CommandContext) error {
	return c.withRole(ctx, func(rec *models.PersonalRoleMember, role *discordgo.Role) (string, error) {
		if err := clearIcon(ctx.Session, ctx.Interaction.GuildID, role.ID); err != nil {
			return "", editErr(err)
		}
		return "Icono del rol personal quitado.", nil
	})
}

func (c *Cog) friendCommands() []*discord.Command {
	return []*discord.Command{
		discord.NewCommand("add", "Comparte tu rol con alguien", "personalroles", c.friendAddHandler).
			WithOptions(userOption("Amigo", true)).
			WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
		discord.NewCommand("remove", "Deja de compartir tu rol con alguien", "personalroles", c.friendRemoveHandler).
			WithOptions(userOption("Amigo", true)).
			WithBotPermissions(discordgo.PermissionManageRoles).RequiresDatabase().InGuild(),
		discord.NewCommand("list", "Con quién compartes tu rol", "personalroles", c.friendListHandler).
			RequiresDatabase().InGuild(),
	}
}

// ownRole loads the caller's own record; friends cannot manage sharing
func ownRole(ctx *discord.CommandContext) (*models.PersonalRoleMember, error) {
	rec, err := LoadMember(ctx.Interaction.GuildID, ctx.User().ID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Role == "" {
		return nil, errNoRole
	}
	return rec, nil
}

func (c *Cog) friendAddHandler(ctx *discord.CommandContext) error {
	friend := ctx.GetUserOption("usuario")
	return c.withFriends(ctx, func(rec *models.PersonalRoleMember) (string, error) {
		if err := AddFriend(rec, friend.ID); err != nil {
			return "", err
		}
		err := ctx.Session.GuildMemberRoleAdd(ctx.Interaction.GuildID, friend.ID, rec.Role, discordgo.WithAuditLogReason(auditReason))
		if err != nil {
			return "", editErr(err)
		}
		return fmt.Sprintf("Ahora %s comparte tu rol.", friend.Username), nil
	})
}

func (c *Cog) friendRemoveHandler(ctx *discord.CommandContext) error {
	friend := ctx.GetUserOption("usuario")
	return c.withFriends(ctx, func(rec *models.PersonalRoleMember) (string, error) {
		if err := RemoveFriend(rec, friend.ID); err != nil {
			return "", err
		}
		err := ctx.Session.GuildMemberRoleRemove(ctx.Interaction.GuildID, friend.ID, rec.Role, discordgo.WithAuditLogReason(auditReason))
		if err != nil {
			logger.Debug("No se pudo quitar el rol a un amigo: "+err.Error(), "PersonalRoles")
		}
		return fmt.Sprintf("%s ya no comparte tu rol.", friend.Username), nil
	})
}

// withFriends runs fn on the caller's record and saves it on success
func (c *Cog) withFriends(ctx *discord.CommandContext, fn func(rec *models.PersonalRoleMember) (string, error)) error {
	if wait := c.throttle(ctx); wait > 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(waitMessage(wait)))
	}
	rec, err := ownRole(ctx)
	var msg string
	if err == nil {
		if msg, err = fn(rec); err == nil {
			err = saveMember(rec)
		}
	}
	if err != nil {
		c.release(ctx)
		return failed(ctx, err)
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

func (c *Cog) friendListHandler(ctx *discord.CommandContext) error {
	rec, err := ownRole(ctx)
	if err != nil {
		return failed(ctx, err)
	}
	lines := make([]string, len(rec.Friends))
	for i, id := range rec.Friends {
		lines[i] = "<@" + id + ">"
	}
	if len(lines) == 0 {
		lines = []string{"Todavía no compartes tu rol."}
	}
	embed := discord.TextPages(fmt.Sprintf("Amigos (%d/%d)", len(rec.Friends), rec.Limit), discord.ColorInfo, lines)
	return c.pages.Paginate(ctx, embed)
}

// RestoreOnJoin gives a returning member their personal role back when the
// guild keeps roles across rejoins
func RestoreOnJoin(s *discordgo.Session, guildID, userID string) error {
	cfg, err := LoadGuild(guildID)
	if err != nil || !cfg.RolePersistence {
		return err
	}
	rec, err := LoadMember(guildID, userID)
	if err != nil || rec == nil || rec.Role == "" {
		return err
	}
	err = s.GuildMemberRoleAdd(guildID, userID, rec.Role, discordgo.WithAuditLogReason(auditReason))
	return errors.WrapIf(err, "devolver rol personal")
}
