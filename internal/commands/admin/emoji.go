package admin

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/imagefinder"
	"github.com/bwmarrin/discordgo"
)

const (
	errNoEmoji      = errors.Sentinel("no encontré ningún emoji personalizado")
	errBadEmojiName = errors.Sentinel("el nombre solo puede tener letras, números y guiones bajos (2-32)")
)

var (
	emojiNameRe   = regexp.MustCompile(`^[A-Za-z0-9_]{2,32}$`)
	messageLinkRe = regexp.MustCompile(`discord(?:app)?\.com/channels/(\d+)/(\d+)/(\d+)`)
)

const downloadTimeout = 30 * time.Second

func emojiOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "emoji",
		Description: description,
		Required:    true,
	}
}

func nameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "nombre",
		Description: "Nombre del emoji",
		Required:    true,
		MinLength:   func() *int { v := 2; return &v }(),
		MaxLength:   32,
	}
}

func (c *Cog) emojiCommands() []*discord.Command {
	perm := int64(discordgo.PermissionManageEmojis)
	return []*discord.Command{
		discord.NewCommand("add", "Añade un emoji desde una URL", "admin", c.emojiAddHandler).
			WithOptions(
				nameOption(),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "URL de la imagen (png, jpg o gif, máx. 256 KB)",
					Required:    true,
				},
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "rol",
					Description: "Solo este rol podrá usarlo",
				},
			).WithUserPermissions(perm).WithBotPermissions(perm),
		discord.NewCommand("rename", "Cambia el nombre de un emoji", "admin", c.emojiRenameHandler).
			WithOptions(emojiOption("Emoji a renombrar"), nameOption()).
			WithUserPermissions(perm).WithBotPermissions(perm),
		discord.NewCommand("remove", "Borra un emoji", "admin", c.emojiRemoveHandler).
			WithOptions(emojiOption("Emoji a borrar")).
			WithUserPermissions(perm).WithBotPermissions(perm),
		discord.NewCommand("copy", "Copia emojis de otros servidores", "admin", c.emojiCopyHandler).
			WithOptions(emojiOption("Emojis o enlace a un mensaje que los contenga")).
			WithUserPermissions(perm).WithBotPermissions(perm),
	}
}

// createEmoji downloads url and uploads it as a guild emoji
func (c *Cog) createEmoji(s *discordgo.Session, guildID, name, url string, roles []string, reason string) (*discordgo.Emoji, error) {
	if !emojiNameRe.MatchString(name) {
		return nil, errBadEmojiName
	}
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	data, _, err := imagefinder.Fetch(ctx, c.cdn, url)
	if err != nil {
		return nil, err
	}
	return s.GuildEmojiCreate(guildID, &discordgo.EmojiParams{
		Name:  name,
		Image: imagefinder.DataURI(data),
		Roles: roles,
	}, discordgo.WithAuditLogReason(reason))
}

func (c *Cog) emojiAddHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		var roles []string
		if r := ctx.GetRoleOption("rol"); r != nil {
			roles = []string{r.ID}
		}
		emoji, err := c.createEmoji(ctx.Session, ctx.Interaction.GuildID, ctx.GetStringOption("nombre"),
			ctx.GetStringOption("url"), roles, "Añadido por "+ctx.User().Username)
		if err != nil {
			ctx.Fail(err, "Admin")
			return
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed("Emoji añadido: " + emoji.MessageFormat()))
	}()
	return nil
}

// guildEmoji finds the emoji of the guild referenced by text
func guildEmoji(ctx *discord.CommandContext, text string) (*discordgo.Emoji, error) {
	id, _, _, ok := imagefinder.CustomEmoji(text)
	if !ok {
		id = strings.Trim(text, ": ")
	}
	guild := ctx.Guild()
	if guild == nil {
		return nil, errNoEmoji
	}
	for _, e := range guild.Emojis {
		if e.ID == id || e.Name == id {
			return e, nil
		}
	}
	return nil, errNoEmoji
}

func (c *Cog) emojiRenameHandler(ctx *discord.CommandContext) error {
	emoji, err := guildEmoji(ctx, ctx.GetStringOption("emoji"))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Admin")))
	}
	name := ctx.GetStringOption("nombre")
	if !emojiNameRe.MatchString(name) {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(errBadEmojiName, "Admin")))
	}
	old := emoji.Name
	edited, err := ctx.Session.GuildEmojiEdit(ctx.Interaction.GuildID, emoji.ID, &discordgo.EmojiParams{Name: name, Roles: emoji.Roles},
		discordgo.WithAuditLogReason("Renombrado por "+ctx.User().Username))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Admin")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s `%s` ahora se llama `%s`.", edited.MessageFormat(), old, edited.Name)))
}

func (c *Cog) emojiRemoveHandler(ctx *discord.CommandContext) error {
	emoji, err := guildEmoji(ctx, ctx.GetStringOption("emoji"))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Admin")))
	}
	err = ctx.Session.GuildEmojiDelete(ctx.Interaction.GuildID, emoji.ID,
		discordgo.WithAuditLogReason("Borrado por "+ctx.User().Username))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Admin")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed("Emoji `" + emoji.Name + "` borrado."))
}

// EmojiLimit is how many static (and separately animated) emojis a guild
// of the given boost tier can hold
func EmojiLimit(tier discordgo.PremiumTier) int {
	switch tier {
	case discordgo.PremiumTier1:
		return 100
	case discordgo.PremiumTier2:
		return 150
	case discordgo.PremiumTier3:
		return 250
	}
	return 50
}

// FreeEmojiSlots returns how many static and animated emojis still fit
func FreeEmojiSlots(guild *discordgo.Guild) (static, animated int) {
	static, animated = EmojiLimit(guild.PremiumTier), EmojiLimit(guild.PremiumTier)
	for _, e := range guild.Emojis {
		if e.Animated {
			animated--
		} else {
			static--
		}
	}
	return static, animated
}

// emojiSource returns the text holding the emojis, following message links
func emojiSource(s *discordgo.Session, arg string) string {
	m := messageLinkRe.FindStringSubmatch(arg)
	if m == nil {
		return arg
	}
	msg, err := s.ChannelMessage(m[2], m[3])
	if err != nil {
		return arg
	}
	text := msg.Content
	for _, r := range msg.Reactions {
		if r.Emoji != nil && r.Emoji.ID != "" {
			text += " " + r.Emoji.MessageFormat()
		}
	}
	return text
}

func (c *Cog) emojiCopyHandler(ctx *discord.CommandContext) error {
	if wait := c.cooldown("emoji:" + ctx.Interaction.GuildID); wait > 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(cooldownMessage(wait)))
	}
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		emojis := imagefinder.CustomEmojis(emojiSource(ctx.Session, ctx.GetStringOption("emoji")))
		if len(emojis) == 0 {
			ctx.Fail(errNoEmoji, "Admin")
			return
		}
		if guild, err := ctx.Session.Guild(ctx.Interaction.GuildID); err == nil {
			static, animated := FreeEmojiSlots(guild)
			var wantStatic, wantAnimated int
			for _, e := range emojis {
				if e.Animated {
					wantAnimated++
				} else {
					wantStatic++
				}
			}
			if wantStatic > static || wantAnimated > animated {
				ctx.EditReplyEmbed(discord.ErrorEmbed(fmt.Sprintf(
					"Demasiados emojis: quedan %d huecos normales y %d animados, intentaste añadir %d y %d.",
					static, animated, wantStatic, wantAnimated)))
				return
			}
		}
		var added, failed []string
		reason := "Copiado por " + ctx.User().Username
		for _, e := range emojis {
			created, err := c.createEmoji(ctx.Session, ctx.Interaction.GuildID, e.Name, e.URL(), nil, reason)
			if err != nil {
				failed = append(failed, "`"+e.Name+"`")
				continue
			}
			added = append(added, created.MessageFormat())
		}
		msg := fmt.Sprintf("Copiados %d emojis: %s", len(added), strings.Join(added, " "))
		if len(failed) > 0 {
			msg += "\nNo se pudieron copiar: " + strings.Join(failed, ", ")
		}
		embed := discord.SuccessEmbed(discord.Truncate(msg, discord.MaxDescriptionLength))
		if len(added) == 0 {
			embed = discord.ErrorEmbed("No se pudo copiar ningún emoji: " + strings.Join(failed, ", "))
		}
		ctx.EditReplyEmbed(embed)
	}()
	return nil
}
