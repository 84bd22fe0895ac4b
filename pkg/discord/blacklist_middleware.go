package discord

import (
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	ErrNoEvents         = errors.Sentinel("ningún cog registró eventos")
	ErrNoCommands       = errors.Sentinel("ningún cog registró comandos")
	ErrDuplicateCommand = errors.Sentinel("comando registrado dos veces")
	ErrBlacklistedUser  = errors.Sentinel("usuario en la blacklist")
	ErrBlacklistedGuild = errors.Sentinel("servidor en la blacklist")
)

// guildLeaveDelay lets the refusal reach the user before the bot leaves
const guildLeaveDelay = 2 * time.Second

// BlacklistLookup resolves blacklist entries; the database cache is the default
type BlacklistLookup func(id string, kind models.BlacklistType) (*models.BlacklistEntry, bool)

func cachedBlacklist(id string, kind models.BlacklistType) (*models.BlacklistEntry, bool) {
	var (
		ok    bool
		entry *models.BlacklistEntry
	)
	if kind == models.BlacklistTypeGuild {
		ok, entry = database.IsGuildBlacklisted(id)
	} else {
		ok, entry = database.IsUserBlacklisted(id)
	}
	return entry, ok
}

// CheckBlacklist returns ErrBlacklistedUser or ErrBlacklistedGuild with the
// matching entry as detail. Users are checked before guilds.
func CheckBlacklist(lookup BlacklistLookup, userID, guildID string) (*models.BlacklistEntry, error) {
	if e, ok := lookup(userID, models.BlacklistTypeUser); ok {
		return e, ErrBlacklistedUser
	}
	if guildID == "" {
		return nil, nil
	}
	if e, ok := lookup(guildID, models.BlacklistTypeGuild); ok {
		return e, ErrBlacklistedGuild
	}
	return nil, nil
}

// BlacklistEmbed is the refusal shown for a blacklist hit
func BlacklistEmbed(reason error, entry *models.BlacklistEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Acceso Denegado",
		Description: "Tu cuenta ha sido añadida a la blacklist y no puedes usar este bot.",
		Color:       ColorError,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if errors.Is(reason, ErrBlacklistedGuild) {
		embed.Title = "🚫 Servidor en Blacklist"
		embed.Description = "Este servidor ha sido añadido a la blacklist. El bot se retirará automáticamente."
	}
	if entry != nil && entry.Reason != "" {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Razón", Value: entry.Reason}}
	}
	return embed
}

// BlacklistMiddleware refuses commands from blacklisted users and leaves blacklisted guilds
func (c *ExtendedClient) BlacklistMiddleware(ctx *CommandContext) error {
	lookup := c.blacklist
	if lookup == nil {
		lookup = cachedBlacklist
	}
	guildID := ctx.Interaction.GuildID
	entry, err := CheckBlacklist(lookup, ctx.User().ID, guildID)
	if err == nil {
		return nil
	}

	if rerr := ctx.ReplyEphemeralEmbed(BlacklistEmbed(err, entry)); rerr != nil {
		logger.Debug(fmt.Sprintf("No se pudo avisar del bloqueo: %v", rerr), "BlacklistMiddleware")
	}

	if errors.Is(err, ErrBlacklistedGuild) {
		logger.Warn(fmt.Sprintf("Servidor blacklisted detectado: %s. Saliendo...", guildID), "BlacklistMiddleware")
		time.AfterFunc(guildLeaveDelay, func() {
			if lerr := ctx.Session.GuildLeave(guildID); lerr != nil {
				logger.Error(fmt.Sprintf("Error saliendo del servidor blacklisted %s: %v", guildID, lerr), "BlacklistMiddleware")
			}
		})
	} else {
		logger.Warn(fmt.Sprintf("Usuario blacklisted intentó usar comando: %s", ctx.User().ID), "BlacklistMiddleware")
	}
	return err
}
