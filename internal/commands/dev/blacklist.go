package dev

import (
	"fmt"
	"sort"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func typeOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "tipo",
		Description: description,
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Usuario", Value: string(models.BlacklistTypeUser)},
			{Name: "Servidor", Value: string(models.BlacklistTypeGuild)},
		},
	}
}

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "id",
		Description: description,
		Required:    true,
	}
}

func (c *Cog) createBlacklistAddCommand() *discord.Command {
	return discord.NewCommand("add", "Añade un usuario o servidor a la blacklist", "dev", c.blacklistAddHandler).
		WithOptions(
			typeOption("Tipo de entrada a bloquear"),
			idOption("ID del usuario o servidor a bloquear"),
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "razon",
				Description: "Razón del bloqueo",
			},
		).AsOwner().RequiresDatabase()
}

func (c *Cog) createBlacklistRemoveCommand() *discord.Command {
	return discord.NewCommand("remove", "Elimina un usuario o servidor de la blacklist", "dev", c.blacklistRemoveHandler).
		WithOptions(idOption("ID del usuario o servidor a desbloquear")).
		AsOwner().RequiresDatabase()
}

func (c *Cog) createBlacklistListCommand() *discord.Command {
	return discord.NewCommand("list", "Muestra la blacklist", "dev", c.blacklistListHandler).
		WithOptions(typeOption("Tipo de entradas a listar")).
		AsOwner()
}

// EntryEmbed describes a blacklist entry
func EntryEmbed(title string, color int, e *models.BlacklistEntry) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tipo", Value: e.Type.Label(), Inline: true},
			{Name: "ID", Value: "`" + e.ID + "`", Inline: true},
			{Name: "Razón", Value: e.Reason},
			{Name: "Bloqueado", Value: fmt.Sprintf("<t:%d:R> por <@%s>", e.CreatedAt.Unix(), e.CreatedBy)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// EntryLines lists entries, oldest first
func EntryLines(entries []*models.BlacklistEntry) []string {
	sorted := append([]*models.BlacklistEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })
	lines := make([]string, len(sorted))
	for i, e := range sorted {
		lines[i] = fmt.Sprintf("`%s` <t:%d:d> %s", e.ID, e.CreatedAt.Unix(), discord.Truncate(e.Reason, 100))
	}
	return lines
}

func (c *Cog) blacklistAddHandler(ctx *discord.CommandContext) error {
	reason := ctx.GetStringOption("razon")
	if reason == "" {
		reason = "Sin razón especificada"
	}
	t := models.BlacklistType(ctx.GetStringOption("tipo"))
	id := ctx.GetStringOption("id")
	if config.Get().IsOwner(id) {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("No puedes bloquear a un dueño del bot."))
	}

	entry, err := database.AddToBlacklist(id, t, reason, ctx.User().ID)
	if err != nil {
		if errors.Is(err, database.ErrBlacklistEntryExists) {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(fmt.Sprintf("`%s` ya está en la blacklist.", id)))
		}
		logger.Error("Error añadiendo a blacklist: "+err.Error(), "DevBlacklist")
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "DevBlacklist")))
	}
	logger.Info(fmt.Sprintf("%s añadió %s %s a la blacklist", ctx.User().Username, t, id), "DevBlacklist")
	return ctx.ReplyEphemeralEmbed(EntryEmbed("🚫 Añadido a la blacklist", discord.ColorError, entry))
}

func (c *Cog) blacklistRemoveHandler(ctx *discord.CommandContext) error {
	id := ctx.GetStringOption("id")
	entry, ok := database.GetBlacklistCache().Get(id)
	if err := database.RemoveFromBlacklist(id); err != nil {
		if errors.Is(err, database.ErrBlacklistEntryNotFound) {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(fmt.Sprintf("`%s` no está en la blacklist.", id)))
		}
		logger.Error("Error eliminando de blacklist: "+err.Error(), "DevBlacklist")
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "DevBlacklist")))
	}
	logger.Info(fmt.Sprintf("%s eliminó %s de la blacklist", ctx.User().Username, id), "DevBlacklist")
	if !ok {
		return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed("Eliminado de la blacklist."))
	}
	return ctx.ReplyEphemeralEmbed(EntryEmbed("✅ Eliminado de la blacklist", discord.ColorSuccess, entry))
}

func (c *Cog) blacklistListHandler(ctx *discord.CommandContext) error {
	t := models.BlacklistType(ctx.GetStringOption("tipo"))
	lines := EntryLines(database.GetBlacklistCache().All(t))
	if len(lines) == 0 {
		lines = []string{"La blacklist está vacía."}
	}
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}
	return c.pages.PaginateEdit(ctx, discord.TextPages("Blacklist: "+t.Label(), discord.ColorInfo, lines))
}
