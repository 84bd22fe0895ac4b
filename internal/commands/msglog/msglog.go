// Package msglog logs deleted and edited messages to a configured channel.
package msglog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson"
)

// Kind is the message event being logged
type Kind int

const (
	Deleted Kind = iota
	Edited
)

// Defaults returns the settings of a guild that never configured logging
func Defaults(guildID string) *models.MessagesLogConfig {
	return &models.MessagesLogConfig{GuildID: guildID, Deletion: true, Editing: true}
}

// Load reads the guild settings, falling back to defaults
func Load(guildID string) (*models.MessagesLogConfig, error) {
	if database.GlobalMessagesLogDM == nil {
		return nil, database.ErrNotConnected
	}
	cfg, err := database.GlobalMessagesLogDM.Get(bson.M{"guild_id": guildID})
	if err != nil {
		return nil, errors.WrapIf(err, "leer configuración de registro")
	}
	if cfg == nil {
		return Defaults(guildID), nil
	}
	return cfg, nil
}

func save(cfg *models.MessagesLogConfig) error {
	_, err := database.GlobalMessagesLogDM.Set(bson.M{"guild_id": cfg.GuildID}, cfg)
	return errors.WrapIf(err, "guardar configuración de registro")
}

// Target is where a guild sends its log
type Target struct {
	Config  *models.MessagesLogConfig
	Channel *discordgo.Channel
}

// Logged is the part of a message the skip rules look at
type Logged struct {
	ChannelID  string
	CategoryID string
	AuthorID   string
	AuthorBot  bool
	// Content is the text before the event, After the text after an edit
	Content string
	After   string
	NSFW    bool
}

// Skip reports whether an event must not reach the log channel. logNSFW is
// whether the log channel itself is age restricted.
func Skip(cfg *models.MessagesLogConfig, kind Kind, m Logged, logNSFW bool) bool {
	switch {
	case cfg == nil || cfg.Channel == "":
		return true
	case m.CategoryID != "" && slices.Contains(cfg.IgnoredCategories, m.CategoryID):
		return true
	case kind == Deleted && !cfg.Deletion, kind == Edited && !cfg.Editing:
		return true
	case slices.Contains(cfg.IgnoredChannels, m.ChannelID), slices.Contains(cfg.IgnoredUsers, m.AuthorID):
		return true
	case m.Content == "", m.AuthorBot:
		return true
	case kind == Edited && (m.After == "" || m.After == m.Content):
		return true
	case m.NSFW && !logNSFW:
		return true
	}
	return false
}

// toggle removes id from list when present and appends it otherwise.
// It reports whether id ends up in the list.
func toggle(list []string, id string) ([]string, bool) {
	if i := slices.Index(list, id); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1), false
	}
	return append(slices.Clone(list), id), true
}

func attachmentsField(msg *discordgo.Message) *discordgo.MessageEmbedField {
	if len(msg.Attachments) == 0 {
		return nil
	}
	lines := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		lines[i] = fmt.Sprintf("[%s](%s)", a.Filename, a.URL)
	}
	return &discordgo.MessageEmbedField{Name: "Adjuntos", Value: discord.Truncate(strings.Join(lines, "\n"), discord.MaxFieldLength)}
}

func baseEmbed(title string, msg *discordgo.Message, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: discord.Truncate(msg.Content, discord.MaxDescriptionLength),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: " + msg.ID + " • Enviado"},
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.Format(time.RFC3339)
	}
	if msg.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: msg.Author.Username, IconURL: msg.Author.AvatarURL("64")}
	}
	return embed
}

// DeletedEmbed describes a deleted message
func DeletedEmbed(msg *discordgo.Message, color int) *discordgo.MessageEmbed {
	embed := baseEmbed("Mensaje eliminado", msg, color)
	if f := attachmentsField(msg); f != nil {
		embed.Fields = append(embed.Fields, f)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Canal", Value: "<#" + msg.ChannelID + ">"})
	return embed
}

// EditedEmbed describes a message before its edit, linking to the current one
func EditedEmbed(before *discordgo.Message, guildID string, color int) *discordgo.MessageEmbed {
	embed := baseEmbed("Mensaje editado (antes)", before, color)
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Ahora",
		Value: fmt.Sprintf("[Ver mensaje](https://discord.com/channels/%s/%s/%s)", guildID, before.ChannelID, before.ID),
	})
	if f := attachmentsField(before); f != nil {
		embed.Fields = append(embed.Fields, f)
	}
	return embed
}
