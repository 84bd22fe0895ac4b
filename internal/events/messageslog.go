package events

import (
	"github.com/PancyStudios/CogsBotGo/internal/commands/msglog"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// messageCacheSize is how many messages per channel the state keeps so
// deletions and edits can show the old content
const messageCacheSize = 200

// registerMessagesLog logs deleted and edited messages
func registerMessagesLog(client *discord.ExtendedClient) {
	if client.Session.State.MaxMessageCount < messageCacheSize {
		client.Session.State.MaxMessageCount = messageCacheSize
	}
	client.EventHandler.On("MessageDelete", onLoggedMessageDelete)
	client.EventHandler.On("MessageUpdate", onLoggedMessageUpdate)
}

// logged collects what the skip rules need from a cached message
func logged(s *discordgo.Session, msg *discordgo.Message) msglog.Logged {
	m := msglog.Logged{ChannelID: msg.ChannelID, Content: msg.Content}
	if msg.Author != nil {
		m.AuthorID = msg.Author.ID
		m.AuthorBot = msg.Author.Bot
	}
	if ch, err := s.State.Channel(msg.ChannelID); err == nil {
		m.CategoryID = ch.ParentID
		m.NSFW = ch.NSFW
	}
	return m
}

// logTarget returns the settings and log channel of a guild, or nil when
// nothing should be logged there
func logTarget(s *discordgo.Session, guildID string) (*msglog.Target, bool) {
	if guildID == "" || database.GlobalMessagesLogDM == nil {
		return nil, false
	}
	cfg, err := msglog.Load(guildID)
	if err != nil {
		logger.Warn(err.Error(), "MessagesLog")
		return nil, false
	}
	if cfg.Channel == "" {
		return nil, false
	}
	ch, err := s.State.Channel(cfg.Channel)
	if err != nil {
		return nil, false
	}
	return &msglog.Target{Config: cfg, Channel: ch}, true
}

func onLoggedMessageDelete(s *discordgo.Session, e *discordgo.MessageDelete) {
	defer errors.RecoverMiddleware()()

	before := e.BeforeDelete
	if before == nil {
		return
	}
	target, ok := logTarget(s, e.GuildID)
	if !ok || msglog.Skip(target.Config, msglog.Deleted, logged(s, before), target.Channel.NSFW) {
		return
	}
	embed := msglog.DeletedEmbed(before, authorColor(s, before))
	if _, err := s.ChannelMessageSendEmbed(target.Channel.ID, embed); err != nil {
		logger.Debug("No se pudo registrar un mensaje eliminado: "+err.Error(), "MessagesLog")
	}
}

func onLoggedMessageUpdate(s *discordgo.Session, e *discordgo.MessageUpdate) {
	defer errors.RecoverMiddleware()()

	before := e.BeforeUpdate
	if before == nil || e.Message == nil {
		return
	}
	target, ok := logTarget(s, e.GuildID)
	if !ok {
		return
	}
	m := logged(s, before)
	m.After = e.Content
	if msglog.Skip(target.Config, msglog.Edited, m, target.Channel.NSFW) {
		return
	}
	embed := msglog.EditedEmbed(before, e.GuildID, authorColor(s, before))
	if _, err := s.ChannelMessageSendEmbed(target.Channel.ID, embed); err != nil {
		logger.Debug("No se pudo registrar un mensaje editado: "+err.Error(), "MessagesLog")
	}
}

// authorColor is the color of the author's highest colored role
func authorColor(s *discordgo.Session, msg *discordgo.Message) int {
	if msg.Author == nil {
		return 0
	}
	return s.State.UserColor(msg.Author.ID, msg.ChannelID)
}
