package captcha

import (
	"bytes"
	"fmt"
	"time"

	"emperror.dev/errors"
	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// UI runs the side effects of challenges on a Discord session
type UI struct {
	s *discordgo.Session
}

// NewUI creates the Discord implementation of the challenge UI
func NewUI(s *discordgo.Session) *UI {
	return &UI{s: s}
}

var _ cpt.UI = (*UI)(nil)

func (u *UI) ResolveChannel(m cpt.Member, channel string) (string, error) {
	if channel != cpt.ChannelDM {
		return channel, nil
	}
	ch, err := u.s.UserChannelCreate(m.UserID)
	if err != nil {
		return "", errors.WrapIf(err, "abrir mensaje directo")
	}
	return ch.ID, nil
}

func (u *UI) SendChallenge(c *cpt.Challenge, p cpt.Prompt) (string, error) {
	embed := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
		Color:       discord.ColorInfo,
		Author:      &discordgo.MessageEmbedAuthor{Name: p.Author, IconURL: c.Member.AvatarURL},
		Footer:      &discordgo.MessageEmbedFooter{Text: p.Footer},
	}
	msg := &discordgo.MessageSend{Content: p.Content, Embeds: []*discordgo.MessageEmbed{embed}}
	if p.Image != nil {
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://captcha.png"}
		msg.Files = []*discordgo.File{{Name: "captcha.png", ContentType: "image/png", Reader: bytes.NewReader(p.Image)}}
	} else {
		embed.Description += "\n```\n" + p.Text + "\n```"
	}
	sent, err := u.s.ChannelMessageSendComplex(c.ChannelID, msg)
	if err != nil {
		return "", err
	}
	if err := u.s.MessageReactionAdd(c.ChannelID, sent.ID, cpt.ReloadEmoji); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo añadir la reacción de recarga: %v", err), "Captcha")
	}
	return sent.ID, nil
}

func (u *UI) DeleteMessage(channelID, messageID string) error {
	return u.s.ChannelMessageDelete(channelID, messageID)
}

func (u *UI) SendTemporary(channelID, content string, ttl time.Duration) {
	msg, err := u.s.ChannelMessageSend(channelID, content)
	if err != nil {
		return
	}
	time.AfterFunc(ttl, func() {
		_ = u.s.ChannelMessageDelete(channelID, msg.ID)
	})
}

func (u *UI) Log(channelID, messageID, content string) (string, error) {
	if messageID != "" {
		if msg, err := u.s.ChannelMessageEdit(channelID, messageID, content); err == nil {
			return msg.ID, nil
		}
	}
	msg, err := u.s.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (u *UI) AddRoles(guildID, userID string, roleIDs []string, reason string) error {
	for _, id := range roleIDs {
		if err := u.s.GuildMemberRoleAdd(guildID, userID, id, discordgo.WithAuditLogReason(reason)); err != nil {
			return errors.WrapIf(err, "dar rol "+id)
		}
	}
	return nil
}

func (u *UI) RemoveRoles(guildID, userID string, roleIDs []string, reason string) error {
	for _, id := range roleIDs {
		if err := u.s.GuildMemberRoleRemove(guildID, userID, id, discordgo.WithAuditLogReason(reason)); err != nil {
			return errors.WrapIf(err, "quitar rol "+id)
		}
	}
	return nil
}

// KickEmbed is the notice a member gets before being kicked from guildName
func KickEmbed(guildName, reason string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Has sido expulsado de %s.", guildName),
		Color:  discord.ColorError,
		Fields: []*discordgo.MessageEmbedField{{Name: "Motivo:", Value: reason}},
	}
}

// Kick DMs the member the reason and then kicks them. A closed DM does not stop the kick.
func (u *UI) Kick(m cpt.Member, reason string) error {
	if ch, err := u.s.UserChannelCreate(m.UserID); err == nil {
		if _, err := u.s.ChannelMessageSendEmbed(ch.ID, KickEmbed(m.GuildName, reason)); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo avisar a %s de la expulsión: %v", m.UserID, err), "Captcha")
		}
	}
	return u.s.GuildMemberDeleteWithReason(m.GuildID, m.UserID, reason)
}

func (u *UI) Notify(c *cpt.Challenge, content string) error {
	if ch, err := u.s.UserChannelCreate(c.Member.UserID); err == nil {
		if _, err := u.s.ChannelMessageSend(ch.ID, content); err == nil {
			return nil
		}
	}
	_, err := u.s.ChannelMessageSend(c.ChannelID, c.Member.Mention()+" "+content)
	return err
}

// MemberOf converts a discordgo member into a challenge member
func MemberOf(s *discordgo.Session, m *discordgo.Member) cpt.Member {
	guildName := m.GuildID
	if g, err := s.State.Guild(m.GuildID); err == nil {
		guildName = g.Name
	}
	return cpt.Member{
		GuildID:   m.GuildID,
		GuildName: guildName,
		UserID:    m.User.ID,
		Username:  m.User.Username,
		AvatarURL: m.AvatarURL("128"),
		IsBot:     m.User.Bot,
	}
}
