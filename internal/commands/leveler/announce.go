package leveler

import (
	"bytes"
	"context"
	"fmt"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const roleReason = "Leveler: rol por nivel"

// MessageOf converts a gateway message into what the XP rules look at
func MessageOf(s *discordgo.Session, m *discordgo.Message) lvl.Message {
	msg := lvl.Message{
		GuildID:        m.GuildID,
		GuildName:      m.GuildID,
		ChannelID:      m.ChannelID,
		Content:        m.Content,
		HasAttachments: len(m.Attachments) > 0,
	}
	if m.Author != nil {
		msg.UserID = m.Author.ID
		msg.Username = m.Author.Username
		msg.IsBot = m.Author.Bot
	}
	if g, err := s.State.Guild(m.GuildID); err == nil {
		msg.GuildName = g.Name
	}
	return msg
}

// OnMessage grants XP for a guild message and announces level-ups
func (c *Cog) OnMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	msg := MessageOf(s, m.Message)
	res, err := c.svc.HandleMessage(msg)
	if err != nil {
		logger.Warn(fmt.Sprintf("No pude dar experiencia a %s: %v", msg.UserID, err), "Leveler")
		return
	}
	if res == nil || !res.LeveledUp {
		return
	}

	plan, err := c.svc.LevelUp(msg, res.Level, m.Author.Mention())
	if err != nil {
		logger.Warn(fmt.Sprintf("Subida de nivel incompleta para %s: %v", msg.UserID, err), "Leveler")
	}
	if plan == nil {
		return
	}
	if err := c.applyRoles(s, plan); err != nil {
		logger.Warn(err.Error(), "Leveler")
	}
	if plan.Announce {
		if err := c.announce(s, m, res, plan); err != nil {
			logger.Warn(fmt.Sprintf("No pude anunciar el nivel %d de %s: %v", plan.Level, plan.UserID, err), "Leveler")
		}
	}
}

// applyRoles adds and removes the roles linked to the new level. Links are stored by role name.
func (c *Cog) applyRoles(s *discordgo.Session, plan *lvl.LevelUpPlan) error {
	if len(plan.AddRoles) == 0 && len(plan.RemoveRoles) == 0 {
		return nil
	}
	guild, err := s.State.Guild(plan.GuildID)
	if err != nil {
		if guild, err = s.Guild(plan.GuildID); err != nil {
			return errors.WrapIf(err, "obtener servidor")
		}
	}
	var errs []error
	for _, name := range plan.AddRoles {
		if role := discord.FindRoleByName(guild, name); role != nil {
			errs = append(errs, s.GuildMemberRoleAdd(plan.GuildID, plan.UserID, role.ID, discordgo.WithAuditLogReason(roleReason)))
		}
	}
	for _, name := range plan.RemoveRoles {
		if role := discord.FindRoleByName(guild, name); role != nil {
			errs = append(errs, s.GuildMemberRoleRemove(plan.GuildID, plan.UserID, role.ID, discordgo.WithAuditLogReason(roleReason)))
		}
	}
	return errors.WrapIf(errors.Combine(errs...), "roles por nivel")
}

// announceChannel resolves where the announcement goes
func announceChannel(s *discordgo.Session, m *discordgo.MessageCreate, plan *lvl.LevelUpPlan) (string, error) {
	if plan.Private {
		ch, err := s.UserChannelCreate(plan.UserID)
		if err != nil {
			return "", errors.WrapIf(err, "abrir mensaje directo")
		}
		return ch.ID, nil
	}
	if plan.ChannelID != "" {
		return plan.ChannelID, nil
	}
	return m.ChannelID, nil
}

func (c *Cog) announce(s *discordgo.Session, m *discordgo.MessageCreate, res *lvl.Result, plan *lvl.LevelUpPlan) error {
	channelID, err := announceChannel(s, m, plan)
	if err != nil {
		return err
	}
	mentions := &discordgo.MessageAllowedMentions{}
	if plan.Mention && !plan.Private {
		mentions.Users = []string{plan.UserID}
	}

	if plan.TextOnly || c.cards == nil {
		_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embed:           &discordgo.MessageEmbed{Description: "**" + plan.Text() + "**", Color: discord.ColorSuccess},
			AllowedMentions: mentions,
		})
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()
	imgs := c.assets.Load(ctx, res.User.LevelupBackground, m.Author.AvatarURL("128"))
	card, err := c.cards.Levelup(lvl.LevelupCard{User: res.User, Level: plan.Level, Background: imgs[0], Avatar: imgs[1]})
	if err != nil {
		return err
	}
	content := plan.Caption()
	if !plan.Mention && !plan.Private {
		content = fmt.Sprintf("**%s**", plan.Caption())
	}
	_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		Files:           []*discordgo.File{{Name: fmt.Sprintf("levelup_%s.png", plan.UserID), ContentType: "image/png", Reader: bytes.NewReader(card)}},
		AllowedMentions: mentions,
	})
	return err
}
