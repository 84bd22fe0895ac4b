package captcha

import (
	"context"
	"fmt"

	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// OnMessage hands the message to a running challenge. It reports whether a challenge consumed it.
func (c *Cog) OnMessage(m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.Bot {
		return false
	}
	return c.manager.DispatchMessage(m.ChannelID, m.Author.ID, m.Content, m.ID)
}

// OnReactionAdd reloads a challenge when its member reacts with the reload emoji
func (c *Cog) OnReactionAdd(r *discordgo.MessageReactionAdd) bool {
	return c.manager.DispatchReaction(r.MessageID, r.UserID, r.Emoji.Name)
}

// OnMemberAdd challenges the new member in the background
func (c *Cog) OnMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	member := MemberOf(s, m.Member)
	go func() {
		defer errors.RecoverMiddleware()()

		outcome, err := c.manager.HandleJoin(context.Background(), member)
		if err != nil {
			logger.Warn(fmt.Sprintf("Captcha de %s en %s: %v", member.UserID, member.GuildID, err), "Captcha")
			return
		}
		if outcome != "" {
			logger.Debug(fmt.Sprintf("Captcha de %s en %s: %s", member.UserID, member.GuildID, outcome), "Captcha")
		}
	}()
}

// OnMemberRemove ends the challenge of a member who left
func (c *Cog) OnMemberRemove(m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil {
		return
	}
	c.manager.DispatchLeave(m.GuildID, m.User.ID)
}
