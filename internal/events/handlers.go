package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/internal/commands/personalroles"
	"github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// GuildEvent is published on guild/join and guild/leave
type GuildEvent struct {
	GuildID string `json:"guild_id"`
	Name    string `json:"name,omitempty"`
	Members int    `json:"members,omitempty"`
}

// freshJoin tells a real join apart from the GuildCreate replayed for every guild on connect
func freshJoin(joinedAt, now time.Time) bool {
	return !joinedAt.Before(now.Add(-10 * time.Second))
}

// WelcomeEmbed is sent to the system channel of a new guild
func WelcomeEmbed(botName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🎉",
		Description: fmt.Sprintf("Hola, soy **%s**. Usa `/cogs help` para ver todos mis comandos.", botName),
		Color:       discord.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📈 Niveles", Value: "`/profile`, `/rank` y `/top`", Inline: true},
			{Name: "🛡 Captcha", Value: "Configura `/captcha set`", Inline: true},
			{Name: "🧰 Administración", Value: "`/admin` e `/info`", Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "¡Disfruta de " + botName + "!"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (d dispatcher) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if !freshJoin(g.JoinedAt, time.Now()) {
		return
	}
	logger.Info(fmt.Sprintf("➕ Agregado a %s (%s), %d miembros", g.Name, g.ID, g.MemberCount), "Guild")
	d.publish("guild/join", GuildEvent{GuildID: g.ID, Name: g.Name, Members: g.MemberCount})

	if g.SystemChannelID == "" || s.State.User == nil {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, WelcomeEmbed(s.State.User.Username)); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
	}
}

// onGuildDelete erases the captcha settings of a guild that removed the
// bot. Outages also fire it, marked Unavailable, and keep everything.
func (d dispatcher) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("Servidor %s no disponible", g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Removido del servidor %s", g.ID), "Guild")
	d.publish("guild/leave", GuildEvent{GuildID: g.ID})

	if database.GlobalCaptchaDM != nil {
		if err := captcha.NewDataManagerStore(database.GlobalCaptchaDM).Erase(g.ID); err != nil {
			logger.Warn(fmt.Sprintf("No pude borrar el captcha de %s: %v", g.ID, err), "Guild")
		}
	}
}

func (d dispatcher) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	if d.Captcha != nil {
		d.Captcha.OnMemberAdd(s, m)
	}
	if database.GlobalPersonalGuildDM != nil && !m.User.Bot {
		if err := personalroles.RestoreOnJoin(s, m.GuildID, m.User.ID); err != nil {
			logger.Warn(fmt.Sprintf("No pude devolver el rol personal de %s: %v", m.User.ID, err), "Member")
		}
	}
}

func (d dispatcher) onGuildMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if d.Captcha != nil && m.Member != nil && m.User != nil {
		d.Captcha.OnMemberRemove(m)
	}
}

// onMessageCreate feeds a message to the captcha first. Answers to a
// challenge earn no experience and are never sent to cleverbot.
func (d dispatcher) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer errors.RecoverMiddleware()()

	if m.Author == nil || m.Author.Bot {
		return
	}
	if d.Captcha != nil && d.Captcha.OnMessage(m) {
		return
	}
	if d.Leveler != nil && m.GuildID != "" {
		d.Leveler.OnMessage(s, m)
	}
	if d.Cleverbot != nil {
		d.Cleverbot.OnMessage(s, m)
	}
}

// onReactionAdd lets challenged members ask for a new code
func (d dispatcher) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if d.Captcha == nil || (s.State.User != nil && r.UserID == s.State.User.ID) {
		return
	}
	d.Captcha.OnReactionAdd(r)
}
