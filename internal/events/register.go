// Package events wires the gateway events to the cogs and forwards the
// interesting ones to the event sinks.
package events

import (
	"fmt"

	"github.com/PancyStudios/CogsBotGo/internal/commands"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Presence is the activity shown under the bot name
const Presence = "📈 /profile · /cogs help"

// dispatcher routes gateway events to the cogs that react to them. A nil cog is skipped.
type dispatcher struct {
	commands.Cogs
	sinks []Sink
}

// BotEvent is published on bot/ready
type BotEvent struct {
	Username string `json:"username"`
	Guilds   int    `json:"guilds"`
	Shard    int    `json:"shard"`
}

// RegisterAll attaches every handler to the client. Events published by
// the handlers go to sinks.
func RegisterAll(client *discord.ExtendedClient, cogs commands.Cogs, sinks ...Sink) {
	d := dispatcher{Cogs: cogs, sinks: sinks}
	logger.System("📋 Registrando eventos del bot...", "Events")

	h := client.EventHandler
	h.On("Ready", d.onReady)
	registerShardEvents(client)
	h.On("GuildCreate", d.onGuildCreate)
	h.On("GuildDelete", d.onGuildDelete)
	h.On("GuildMemberAdd", d.onGuildMemberAdd)
	h.On("GuildMemberRemove", d.onGuildMemberRemove)
	h.On("MessageCreate", d.onMessageCreate)
	h.On("MessageReactionAdd", d.onReactionAdd)
	registerMessagesLog(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}

func (d dispatcher) publish(topic string, data interface{}) {
	fanOut(d.sinks, topic, data)
}

func (d dispatcher) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("✅ Bot conectado: %s (%d servidores)", r.User.Username, len(r.Guilds)), "Ready")

	if err := s.UpdateGameStatus(0, Presence); err != nil {
		logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
	}
	shard := 0
	if r.Shard != nil {
		shard = r.Shard[0]
	}
	d.publish("bot/ready", BotEvent{Username: r.User.Username, Guilds: len(r.Guilds), Shard: shard})
}
