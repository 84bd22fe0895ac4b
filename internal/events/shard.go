package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// shardTracker remembers when the gateway dropped so the resume log can say how long it was out
type shardTracker struct {
	downSince time.Time
}

// registerShardEvents logs gateway disconnects and resumes
func registerShardEvents(client *discord.ExtendedClient) {
	t := &shardTracker{}
	client.EventHandler.On("Disconnect", t.onDisconnect)
	client.EventHandler.On("Resumed", t.onResumed)
}

func (t *shardTracker) onDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	t.downSince = time.Now()
	logger.Warn(fmt.Sprintf("🔌 Shard %d desconectado.", s.ShardID), "Shard")
}

func (t *shardTracker) onResumed(s *discordgo.Session, _ *discordgo.Resumed) {
	logger.Success(ResumeMessage(s.ShardID, t.downSince), "Shard")
	t.downSince = time.Time{}
}

// ResumeMessage describes a resumed shard, with the outage length when known
func ResumeMessage(shard int, downSince time.Time) string {
	if downSince.IsZero() {
		return fmt.Sprintf("✅ Shard %d reanudado.", shard)
	}
	return fmt.Sprintf("✅ Shard %d reanudado tras %s sin conexión.", shard, time.Since(downSince).Round(time.Second))
}
