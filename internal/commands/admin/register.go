// Package admin provides server administration helpers: member pruning,
// mass nicknames, emoji management and invites.
package admin

import (
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/patrickmn/go-cache"
)

// nickCooldown limits mass nickname changes per guild
const nickCooldown = 300 * time.Second

// Cog holds what the admin commands share
type Cog struct {
	pages     *discord.Interactive
	cdn       *httpx.Client
	cooldowns *cache.Cache
}

// Register adds /admin and its emoji subgroup
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{
		pages:     client.Interactive,
		cdn:       httpx.New("Discord CDN"),
		cooldowns: cache.New(nickCooldown, time.Minute),
	}
	h := client.CommandHandler

	group := h.BuildCommandGroup("admin", "Herramientas de administración",
		c.createPruneCommand(),
		c.createMassNickCommand(),
		c.createResetNicksCommand(),
		c.createInviteCommand(),
		c.createSelfInviteCommand(),
	)
	group.Options = append(group.Options,
		h.BuildSubcommandGroup("admin", "emoji", "Emojis del servidor", c.emojiCommands()...),
	)
	h.AddGlobalCommand(group)
	return c
}

// cooldown reports how long key must still wait, starting the wait when it is free
func (c *Cog) cooldown(key string) time.Duration {
	if exp, found := c.cooldowns.Get(key); found {
		return time.Until(exp.(time.Time)).Round(time.Second)
	}
	c.cooldowns.SetDefault(key, time.Now().Add(nickCooldown))
	return 0
}

func cooldownMessage(wait time.Duration) string {
	return fmt.Sprintf("Este comando se puede usar de nuevo en %s.", wait)
}
