// Package captcha provides /captcha: guild settings plus manual challenges.
package captcha

import (
	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
)

// Cog holds what the captcha commands share
type Cog struct {
	manager *cpt.Manager
	pages   *discord.Interactive
}

// Register adds /captcha
func Register(client *discord.ExtendedClient, manager *cpt.Manager) *Cog {
	c := &Cog{manager: manager, pages: client.Interactive}
	h := client.CommandHandler

	group := h.BuildCommandGroup("captcha", "Verificación de nuevos miembros",
		c.createChallengeCommand(),
		c.createSkipCommand(),
	)
	group.Options = append(group.Options,
		h.BuildSubcommandGroup("captcha", "set", "Ajustes del captcha", c.settingsCommands()...),
	)
	h.AddGlobalCommand(group)
	return c
}
