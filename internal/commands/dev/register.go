// Package dev has the owner-only maintenance commands.
package dev

import (
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
)

// Cog holds the paginator for listings
type Cog struct {
	pages *discord.Interactive
}

// Register adds /dev blacklist add|remove|list to the dev guild
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{pages: client.Interactive}
	h := client.CommandHandler

	blacklist := []*discord.Command{
		c.createBlacklistAddCommand(),
		c.createBlacklistRemoveCommand(),
		c.createBlacklistListCommand(),
	}
	for _, cmd := range blacklist {
		cmd.AsDev()
	}

	devGroup := h.BuildCommandGroup("dev", "Comandos de mantenimiento")
	devGroup.Options = append(devGroup.Options, h.BuildSubcommandGroup("dev", "blacklist", "Usuarios y servidores bloqueados", blacklist...))
	h.AddDevCommand(devGroup)
	return c
}
