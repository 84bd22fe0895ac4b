// Package utils provides /cogs: latency, status, runtime stats and a help index
// built from every registered command.
package utils

import (
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
)

// Cog holds what the utility commands share
type Cog struct {
	client *discord.ExtendedClient
}

// Register adds the /cogs command group
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{client: client}
	h := client.CommandHandler
	h.AddGlobalCommand(h.BuildCommandGroup(
		"cogs",
		"Información del bot",
		createPingCommand(),
		createStatusCommand(),
		c.createHelpCommand(),
		createStatsCommand(),
	))
	return c
}
