package utils

import (
	"fmt"

	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/mqtt"
)

// createStatusCommand creates the /cogs status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		statusHandler,
	)
}

// StatusText renders the service status lines
func StatusText(dbStatus string, mqttOnline bool, guilds, commands int) string {
	broker := "🔴 | Desconectado"
	if mqttOnline {
		broker = "🟢 | Conectado"
	}
	return fmt.Sprintf(
		"📊 **Estado del Bot**\n"+
			"• Bot: 🟢 Online\n"+
			"• Base de datos: %s\n"+
			"• MQTT: %s\n"+
			"• Servidores: %d\n"+
			"• Comandos: %d",
		dbStatus, broker, guilds, commands,
	)
}

// statusHandler handles the /cogs status command
func statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		dbStatus, _ := database.Get().GetStatus()
		mc := mqtt.Get()
		ctx.EditReply(StatusText(dbStatus, mc != nil && mc.IsConnected(), ctx.Client.GuildCount(), ctx.Client.Commands.Size()))
	}()
	return nil
}
