package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
)

func createPingCommand() *discord.Command {
	return discord.NewCommand("ping", "Comprueba la latencia del bot", "utils", pingHandler)
}

// PingText renders the measured latencies. A negative db means the database is offline.
func PingText(gateway, rest, db time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏓 Pong!\n• Gateway: %dms\n• API: %dms\n", gateway.Milliseconds(), rest.Milliseconds())
	if db < 0 {
		b.WriteString("• Base de datos: sin conexión")
	} else {
		fmt.Fprintf(&b, "• Base de datos: %dms", db.Milliseconds())
	}
	return b.String()
}

// pingHandler times the deferred response as the REST round trip
func pingHandler(ctx *discord.CommandContext) error {
	start := time.Now()
	if err := ctx.Defer(); err != nil {
		return err
	}
	rest := time.Since(start)

	db := time.Duration(-1)
	if d := database.Get(); d.Connected() {
		if took, err := d.Ping(); err == nil {
			db = took
		}
	}
	return ctx.EditReply(PingText(ctx.Client.Session.HeartbeatLatency(), rest, db))
}
