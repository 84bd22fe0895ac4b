package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

// Snapshot is the runtime state shown by /cogs stats
type Snapshot struct {
	Version    string
	GoVersion  string
	Alloc      uint64
	Goroutines int
	CPUs       int
	Uptime     time.Duration
	Guilds     int
	Members    int
	Commands   int
}

// createStatsCommand creates the /cogs stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Muestra estadísticas del bot",
		"utils",
		statsHandler,
	)
}

func takeSnapshot(client *discord.ExtendedClient) Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	snap := Snapshot{
		Version:    config.Version,
		GoVersion:  strings.TrimPrefix(runtime.Version(), "go"),
		Alloc:      m.Alloc,
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		Uptime:     time.Since(client.StartTime),
		Guilds:     client.GuildCount(),
		Commands:   client.Commands.Size(),
	}
	for _, guild := range client.Session.State.Guilds {
		snap.Members += guild.MemberCount
	}
	return snap
}

// StatsEmbed renders a snapshot
func StatsEmbed(s Snapshot) *discordgo.MessageEmbed {
	field := func(name, value string) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true}
	}
	return &discordgo.MessageEmbed{
		Title: "📊 Estadísticas del Bot",
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("🤖 Versión del Bot", s.Version),
			field("🐹 Versión de Go", s.GoVersion),
			field("📚 Versión de DiscordGo", discordgo.VERSION),
			field("🖥 Uso de RAM", humanize.IBytes(s.Alloc)),
			field("⚙ Goroutines", fmt.Sprintf("%d / %d CPUs", s.Goroutines, s.CPUs)),
			field("⏱ Uptime", formatDuration(s.Uptime)),
			field("🏠 Servidores", humanize.Comma(int64(s.Guilds))),
			field("👥 Miembros", humanize.Comma(int64(s.Members))),
			field("🧩 Comandos", humanize.Comma(int64(s.Commands))),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "CogsBot Go"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// statsHandler handles the /cogs stats command
func statsHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEmbed(StatsEmbed(takeSnapshot(ctx.Client)))
}

// formatDuration formats a duration as days, hours, minutes and seconds, skipping zeros
func formatDuration(dur time.Duration) string {
	units := []struct {
		n    int
		name string
	}{
		{int(dur.Hours() / 24), "días"},
		{int(dur.Hours()) % 24, "horas"},
		{int(dur.Minutes()) % 60, "minutos"},
		{int(dur.Seconds()) % 60, "segundos"},
	}
	var parts []string
	for _, u := range units {
		if u.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", u.n, u.name))
		}
	}
	if len(parts) == 0 {
		return "0 segundos"
	}
	return strings.Join(parts, ", ")
}
