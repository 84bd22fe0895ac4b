package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommands() map[string]*discord.Command {
	hidden := discord.NewCommand("add", "Añade a la lista negra", "dev", nil)
	hidden.OwnerOnly = true
	return map[string]*discord.Command{
		"profile":           discord.NewCommand("profile", "Tarjeta de perfil", "leveler", nil),
		"lvlset.rank.bg":    discord.NewCommand("bg", "Cambia el fondo", "leveler", nil),
		"weather":           discord.NewCommand("weather", "Clima actual", "weather", nil),
		"dev.blacklist.add": hidden,
	}
}

func TestHelpLines(t *testing.T) {
	got := HelpLines(testCommands(), "")
	want := []string{
		"**leveler**",
		"`/lvlset rank bg` - Cambia el fondo",
		"`/profile` - Tarjeta de perfil",
		"**weather**",
		"`/weather` - Clima actual",
	}
	assert.Equal(t, want, got)
}

func TestHelpLinesCategory(t *testing.T) {
	got := HelpLines(testCommands(), "weather")
	require.Len(t, got, 2)
	assert.Equal(t, "`/weather` - Clima actual", got[1])
	assert.Empty(t, HelpLines(testCommands(), "dev"))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"leveler", "weather"}, Categories(testCommands()))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 segundos"},
		{90 * time.Second, "1 minutos, 30 segundos"},
		{26*time.Hour + 5*time.Second, "1 días, 2 horas, 5 segundos"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	text := StatusText("🟢 | Conectado", false, 3, 40)
	assert.Contains(t, text, "• MQTT: 🔴 | Desconectado")
	assert.Contains(t, text, "• Servidores: 3")
	assert.Contains(t, text, "• Comandos: 40")
}

func TestStatsEmbed(t *testing.T) {
	e := StatsEmbed(Snapshot{Version: "1.0", Alloc: 2048, Members: 12345, Uptime: time.Minute})
	require.Len(t, e.Fields, 9)
	assert.Equal(t, "2.0 KiB", e.Fields[3].Value)
	assert.Equal(t, "1 minutos", e.Fields[5].Value)
	assert.Equal(t, "12,345", e.Fields[7].Value)
}

func TestPingText(t *testing.T) {
	tests := []struct {
		name string
		db   time.Duration
		want string
	}{
		{"online", 3 * time.Millisecond, "• Base de datos: 3ms"},
		{"offline", -1, "• Base de datos: sin conexión"},
	}
	for _, tt := range tests {
		got := PingText(40*time.Millisecond, 120*time.Millisecond, tt.db)
		assert.Contains(t, got, "• Gateway: 40ms")
		assert.Contains(t, got, "• API: 120ms")
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("%s: PingText() = %q, want suffix %q", tt.name, got, tt.want)
		}
	}
}
