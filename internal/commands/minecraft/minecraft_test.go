package minecraft

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/minecraft"
	"github.com/stretchr/testify/assert"
)

func TestSkinEmbed(t *testing.T) {
	p := &minecraft.Player{Name: "Notch", UUID: "069a79f444e94726a5befca90e38aaf5"}
	embed := SkinEmbed(p, true)
	assert.Equal(t, "https://namemc.com/profile/Notch", embed.URL)
	assert.True(t, strings.HasSuffix(embed.Thumbnail.URL, "?overlay"))
	assert.Contains(t, embed.Description, p.Skin())
}

func TestHistoryTable(t *testing.T) {
	out := HistoryTable([]minecraft.NameChange{
		{Name: "first"},
		{Name: "second", ChangedToAt: time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC).UnixMilli()},
	})
	assert.Contains(t, out, "Inicial")
	assert.Contains(t, out, "01.05.2020 12:00:00")
}

func TestServerEmbed(t *testing.T) {
	embed := ServerEmbed(&minecraft.ServerStatus{
		Address: "mc.example.com:25565", Online: 3, Max: 20,
		Sample: []string{"a", "b"}, Version: "1.20.4", Protocol: 765,
		Latency: 42 * time.Millisecond,
	})
	assert.Equal(t, "3/20\na, b", embed.Fields[0].Value)
	assert.Equal(t, "42 ms", embed.Fields[2].Value)
	assert.Contains(t, embed.Description, "Sin descripción")
}

func TestStatusLines(t *testing.T) {
	got := StatusLines([]minecraft.ServiceStatus{{Service: "api.mojang.com", Status: "green"}})
	assert.Equal(t, "**api.mojang.com**: 💚 **OK**", got)
}

func TestCapeFileName(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "Notch.png", capeFileName(&minecraft.Player{Name: "Notch"}, png))
}
