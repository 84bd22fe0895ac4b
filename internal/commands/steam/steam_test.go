package steam

import (
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/steam"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldValue(embed *discordgo.MessageEmbed, name string) string {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestProfileEmbed(t *testing.T) {
	p := &steam.Profile{
		ID: steam.ID(76561197960287930),
		Summary: steam.Summary{
			PersonaName:              "Rabscuttle",
			CommunityVisibilityState: 3,
			PersonaState:             0,
			LastLogoff:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
			LocCountryCode:           "US",
		},
		Bans:  steam.Bans{EconomyBan: "none"},
		Level: 12,
	}
	embed := ProfileEmbed(p, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Rabscuttle", embed.Title)
	assert.Equal(t, steam.ColorOffline, embed.Color)
	assert.Equal(t, "STEAM_1:0:11101\n[U:1:22202]", fieldValue(embed, "SteamID"))
	assert.Equal(t, ":flag_us:", fieldValue(embed, "País"))
	assert.Equal(t, "12", fieldValue(embed, "Nivel"))
	assert.Contains(t, fieldValue(embed, "Última conexión"), "atrás")
	assert.Empty(t, fieldValue(embed, "Baneo de intercambio"))
}

func TestServerEmbed(t *testing.T) {
	embed := ServerEmbed(&steam.ServerInfo{
		Name: "srv", Game: "Team Fortress", AppID: 440,
		Players: 10, Bots: 2, MaxPlayers: 24, Map: "ctf_2fort", Address: "1.2.3.4:27015",
	})
	require.NotEmpty(t, embed.Fields)
	assert.Equal(t, "8/24 (+2 bots)", fieldValue(embed, "Jugadores"))
	assert.Equal(t, "ctf_2fort", fieldValue(embed, "Mapa"))
	assert.Contains(t, fieldValue(embed, "Juego"), "/app/440")
	assert.Equal(t, "—", fieldValue(embed, "Versión"))
}
