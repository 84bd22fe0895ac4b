package captcha

import (
	"testing"

	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSettingsEmbed(t *testing.T) {
	cfg := cpt.Defaults("g1")
	cfg.Channel = cpt.ChannelDM
	cfg.AutoRoles = []string{"r1", "r2"}
	embed := SettingsEmbed(cpt.NewSettings(cfg))

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "Mensaje directo", values["Canal"])
	assert.Equal(t, "Ninguno", values["Registros"])
	assert.Equal(t, "<@&r1>, <@&r2>", values["Roles automáticos"])
	assert.Equal(t, "5 min", values["Tiempo"])
}

func TestSettingsEmbedChannel(t *testing.T) {
	embed := SettingsEmbed(cpt.NewSettings(models.CaptchaConfig{GuildID: "g1", Channel: "c1", LogsChannel: "c2"}))
	assert.Equal(t, "<#c1>", embed.Fields[2].Value)
	assert.Equal(t, "<#c2>", embed.Fields[3].Value)
}

func TestOutcomeText(t *testing.T) {
	tests := map[cpt.Outcome]string{
		cpt.OutcomePassed:  "superado",
		cpt.OutcomeTimeout: "sin respuesta",
		cpt.OutcomeSkipped: "omitido",
		cpt.OutcomeError:   "error",
	}
	for o, want := range tests {
		if got := OutcomeText(o); got != want {
			t.Errorf("OutcomeText(%v) = %v, want %v", o, got, want)
		}
	}
}

func TestKickEmbed(t *testing.T) {
	embed := KickEmbed("Mi Servidor", "No completó el captcha a tiempo")
	assert.Equal(t, "Has sido expulsado de Mi Servidor.", embed.Title)
	assert.Equal(t, discord.ColorError, embed.Color)
	if assert.Len(t, embed.Fields, 1) {
		assert.Equal(t, "Motivo:", embed.Fields[0].Name)
		assert.Equal(t, "No completó el captcha a tiempo", embed.Fields[0].Value)
	}
}
