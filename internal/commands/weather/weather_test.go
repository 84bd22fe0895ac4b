package weather

import (
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastEmbeds(t *testing.T) {
	f := &weather.Forecast{Daily: weather.Block{Data: make([]weather.DataPoint, 10)}}
	pages := ForecastEmbeds(weather.Place{DisplayName: "Madrid", Lat: "40.4", Lon: "-3.7"}, f, "si")
	require.Len(t, pages, weather.ForecastDays)
	assert.Equal(t, "Clima en Madrid", pages[0].Title)
	assert.Contains(t, pages[0].Description, "40.4,-3.7")
	assert.Contains(t, pages[7].Footer.Text, "Página 8/8")
}

func TestCurrentEmbed(t *testing.T) {
	f := &weather.Forecast{Currently: weather.DataPoint{Summary: "Despejado", Icon: "clear-day", Temperature: 21}}
	embed := CurrentEmbed(weather.Place{DisplayName: "Lima"}, f, "si")
	require.NotEmpty(t, embed.Fields)
	assert.Equal(t, "Resumen", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[1].Value, "21 ℃")
}
