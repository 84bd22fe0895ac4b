package smm

import (
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/smm"
	"github.com/stretchr/testify/assert"
)

func TestLevelEmbed(t *testing.T) {
	l := &smm.Level{
		Title: "Castillo", Difficulty: "Expert", Clears: 5, Attempts: 200, ClearRate: 2.5,
		BestPlayer: &smm.User{Name: "luigi", URL: "https://example.com/luigi"}, BestTime: "00:31.200",
		CreatedAt: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	embed := LevelEmbed(l)
	assert.Equal(t, 0xEA348B, embed.Color)
	assert.Equal(t, "5/200 (2.50%)", embed.Fields[5].Value)
	assert.Equal(t, "[luigi](https://example.com/luigi) (00:31.200)", embed.Fields[6].Value)
	assert.Equal(t, "—", embed.Fields[7].Value)
	assert.Nil(t, embed.Thumbnail)
	assert.Equal(t, "2019-03-01T00:00:00Z", embed.Timestamp)
}

func TestMakerEmbed(t *testing.T) {
	embed := MakerEmbed(&smm.Maker{Name: "mario", EasyClears: 1, NormalClears: 2, ExpertClears: 3, SuperExpertClears: 4})
	assert.Equal(t, "1/2/3/4", embed.Fields[4].Value)
}
