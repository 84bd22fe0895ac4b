package vocadb

import (
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/vocadb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongPages(t *testing.T) {
	s := vocadb.Song{
		ID: 1501, DefaultName: "Melt", ArtistString: "ryo feat. Hatsune Miku",
		LengthSeconds: 260,
		Lyrics: []vocadb.Lyrics{
			{CultureCode: "ja", Value: "朝 目が覚めて"},
			{CultureCode: "en", URL: "https://example.com/melt"},
		},
	}
	pages := SongPages(s)
	require.Len(t, pages, 3)
	assert.Equal(t, "Melt - ryo feat. Hatsune Miku", pages[0].Title)
	assert.Equal(t, "4 minutos, 20 segundos", pages[0].Fields[2].Value)
	assert.Equal(t, "朝 目が覚めて", pages[1].Description)
	assert.Empty(t, pages[1].Fields)
	assert.Equal(t, "[Fuente](https://example.com/melt)", pages[2].Fields[0].Value)
}

func TestChoicesEmbed(t *testing.T) {
	embed := ChoicesEmbed("melt", []vocadb.Song{{DefaultName: "Melt", ArtistString: "ryo"}, {DefaultName: "Melt 2", ArtistString: "x"}})
	assert.Contains(t, embed.Description, "**`[2]`** Melt 2 - x")
}
