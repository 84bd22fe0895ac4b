package vocadb

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"items":[
	{"id":1,"defaultName":"Melt","artistString":"ryo feat. Hatsune Miku","publishDate":"2007-12-07T00:00:00Z",
	 "lengthSeconds":262,"favoritedTimes":10,"ratingScore":50,
	 "artists":[{"id":7,"name":"ryo","categories":"Producer"}],
	 "names":[{"language":"Japanese","value":"メルト"},{"language":"English","value":"Melt"}],
	 "lyrics":[{"cultureCode":"ja","value":"朝 目が覚めて"},{"cultureCode":"en","source":"Site","url":"https://lyrics.test/melt","value":"I woke up"}]},
	{"id":2,"defaultName":"Instrumental","artistString":"x","lyrics":[]}
]}`

func newMocked(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder("GET", BaseURL+"/api/songs", httpmock.NewStringResponder(200, searchBody))
	return New(httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
}

func TestSearch(t *testing.T) {
	c := newMocked(t)
	songs, err := c.Search(context.Background(), "melt")
	require.NoError(t, err)
	require.Len(t, songs, 1)

	s := songs[0]
	assert.Equal(t, "https://vocadb.net/S/1", s.URL())
	assert.Equal(t, "4 minutos, 22 segundos", s.Duration())
	assert.Equal(t, "<t:1196985600:d>", s.Published())
	assert.Equal(t, "[ryo](https://vocadb.net/Ar/7) (Producer)", s.ArtistLinks())

	_, err = c.Search(context.Background(), " MELT ")
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestPages(t *testing.T) {
	s := Song{
		DefaultName: "Melt",
		Names:       []Name{{Language: "Japanese", Value: "メルト"}},
		Lyrics: []Lyrics{
			{CultureCode: "ja", Value: strings.Repeat("あ", 5000)},
			{CultureCode: "", URL: "https://lyrics.test"},
		},
	}
	pages := s.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "メルト", pages[0].Title)
	assert.Len(t, []rune(pages[0].Body), MaxLyricsLength)
	assert.Equal(t, "Idioma: japonés • Página 1 de 2", pages[0].Footer)

	assert.Equal(t, "Melt", pages[1].Title)
	assert.Equal(t, "No se encontró la letra.", pages[1].Body)
	assert.Equal(t, "[Fuente](https://lyrics.test)", pages[1].Source)
	assert.Equal(t, "Idioma: N/A • Página 2 de 2", pages[1].Footer)
}

func TestChoices(t *testing.T) {
	got := Choices([]Song{{DefaultName: "A", ArtistString: "x"}, {DefaultName: "B", ArtistString: "y"}})
	assert.Equal(t, "**`[1]`** A - x (publicada: ?)\n**`[2]`** B - y (publicada: ?)", got)
}
