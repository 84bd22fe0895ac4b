package imagesearch

import (
	"strings"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/saucenao"
	"github.com/PancyStudios/CogsBotGo/pkg/apis/tracemoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSauceEmbeds(t *testing.T) {
	res := &saucenao.Result{Results: []saucenao.Entry{
		{Similarity: "93.5", Source: "Serie", Part: "4", URLs: []string{"https://example.com/a"}},
		{Similarity: "50", IndexName: "Index #5: Pixiv Images - 123.jpg"},
	}}
	pages := SauceEmbeds(res)
	require.Len(t, pages, 2)
	assert.Equal(t, "Serie", pages[0].Title)
	assert.Equal(t, "https://example.com/a", pages[0].URL)
	assert.Contains(t, pages[0].Description, "Parte/episodio: 4")
	assert.Equal(t, "Pixiv Images", pages[1].Title)
	assert.True(t, strings.HasSuffix(pages[1].Footer.Text, "Página 2/2"))
}

func TestTraceEmbeds(t *testing.T) {
	pages := TraceEmbeds([]tracemoe.Doc{{Title: "Anime", AnilistID: 1, MalID: 2, At: 3725, Similarity: 0.9}})
	require.Len(t, pages, 1)
	assert.Equal(t, "https://myanimelist.net/anime/2", pages[0].URL)
	assert.Contains(t, pages[0].Description, "Momento: 01:02:05")
	assert.Contains(t, pages[0].Description, "Similitud: 90.00%")
}

func TestLimitsText(t *testing.T) {
	assert.Contains(t, LimitsText(nil), "Todavía")
	assert.Contains(t, LimitsText(&saucenao.Limits{Short: 4, ShortRemaining: 3, Long: 100, LongRemaining: 99}), "3/4")
}
