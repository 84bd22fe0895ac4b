package tracemoe

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/goccy/go-json"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{3725, "01:02:05"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	r := &Result{Docs: []Doc{{Title: "a"}, {Title: "b", IsAdult: true}}}
	assert.Len(t, r.Filter(true), 2)
	safe := r.Filter(false)
	require.Len(t, safe, 1)
	assert.Equal(t, "a", safe[0].Title)
}

func TestDocLinks(t *testing.T) {
	d := Doc{AnilistID: 21, Episode: float64(3), Filename: "a b.mp4", At: 12.5, TokenThumb: "tok"}
	assert.Equal(t, "https://anilist.co/anime/21", d.AnilistURL())
	assert.Equal(t, "", d.MalURL())
	assert.Equal(t, "3", d.EpisodeString())
	assert.Contains(t, d.Thumbnail(), "file=a+b.mp4")
}

func TestSearchURL(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	c := New("tok", httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))

	img := image.NewRGBA(image.Rect(0, 0, 3000, 10))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	httpmock.RegisterResponder("GET", "https://cdn.test/shot.png", httpmock.NewBytesResponder(200, buf.Bytes()))

	httpmock.RegisterResponder("POST", "https://trace.moe/api/search",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "tok", req.URL.Query().Get("token"))
			data, _ := io.ReadAll(req.Body)
			var body map[string]string
			require.NoError(t, json.Unmarshal(data, &body))
			assert.NotEmpty(t, body["image"])
			return httpmock.NewStringResponse(200,
				`{"limit": 9, "docs": [{"title_romaji": "Shingeki", "at": 61, "similarity": 0.93, "mal_id": 16498}]}`), nil
		})

	res, err := c.SearchURL(context.Background(), "https://cdn.test/shot.png")
	require.NoError(t, err)
	assert.Equal(t, 9, res.Limit)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "00:01:01", res.Docs[0].TimeString())
	assert.Equal(t, "https://myanimelist.net/anime/16498", res.Docs[0].MalURL())
}
