package saucenao

import (
	"context"
	"net/http"
	"testing"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponse = `{
  "header": {"user_id": "123", "account_type": "1", "short_limit": "4", "long_limit": "100",
    "short_remaining": 3, "long_remaining": 99, "status": 0, "results_requested": 6,
    "search_depth": "128", "minimum_similarity": 40.5, "results_returned": 1},
  "results": [{
    "header": {"similarity": "93.1", "thumbnail": "https://img.test/t.jpg", "index_id": 5,
      "index_name": "Index #5: Pixiv Images - 12345_p0.jpg"},
    "data": {"ext_urls": ["https://pixiv.test/1"], "title": "Miku", "member_name": "artist",
      "creator": ["a", "b"], "created_at": "2020-01-02T03:04:05Z"}
  }]
}`

func newMocked(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New("key", httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
}

func TestSearch(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", "https://saucenao.com/search.php",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "2", q.Get("output_type"))
			assert.Equal(t, "999", q.Get("db"))
			assert.Equal(t, "6", q.Get("numres"))
			assert.Equal(t, "https://example.test/a.png", q.Get("url"))
			return httpmock.NewStringResponse(200, searchResponse), nil
		})

	res, err := c.Search(context.Background(), "https://example.test/a.png", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Limits.Short)
	assert.Equal(t, 99, res.Limits.LongRemaining)
	assert.Equal(t, 6, res.ResultsRequested)
	require.Len(t, res.Results, 1)

	e := res.Results[0]
	assert.Equal(t, "Pixiv Images", e.Service())
	assert.Equal(t, "artist", e.MemberName)
	assert.Equal(t, "a, b", e.CreatorString())
	assert.Equal(t, 2020, e.CreatedAt.Year())
}

func TestSearchStatusError(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", "https://saucenao.com/search.php",
		httpmock.NewStringResponder(200, `{"header": {"status": -2, "message": "bad image"}}`))

	_, err := c.Search(context.Background(), "https://example.test/a.png", 3)
	var se *SearchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, -2, se.Status)
	assert.Equal(t, "SauceNAO devolvió -2 (bad image)", se.Error())
}

func TestServiceNoMatch(t *testing.T) {
	e := Entry{IndexName: "something else"}
	if got := e.Service(); got != "" {
		t.Errorf("Service() = %q, want empty", got)
	}
}
