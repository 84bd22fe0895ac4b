package holidays

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

func newMocked(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New("https://enrico.test/json/v1.0/", httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
}

func TestMonth(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", "https://enrico.test/json/v1.0/",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "getPublicHolidaysForMonth", q.Get("action"))
			assert.Equal(t, "esp", q.Get("country"))
			assert.Equal(t, "12", q.Get("month"))
			return httpmock.NewStringResponse(200,
				`[{"date":{"day":25,"month":12,"year":2023,"dayOfWeek":1},"localName":"Navidad","englishName":"Christmas Day"}]`), nil
		})

	hs, err := c.Month(context.Background(), "ESP", 12, 2023)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "25.12.2023", hs[0].Date.String())

	out := Table(hs)
	assert.True(t, strings.Contains(out, "Navidad"))
	assert.True(t, strings.Contains(out, "Nombre (ENG)"))
}

func TestMonthErrors(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", "https://enrico.test/json/v1.0/",
		httpmock.NewStringResponder(200, `{"error":"Country not supported"}`))
	_, err := c.Month(context.Background(), "xxx", 1, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Country not supported")

	httpmock.Reset()
	httpmock.RegisterResponder("GET", "https://enrico.test/json/v1.0/", httpmock.NewStringResponder(200, `[]`))
	_, err = c.Month(context.Background(), "usa", 1, 2024)
	assert.ErrorIs(t, err, ErrNoHolidays)
}
