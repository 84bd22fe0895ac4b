package smm

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PuerkitoBio/goquery"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digits(class, n string) string {
	var b strings.Builder
	b.WriteString(`<div class="` + class + `">`)
	for _, ch := range n {
		name := string(ch)
		switch ch {
		case '/':
			name = "slash"
		case '.':
			name = "second"
		case ':':
			name = "minute"
		}
		b.WriteString(`<span class="typography typography-` + name + `"></span>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

var levelPage = `<html><head><meta property="og:url" content="https://smm.test/courses/ABCD"></head><body>
<div class="course-header">Expert</div>
<div class="course-title">Castillo</div>
<div class="course-meta-info"><div class="course-tag">Puzzle</div></div>
<div class="course-image"><img class="course-image" src="preview.png"></div>
<img class="course-image-full" src="map.png">
<div class="creator-info"><div class="name">Mario</div></div>
<div class="mii-wrapper creator"><a class="link" href="/profile/mario"><img src="mario.png"></a></div>
<div class="gameskin bg-image common_gs_sw"></div>
<div class="created_at">3 hours ago</div>
` + digits("liked-count", "12") + digits("played-count", "340") + digits("shared-count", "5") +
	digits("tried-count", "20/100") + digits("clear-rate", "20.00") + `
<div class="fastest-time-wrapper">
  <div class="user-wrapper"><div class="mii-wrapper"><a class="link" href="/profile/luigi"><img src="luigi.png"></a></div>
  <div class="user-info"><div class="name">Luigi</div></div></div>
  ` + digits("clear-time", "01:02.345") + `
</div>
</body></html>`

var makerPage = `<html><head><meta property="og:url" content="https://smm.test/profile/mario"></head><body>
<img class="mii" src="mii.png">
<div class="user-info"><div class="flag ES"></div><div class="name">Mario</div></div>
<div class="star">` + digits("liked-count", "99") + `</div>
` + digits("user-courses-wrapper", "7") + `
<div class="medal bg-image profile_icon_medal_1"></div>
<div class="medal bg-image profile_icon_medal_non"></div>
<div class="medal bg-image profile_icon_medal_2"></div>
<table>
<tr><td>Easy clears</td><td>` + digits("n", "4") + `</td></tr>
<tr><td>Lives lost</td><td>` + digits("n", "1234") + `</td></tr>
</table>
</body></html>`

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestParseLevel(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	l := ParseLevel(doc(t, levelPage), now)

	assert.Equal(t, "https://smm.test/courses/ABCD", l.URL)
	assert.Equal(t, "Castillo", l.Title)
	assert.Equal(t, 0xEA348B, l.Color())
	assert.Equal(t, "Puzzle", l.Tag)
	assert.Equal(t, "preview.png", l.Preview)
	assert.Equal(t, "Super Mario World", l.GameSkin)
	assert.Equal(t, User{"Mario", BaseURL + "/profile/mario", "mario.png"}, l.Creator)
	require.NotNil(t, l.BestPlayer)
	assert.Equal(t, "Luigi", l.BestPlayer.Name)
	assert.Nil(t, l.FirstClear)
	assert.Equal(t, 12, l.Stars)
	assert.Equal(t, 340, l.Players)
	assert.Equal(t, 20, l.Clears)
	assert.Equal(t, 100, l.Attempts)
	assert.Equal(t, 20.0, l.ClearRate)
	assert.Equal(t, "01:02.345", l.BestTime)
	assert.Equal(t, now.Add(-3*time.Hour), l.CreatedAt)
}

func TestParseCreated(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, -2), parseCreated("2 days ago", now))
	assert.Equal(t, time.Date(2016, 3, 14, 0, 0, 0, 0, time.UTC), parseCreated("03/14/2016", now))
	assert.True(t, parseCreated("whenever", now).IsZero())
}

func TestParseMaker(t *testing.T) {
	m := ParseMaker(doc(t, makerPage))
	assert.Equal(t, "Mario", m.Name)
	assert.Equal(t, "es", m.Country)
	assert.Equal(t, 99, m.Stars)
	assert.Equal(t, 7, m.Uploads)
	assert.Equal(t, 2, m.Medals)
	assert.Equal(t, 4, m.EasyClears)
	assert.Equal(t, 1234, m.LivesLost)
	assert.Equal(t, 0, m.ExpertClears)
}

func TestClientNotFound(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder("GET", BaseURL+"/courses/NOPE", httpmock.NewStringResponder(404, ""))
	httpmock.RegisterResponder("GET", BaseURL+"/profile/mario", httpmock.NewStringResponder(200, makerPage))

	c := New(httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
	_, err := c.Level(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrLevelNotFound)

	m, err := c.Maker(context.Background(), "mario")
	require.NoError(t, err)
	assert.Equal(t, "Mario", m.Name)
}
