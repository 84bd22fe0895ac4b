// Package vocadb searches song lyrics on VocaDB.net.
package vocadb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/patrickmn/go-cache"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// BaseURL is the VocaDB site, also used for links
const BaseURL = "https://vocadb.net"

// MaxLyricsLength caps a lyrics page
const MaxLyricsLength = 4090

// Artist is a credited artist
type Artist struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Categories string `json:"categories"`
}

// Name is a localized song title
type Name struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Lyrics is one lyrics translation
type Lyrics struct {
	CultureCode string `json:"cultureCode"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Value       string `json:"value"`
}

// Song is a search result
type Song struct {
	ID             int      `json:"id"`
	DefaultName    string   `json:"defaultName"`
	ArtistString   string   `json:"artistString"`
	PublishDate    string   `json:"publishDate"`
	LengthSeconds  int      `json:"lengthSeconds"`
	FavoritedTimes int      `json:"favoritedTimes"`
	RatingScore    int      `json:"ratingScore"`
	ThumbURL       string   `json:"thumbUrl"`
	Artists        []Artist `json:"artists"`
	Names          []Name   `json:"names"`
	Lyrics         []Lyrics `json:"lyrics"`
}

// URL links the song page
func (s Song) URL() string { return fmt.Sprintf("%s/S/%d", BaseURL, s.ID) }

// Title is "name - artists"
func (s Song) Title() string { return s.DefaultName + " - " + s.ArtistString }

// Published renders the publish date as a Discord timestamp, or "?" when unknown
func (s Song) Published() string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s.PublishDate); err == nil {
			return fmt.Sprintf("<t:%d:d>", t.Unix())
		}
	}
	return "?"
}

// Duration renders the length in minutes and seconds
func (s Song) Duration() string {
	return fmt.Sprintf("%d minutos, %d segundos", s.LengthSeconds/60, s.LengthSeconds%60)
}

// Statistics renders favorites and score
func (s Song) Statistics() string {
	return fmt.Sprintf("%d favorito(s), %d de puntuación total", s.FavoritedTimes, s.RatingScore)
}

// ArtistLinks lists every artist with a link and its categories
func (s Song) ArtistLinks() string {
	parts := make([]string, 0, len(s.Artists))
	for _, a := range s.Artists {
		parts = append(parts, fmt.Sprintf("[%s](%s/Ar/%d) (%s)", a.Name, BaseURL, a.ID, a.Categories))
	}
	return strings.Join(parts, ", ")
}

// LanguageName is the Spanish name of a culture code, "N/A" when unknown
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil || code == "" || code == "na" {
		return "N/A"
	}
	if name := display.Spanish.Languages().Name(tag); name != "" {
		return name
	}
	return "N/A"
}

// LyricsTitle prefers the song name in the language of the lyrics
func (s Song) LyricsTitle(l Lyrics) string {
	if tag, err := language.Parse(l.CultureCode); err == nil {
		want := display.English.Languages().Name(tag)
		for _, n := range s.Names {
			if want != "" && n.Language == want {
				return n.Value
			}
		}
	}
	return s.DefaultName
}

// Page is one lyrics page
type Page struct {
	Title  string
	Body   string
	Source string
	Footer string
}

// Pages renders every lyrics translation as a page
func (s Song) Pages() []Page {
	pages := make([]Page, 0, len(s.Lyrics))
	for i, l := range s.Lyrics {
		p := Page{
			Title:  s.LyricsTitle(l),
			Body:   "No se encontró la letra.",
			Footer: fmt.Sprintf("Idioma: %s • Página %d de %d", LanguageName(l.CultureCode), i+1, len(s.Lyrics)),
		}
		if l.Value != "" {
			p.Body = truncate(l.Value, MaxLyricsLength)
		}
		if l.URL != "" {
			src := l.Source
			if src == "" {
				src = "Fuente"
			}
			p.Source = fmt.Sprintf("[%s](%s)", src, l.URL)
		}
		pages = append(pages, p)
	}
	return pages
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Choices renders the numbered list shown when several songs match
func Choices(songs []Song) string {
	var b strings.Builder
	for i, s := range songs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "**`[%d]`** %s - %s (publicada: %s)", i+1, s.DefaultName, s.ArtistString, s.Published())
	}
	return b.String()
}

// Client searches songs, caching results per query
type Client struct {
	http  *httpx.Client
	cache *cache.Cache
}

// New creates a client. opts are passed to the HTTP client.
func New(opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(BaseURL + "/api")}, opts...)
	return &Client{
		http:  httpx.New("vocadb", opts...),
		cache: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Search returns up to 10 songs matching query that have lyrics
func (c *Client) Search(ctx context.Context, query string) ([]Song, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if v, ok := c.cache.Get(key); ok {
		return v.([]Song), nil
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("maxResults", "10")
	q.Set("sort", "FavoritedTimes")
	q.Set("preferAccurateMatches", "true")
	q.Set("nameMatchMode", "Words")
	q.Set("fields", "Artists,Lyrics,Names,ThumbUrl")
	var resp struct {
		Items []Song `json:"items"`
	}
	if err := c.http.GetJSON(ctx, "songs", q, &resp); err != nil {
		return nil, err
	}
	songs := resp.Items[:0]
	for _, s := range resp.Items {
		if len(s.Lyrics) > 0 {
			songs = append(songs, s)
		}
	}
	c.cache.SetDefault(key, songs)
	return songs, nil
}
