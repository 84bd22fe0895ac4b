// Package memegen builds meme image links with memegen.link.
package memegen

import (
	"context"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/patrickmn/go-cache"
)

// APIURL is the memegen.link API
const APIURL = "https://api.memegen.link"

// DefaultFont is used when no font is given
const DefaultFont = "impact"

// ErrTemplateNotFound is returned when no template matches
const ErrTemplateNotFound = errors.Sentinel("no encontré esa plantilla")

// ErrFontNotFound is returned for unknown fonts
const ErrFontNotFound = errors.Sentinel("no existe esa fuente")

// Template is a meme template
type Template struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lines int    `json:"lines"`
	Blank string `json:"blank"`
}

// Font is a font usable on memes
type Font struct {
	ID       string `json:"id"`
	Alias    string `json:"alias"`
	Filename string `json:"filename"`
}

var escaper = strings.NewReplacer(
	"_", "__",
	"-", "--",
	" ", "_",
	"?", "~q",
	"&", "~a",
	"%", "~p",
	"#", "~h",
	"/", "~s",
	"\\", "~b",
	"<", "~l",
	">", "~g",
	"\"", "''",
	"\n", "~n",
)

// EscapeText encodes a meme line for the URL path. An empty line becomes "_".
func EscapeText(s string) string {
	if s == "" {
		return "_"
	}
	return url.PathEscape(escaper.Replace(s))
}

// IsURL reports whether s is an absolute http(s) URL
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Client resolves templates and fonts, caching both lists
type Client struct {
	http  *httpx.Client
	cache *cache.Cache
}

// New creates a client. opts are passed to the HTTP client.
func New(opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(APIURL)}, opts...)
	return &Client{http: httpx.New("memegen", opts...), cache: cache.New(6*time.Hour, time.Hour)}
}

// Templates lists every template
func (c *Client) Templates(ctx context.Context) ([]Template, error) {
	if v, ok := c.cache.Get("templates"); ok {
		return v.([]Template), nil
	}
	var out []Template
	if err := c.http.GetJSON(ctx, "templates/", nil, &out); err != nil {
		return nil, err
	}
	c.cache.SetDefault("templates", out)
	return out, nil
}

// Fonts lists every font
func (c *Client) Fonts(ctx context.Context) ([]Font, error) {
	if v, ok := c.cache.Get("fonts"); ok {
		return v.([]Font), nil
	}
	var out []Font
	if err := c.http.GetJSON(ctx, "fonts/", nil, &out); err != nil {
		return nil, err
	}
	c.cache.SetDefault("fonts", out)
	return out, nil
}

// ResolveTemplate finds a template by id, then by name
func (c *Client) ResolveTemplate(ctx context.Context, query string) (*Template, error) {
	query = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(query), " ", "-"))
	templates, err := c.Templates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == query {
			return &templates[i], nil
		}
	}
	words := strings.ReplaceAll(query, "-", " ")
	for i := range templates {
		if strings.Contains(strings.ToLower(templates[i].Name), words) {
			return &templates[i], nil
		}
	}
	return nil, errors.WithStack(ErrTemplateNotFound)
}

// ResolveFont accepts a font id or alias
func (c *Client) ResolveFont(ctx context.Context, name string) (string, error) {
	if name == "" {
		return DefaultFont, nil
	}
	fonts, err := c.Fonts(ctx)
	if err != nil {
		return "", err
	}
	name = strings.ToLower(name)
	for _, f := range fonts {
		if f.ID == name || f.Alias == name {
			return f.ID, nil
		}
	}
	return "", errors.WithStack(ErrFontNotFound)
}

// Meme builds the image link. template may be a template name or an image URL.
func (c *Client) Meme(ctx context.Context, template, top, bottom, font string) (string, error) {
	fontID, err := c.ResolveFont(ctx, font)
	if err != nil {
		return "", err
	}
	q := url.Values{"font": {fontID}}
	id := "custom"
	if IsURL(template) {
		q.Set("background", template)
	} else {
		t, err := c.ResolveTemplate(ctx, template)
		if err != nil {
			return "", err
		}
		id = t.ID
	}
	return c.http.URL("images/"+id+"/"+EscapeText(top)+"/"+EscapeText(bottom)+".jpg", q), nil
}
