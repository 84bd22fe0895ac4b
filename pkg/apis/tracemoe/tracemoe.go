// Package tracemoe finds the anime scene a screenshot comes from.
package tracemoe

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PancyStudios/CogsBotGo/pkg/imagefinder"
)

// BaseURL is the trace.moe site, the API lives under /api
const BaseURL = "https://trace.moe"

// MaxImageSide is the largest side of the uploaded JPEG
const MaxImageSide = 2048

// Doc is one match
type Doc struct {
	From         float64     `json:"from"`
	To           float64     `json:"to"`
	At           float64     `json:"at"`
	Episode      interface{} `json:"episode"`
	Similarity   float64     `json:"similarity"`
	AnilistID    int         `json:"anilist_id"`
	MalID        int         `json:"mal_id"`
	IsAdult      bool        `json:"is_adult"`
	Title        string      `json:"title"`
	TitleNative  string      `json:"title_native"`
	TitleChinese string      `json:"title_chinese"`
	TitleEnglish string      `json:"title_english"`
	TitleRomaji  string      `json:"title_romaji"`
	Synonyms     []string    `json:"synonyms"`
	Filename     string      `json:"filename"`
	TokenThumb   string      `json:"tokenthumb"`
}

// Thumbnail returns the preview image URL of the match
func (d Doc) Thumbnail() string {
	q := url.Values{
		"anilist_id": {fmt.Sprint(d.AnilistID)},
		"file":       {d.Filename},
		"t":          {fmt.Sprint(d.At)},
		"token":      {d.TokenThumb},
	}
	return BaseURL + "/thumbnail.php?" + q.Encode()
}

// TimeString formats the match position as HH:MM:SS
func (d Doc) TimeString() string {
	return FormatTime(d.At)
}

// EpisodeString returns the episode number, empty when unknown
func (d Doc) EpisodeString() string {
	switch v := d.Episode.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprint(int(v))
	default:
		return fmt.Sprint(v)
	}
}

// AnilistURL links the anime on AniList
func (d Doc) AnilistURL() string {
	return fmt.Sprintf("https://anilist.co/anime/%d", d.AnilistID)
}

// MalURL links the anime on MyAnimeList, empty when unknown
func (d Doc) MalURL() string {
	if d.MalID == 0 {
		return ""
	}
	return fmt.Sprintf("https://myanimelist.net/anime/%d", d.MalID)
}

// FormatTime formats seconds as HH:MM:SS
func FormatTime(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

// Result is a search response
type Result struct {
	RawDocsCount      int     `json:"RawDocsCount"`
	RawDocsSearchTime float64 `json:"RawDocsSearchTime"`
	ReRankSearchTime  float64 `json:"ReRankSearchTime"`
	CacheHit          bool    `json:"CacheHit"`
	Trial             int     `json:"trial"`
	Limit             int     `json:"limit"`
	LimitTTL          int     `json:"limit_ttl"`
	Quota             int     `json:"quota"`
	QuotaTTL          int     `json:"quota_ttl"`
	Docs              []Doc   `json:"docs"`
}

// Filter drops adult matches unless nsfw is set
func (r *Result) Filter(nsfw bool) []Doc {
	if nsfw {
		return r.Docs
	}
	out := make([]Doc, 0, len(r.Docs))
	for _, d := range r.Docs {
		if !d.IsAdult {
			out = append(out, d)
		}
	}
	return out
}

// Me is the quota of the API token
type Me struct {
	UserID       interface{} `json:"user_id"`
	Email        string      `json:"email"`
	Limit        int         `json:"limit"`
	LimitTTL     int         `json:"limit_ttl"`
	Quota        int         `json:"quota"`
	QuotaTTL     int         `json:"quota_ttl"`
	UserLimit    int         `json:"user_limit"`
	UserLimitTTL int         `json:"user_limit_ttl"`
	UserQuota    int         `json:"user_quota"`
	UserQuotaTTL int         `json:"user_quota_ttl"`
}

// Client talks to the trace.moe API
type Client struct {
	http  *httpx.Client
	token string
}

// New creates a client. opts are passed to the HTTP client.
func New(token string, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(BaseURL + "/api"), httpx.WithRateLimit(1, 1)}, opts...)
	return &Client{http: httpx.New("tracemoe", opts...), token: token}
}

// SearchURL downloads imageURL, shrinks it and searches for it
func (c *Client) SearchURL(ctx context.Context, imageURL string) (*Result, error) {
	img, err := imagefinder.FetchImage(ctx, c.http, imageURL)
	if err != nil {
		return nil, err
	}
	jpg, err := imagefinder.ToJPEG(img, MaxImageSide)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, jpg)
}

// Search looks up a JPEG image
func (c *Client) Search(ctx context.Context, jpeg []byte) (*Result, error) {
	body := map[string]string{"image": base64.StdEncoding.EncodeToString(jpeg)}
	var res Result
	path := c.http.URL("search", url.Values{"token": {c.token}})
	if err := c.http.PostJSON(ctx, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me returns the limits of the token
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.http.GetJSON(ctx, "me", url.Values{"token": {c.token}}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
