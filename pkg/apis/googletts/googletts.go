// Package googletts downloads speech from the Google Translate TTS endpoint.
package googletts

import (
	"context"
	"net/url"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
)

// BaseURL is the translate host
const BaseURL = "https://translate.google.com"

// MaxLength is the longest text the endpoint accepts, in runes
const MaxLength = 200

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Client fetches mp3 speech
type Client struct {
	http *httpx.Client
}

// New creates a client. opts are passed to the HTTP client.
func New(opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(BaseURL), httpx.WithUserAgent(browserUA)}, opts...)
	return &Client{http: httpx.New("googletts", opts...)}
}

// Truncate cuts text to MaxLength runes
func Truncate(text string) string {
	if r := []rune(text); len(r) > MaxLength {
		return string(r[:MaxLength])
	}
	return text
}

// Speak returns text spoken in lang as mp3. Long texts are cut.
func (c *Client) Speak(ctx context.Context, lang, text string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "utf-8")
	q.Set("q", Truncate(text))
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	data, err := c.http.GetBytes(ctx, "translate_tts", q)
	return data, errors.WrapIf(err, "google tts")
}

// FileName is the attachment name for text
func FileName(text string) string {
	r := []rune(Truncate(text))
	if len(r) > 32 {
		r = r[:32]
	}
	return string(r) + ".mp3"
}
