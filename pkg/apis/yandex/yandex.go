// Package yandex wraps the Yandex.Translate v1.5 API.
package yandex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/goccy/go-json"
)

// APIURL is the v1.5 JSON endpoint
const APIURL = "https://translate.yandex.net/api/v1.5/tr.json"

// MaxTextLength is the longest text accepted by translate
const MaxTextLength = 10000

const (
	ErrNoAPIKey          = errors.Sentinel("no hay clave de Yandex.Translate configurada")
	ErrInvalidKey        = errors.Sentinel("clave de API inválida")
	ErrKeyBlocked        = errors.Sentinel("la clave de API está bloqueada")
	ErrDailyLimit        = errors.Sentinel("se superó el límite diario de traducciones")
	ErrTextTooLong       = errors.Sentinel("el texto es demasiado largo")
	ErrUnableToTranslate = errors.Sentinel("no se pudo traducir el texto")
	ErrIncorrectLang     = errors.Sentinel("dirección de traducción no soportada")
)

// APIError carries the code and message returned by the API
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yandex %d: %s", e.Code, e.Message)
}

// Unwrap maps the API code to a sentinel
func (e *APIError) Unwrap() error {
	switch e.Code {
	case 401:
		return ErrInvalidKey
	case 402:
		return ErrKeyBlocked
	case 404:
		return ErrDailyLimit
	case 413:
		return ErrTextTooLong
	case 422:
		return ErrUnableToTranslate
	case 501:
		return ErrIncorrectLang
	}
	return nil
}

// Translation is a translated text and its direction ("en-es")
type Translation struct {
	Lang string
	Text string
}

type response struct {
	APIError
	Lang string   `json:"lang"`
	Text []string `json:"text"`
}

// Client calls the API with a fixed key
type Client struct {
	http   *httpx.Client
	apiKey string
}

// New creates a client. opts are passed to the HTTP client.
func New(apiKey string, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(APIURL), httpx.WithRetries(0)}, opts...)
	return &Client{http: httpx.New("yandex", opts...), apiKey: apiKey}
}

// call reads the body whatever the HTTP status, since errors come as JSON
func (c *Client) call(ctx context.Context, endpoint string, q url.Values) (*response, error) {
	if c.apiKey == "" {
		return nil, errors.WithStack(ErrNoAPIKey)
	}
	q.Set("key", c.apiKey)
	var body []byte
	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.http.URL(endpoint, q), nil)
	})
	var se *httpx.StatusError
	switch {
	case errors.As(err, &se):
		body = []byte(se.Body)
	case err != nil:
		return nil, err
	default:
		defer resp.Body.Close()
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, errors.WrapIf(err, "yandex")
		}
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, errors.WrapIf(err, "yandex: respuesta inválida")
	}
	if r.Code != http.StatusOK {
		apiErr := r.APIError
		return nil, errors.WithStack(&apiErr)
	}
	return &r, nil
}

// Detect guesses the language of text
func (c *Client) Detect(ctx context.Context, text string, hints ...string) (string, error) {
	q := url.Values{}
	q.Set("text", text)
	if len(hints) > 0 {
		q.Set("hint", strings.Join(hints, ","))
	}
	r, err := c.call(ctx, "detect", q)
	if err != nil {
		return "", err
	}
	return r.Lang, nil
}

// Translate translates text. lang is "to" or "from-to".
func (c *Client) Translate(ctx context.Context, lang, text string) (Translation, error) {
	if len([]rune(text)) > MaxTextLength {
		return Translation{}, errors.WithStack(ErrTextTooLong)
	}
	q := url.Values{}
	q.Set("text", text)
	q.Set("lang", lang)
	r, err := c.call(ctx, "translate", q)
	if err != nil {
		return Translation{}, err
	}
	t := Translation{Lang: r.Lang}
	if t.Lang == "" {
		t.Lang = "??-??"
	}
	if len(r.Text) > 0 {
		t.Text = r.Text[0]
	}
	return t, nil
}
