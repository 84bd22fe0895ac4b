// Package cleverbot talks to the cleverbot.io chat API.
package cleverbot

import (
	"context"
	"net/url"
	"sync"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
)

// APIURL is the cleverbot.io v1 API
const APIURL = "https://cleverbot.io/1.0"

// ErrNoCredentials is returned when the user or key are missing
const ErrNoCredentials = errors.Sentinel("no hay credenciales de cleverbot.io configuradas")

type reply struct {
	Status   string `json:"status"`
	Nick     string `json:"nick"`
	Response string `json:"response"`
}

// APIError is a non "success" status
type APIError struct{ Status string }

func (e *APIError) Error() string { return "cleverbot.io: " + e.Status }

// Client keeps one conversation session, created on first use
type Client struct {
	http *httpx.Client
	user string
	key  string
	nick string

	mu      sync.Mutex
	session string
}

// New creates a client. nick names the conversation session.
func New(user, key, nick string, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(APIURL), httpx.WithRateLimit(1, 2)}, opts...)
	return &Client{http: httpx.New("cleverbot", opts...), user: user, key: key, nick: nick}
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*reply, error) {
	form.Set("user", c.user)
	form.Set("key", c.key)
	var r reply
	if err := c.http.PostForm(ctx, path, form, &r); err != nil {
		return nil, err
	}
	if r.Status != "success" {
		return nil, errors.WithStack(&APIError{Status: r.Status})
	}
	return &r, nil
}

func (c *Client) ensureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != "" {
		return c.session, nil
	}
	form := url.Values{}
	if c.nick != "" {
		form.Set("nick", c.nick)
	}
	r, err := c.post(ctx, "create", form)
	if err != nil {
		return "", errors.WrapIf(err, "crear sesión")
	}
	c.session = r.Nick
	if c.session == "" {
		c.session = c.nick
	}
	return c.session, nil
}

// Ask sends text and returns the bot reply
func (c *Client) Ask(ctx context.Context, text string) (string, error) {
	if c.user == "" || c.key == "" {
		return "", errors.WithStack(ErrNoCredentials)
	}
	nick, err := c.ensureSession(ctx)
	if err != nil {
		return "", err
	}
	form := url.Values{}
	form.Set("nick", nick)
	form.Set("text", text)
	r, err := c.post(ctx, "ask", form)
	if err != nil {
		return "", err
	}
	return r.Response, nil
}
