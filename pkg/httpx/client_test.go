package httpx

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	opts = append([]Option{WithHTTPClient(hc), WithBaseURL("https://api.test"), WithRateLimit(1000, 1000)}, opts...)
	return New("test", opts...)
}

func TestURL(t *testing.T) {
	c := New("test", WithBaseURL("https://api.test/v1/"))

	tests := []struct {
		path  string
		query url.Values
		want  string
	}{
		{"songs", nil, "https://api.test/v1/songs"},
		{"/songs", url.Values{"query": {"miku"}}, "https://api.test/v1/songs?query=miku"},
		{"https://other.test/x?a=1", url.Values{"b": {"2"}}, "https://other.test/x?a=1&b=2"},
	}
	for _, tt := range tests {
		if got := c.URL(tt.path, tt.query); got != tt.want {
			t.Errorf("URL(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGetJSON(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://api.test/thing",
		httpmock.NewStringResponder(200, `{"name":"godville","level":7}`))

	var out struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "thing", nil, &out))
	assert.Equal(t, "godville", out.Name)
	assert.Equal(t, 7, out.Level)
}

func TestNotFound(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", "https://api.test/missing", httpmock.NewStringResponder(404, "nope"))

	_, err := c.GetBytes(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestRetriesServerErrors(t *testing.T) {
	c := newMockedClient(t, WithRetries(3))
	calls := 0
	httpmock.RegisterResponder("GET", "https://api.test/flaky", func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return httpmock.NewStringResponse(503, "busy"), nil
		}
		return httpmock.NewStringResponse(200, "ok"), nil
	})

	body, err := c.GetBytes(context.Background(), "flaky", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 3, calls)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	c := newMockedClient(t, WithRetries(3))
	calls := 0
	httpmock.RegisterResponder("GET", "https://api.test/bad", func(req *http.Request) (*http.Response, error) {
		calls++
		return httpmock.NewStringResponse(401, "unauthorized"), nil
	})

	_, err := c.GetBytes(context.Background(), "bad", nil)
	require.Error(t, err)
	assert.Equal(t, 401, StatusCode(err))
	assert.Equal(t, 1, calls)
}

func TestPostFormSendsHeaders(t *testing.T) {
	c := newMockedClient(t, WithHeader("X-Api-Key", "secret"))
	httpmock.RegisterResponder("POST", "https://api.test/form", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("X-Api-Key") != "secret" {
			return httpmock.NewStringResponse(403, "no key"), nil
		}
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		return httpmock.NewStringResponse(200, `{"echo":"`+req.PostForm.Get("text")+`"}`), nil
	})

	var out struct {
		Echo string `json:"echo"`
	}
	require.NoError(t, c.PostForm(context.Background(), "form", url.Values{"text": {"hola"}}, &out))
	assert.Equal(t, "hola", out.Echo)
}
