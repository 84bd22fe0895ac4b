package yandex

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

func newMocked(t *testing.T, key string) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(key, httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000))
}

func TestTranslate(t *testing.T) {
	c := newMocked(t, "k")
	httpmock.RegisterResponder("GET", APIURL+"/translate", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "k", req.URL.Query().Get("key"))
		assert.Equal(t, "es", req.URL.Query().Get("lang"))
		return httpmock.NewStringResponse(200, `{"code":200,"lang":"en-es","text":["hola"]}`), nil
	})

	tr, err := c.Translate(context.Background(), "es", "hello")
	require.NoError(t, err)
	assert.Equal(t, Translation{Lang: "en-es", Text: "hola"}, tr)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{401, `{"code":401,"message":"API key is invalid"}`, ErrInvalidKey},
		{402, `{"code":402,"message":"API key is blocked"}`, ErrKeyBlocked},
		{404, `{"code":404,"message":"limit"}`, ErrDailyLimit},
		{413, `{"code":413,"message":"too long"}`, ErrTextTooLong},
		{422, `{"code":422,"message":"nope"}`, ErrUnableToTranslate},
		{501, `{"code":501,"message":"bad lang"}`, ErrIncorrectLang},
	}
	for _, tt := range tests {
		c := newMocked(t, "k")
		httpmock.RegisterResponder("GET", APIURL+"/translate", httpmock.NewStringResponder(tt.status, tt.body))
		_, err := c.Translate(context.Background(), "xx", "hello")
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		httpmock.DeactivateAndReset()
	}
}

func TestDetect(t *testing.T) {
	c := newMocked(t, "k")
	httpmock.RegisterResponder("GET", APIURL+"/detect", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "en,ru", req.URL.Query().Get("hint"))
		return httpmock.NewStringResponse(200, `{"code":200,"lang":"ru"}`), nil
	})
	lang, err := c.Detect(context.Background(), "привет", "en", "ru")
	require.NoError(t, err)
	assert.Equal(t, "ru", lang)
}

func TestLocalChecks(t *testing.T) {
	_, err := New("").Detect(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New("k").Translate(context.Background(), "es", strings.Repeat("a", MaxTextLength+1))
	assert.ErrorIs(t, err, ErrTextTooLong)
}
