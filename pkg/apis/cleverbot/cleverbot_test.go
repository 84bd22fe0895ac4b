package cleverbot

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMocked(t *testing.T, user, key string) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(user, key, "CogsBot", httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
}

func TestAsk(t *testing.T) {
	c := newMocked(t, "u", "k")
	httpmock.RegisterResponder("POST", APIURL+"/create", func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseForm())
		assert.Equal(t, "u", req.PostForm.Get("user"))
		assert.Equal(t, "CogsBot", req.PostForm.Get("nick"))
		return httpmock.NewStringResponse(200, `{"status":"success","nick":"CogsBot-1"}`), nil
	})
	httpmock.RegisterResponder("POST", APIURL+"/ask", func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseForm())
		assert.Equal(t, "CogsBot-1", req.PostForm.Get("nick"))
		return httpmock.NewStringResponse(200, fmt.Sprintf(`{"status":"success","response":"hola %s"}`, req.PostForm.Get("text"))), nil
	})

	got, err := c.Ask(context.Background(), "qué tal")
	require.NoError(t, err)
	assert.Equal(t, "hola qué tal", got)

	_, err = c.Ask(context.Background(), "otra")
	require.NoError(t, err)
	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+APIURL+"/create"])
	assert.Equal(t, 2, info["POST "+APIURL+"/ask"])
}

func TestAskErrors(t *testing.T) {
	_, err := New("", "", "x").Ask(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrNoCredentials)

	c := newMocked(t, "u", "bad")
	httpmock.RegisterResponder("POST", APIURL+"/create",
		httpmock.NewStringResponder(200, `{"status":"Error: API credentials incorrect"}`))
	_, err = c.Ask(context.Background(), "hola")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Error: API credentials incorrect", apiErr.Status)
}
