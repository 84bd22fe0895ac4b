package mqtt

import (
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe(t *testing.T) {
	var seen map[string]interface{}
	handler := func(p map[string]interface{}) (interface{}, error) {
		seen = p
		return map[string]interface{}{"ok": true}, nil
	}

	topic, resp, err := Serve(handler, "cogs/request/leveler/profile", []byte(`{"correlationId":"c1","payload":{"user_id":"42"}}`))
	require.NoError(t, err)
	assert.Equal(t, "cogs/response/leveler/profile/c1", topic)
	assert.Equal(t, "c1", resp.CorrelationID)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"ok": true}, resp.Data)
	assert.Equal(t, "42", seen["user_id"])
	assert.Equal(t, "leveler/profile", seen["_topic"])
}

func TestServeWithoutPayload(t *testing.T) {
	var seen map[string]interface{}
	_, _, err := Serve(func(p map[string]interface{}) (interface{}, error) {
		seen = p
		return nil, nil
	}, "cogs/request/ping", []byte(`{"correlationId":"c2"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"_topic": "ping"}, seen)
}

func TestServeHandlerError(t *testing.T) {
	const errNope = errors.Sentinel("no existe")
	_, resp, err := Serve(func(map[string]interface{}) (interface{}, error) {
		return nil, errNope
	}, "cogs/request/x", []byte(`{"correlationId":"c3"}`))
	require.NoError(t, err)
	assert.Equal(t, "no existe", resp.Error)
	assert.Nil(t, resp.Data)
}

func TestServeRecoversPanics(t *testing.T) {
	_, resp, err := Serve(func(map[string]interface{}) (interface{}, error) {
		panic("boom")
	}, "cogs/request/x", []byte(`{"correlationId":"c4"}`))
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "boom")
}

func TestServeRejectsGarbage(t *testing.T) {
	_, _, err := Serve(nil, "cogs/request/x", []byte("{"))
	assert.Error(t, err)
}
