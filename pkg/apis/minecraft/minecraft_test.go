package minecraft

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	addr string
	data string
}

func (f *fakePinger) Ping(ctx context.Context, addr string) ([]byte, time.Duration, error) {
	f.addr = addr
	return []byte(f.data), 42 * time.Millisecond, nil
}

func newMocked(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
}

func TestPlayer(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", "https://api.mojang.com/users/profiles/minecraft/Notch",
		httpmock.NewStringResponder(200, `{"name":"Notch","id":"069a79f444e94726a5befca90e38aaf5"}`))
	httpmock.RegisterResponder("GET", "https://api.mojang.com/users/profiles/minecraft/nobody",
		httpmock.NewStringResponder(204, ``))

	p, err := c.Player(context.Background(), "Notch")
	require.NoError(t, err)
	assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", p.DashedUUID())
	assert.Equal(t, "https://crafatar.com/renders/body/069a79f444e94726a5befca90e38aaf5.png?overlay", p.BodyRender(true))
	assert.Equal(t, "http://s.optifine.net/capes/Notch.png", p.OptifineCape())

	_, err = c.Player(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = c.Player(context.Background(), "not a nick!")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestNameHistory(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", "https://api.mojang.com/user/profiles/abc/names",
		httpmock.NewStringResponder(200, `[{"name":"first"},{"name":"second","changedToAt":1423059891000}]`))

	names, err := c.NameHistory(context.Background(), &Player{Name: "second", UUID: "abc"})
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "Inicial", names[0].When())
	assert.Equal(t, "04.02.2015 14:24:51", names[1].When())
}

func TestStatus(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder("GET", StatusURL,
		httpmock.NewStringResponder(200, `[{"session.minecraft.net":"green"},{"api.mojang.com":"red"}]`))

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, st, 2)
	assert.Equal(t, "api.mojang.com", st[0].Service)
	assert.Equal(t, "💔 **NO DISPONIBLE**", st[0].Label())
	assert.Equal(t, "💚 **OK**", st[1].Label())
}

func TestFiveZigCape(t *testing.T) {
	c := newMocked(t)
	cape := base64.StdEncoding.EncodeToString([]byte("png"))
	httpmock.RegisterResponder("GET", FiveZigURL+"/abc",
		httpmock.NewStringResponder(200, `{"cape":"`+cape+`"}`))

	data, err := c.FiveZigCape(context.Background(), &Player{UUID: "abc"}, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = c.FiveZigCape(context.Background(), &Player{UUID: "abc"}, true)
	assert.ErrorIs(t, err, ErrNoCape)
}

func TestServer(t *testing.T) {
	p := &fakePinger{data: `{
		"version": {"name": "1.20.1", "protocol": 763},
		"players": {"max": 20, "online": 2, "sample": [{"name": "Steve", "id": "x"}]},
		"description": {"text": "§aHola ", "extra": [{"text": "mundo"}]}
	}`}
	c := New().WithPinger(p)

	st, err := c.Server(context.Background(), "mc.example.com")
	require.NoError(t, err)
	assert.Equal(t, "mc.example.com:25565", p.addr)
	assert.Equal(t, "1.20.1", st.Version)
	assert.Equal(t, 2, st.Online)
	assert.Equal(t, []string{"Steve"}, st.Sample)
	assert.Equal(t, "Hola mundo", st.MOTD)
	assert.Equal(t, 42*time.Millisecond, st.Latency)
}

func TestParseStatusStringDescription(t *testing.T) {
	st, err := ParseStatus([]byte(`{"description": "§lA Minecraft Server"}`))
	require.NoError(t, err)
	if st.MOTD != "A Minecraft Server" {
		t.Errorf("MOTD = %q, want %q", st.MOTD, "A Minecraft Server")
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct{ in, want string }{
		{"example.com", "example.com:25565"},
		{"example.com:25570", "example.com:25570"},
		{" 1.2.3.4 ", "1.2.3.4:25565"},
	}
	for _, tt := range tests {
		if got := NormalizeAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
