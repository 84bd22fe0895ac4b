package steam

import (
	"bytes"
	"context"
	"encoding/binary"
	"image/png"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteamIDConversions(t *testing.T) {
	tests := []struct {
		steam2 string
		id64   string
		steam3 string
	}{
		{"STEAM_0:1:11101", "76561197960287931", "[U:1:22203]"},
		{"STEAM_1:0:0", "76561197960265728", "[U:1:0]"},
	}
	for _, tt := range tests {
		id, err := ParseSteam2(tt.steam2)
		require.NoError(t, err)
		if got := id.String(); got != tt.id64 {
			t.Errorf("ParseSteam2(%q) = %v, want %v", tt.steam2, got, tt.id64)
		}
		if got := id.Steam3(); got != tt.steam3 {
			t.Errorf("Steam3() = %v, want %v", got, tt.steam3)
		}
	}

	id, err := ParseID64("76561197960287931")
	require.NoError(t, err)
	assert.Equal(t, "STEAM_1:1:11101", id.Steam2())
	assert.Equal(t, 1, id.Type())
	assert.Equal(t, 1, id.Instance())

	_, err = ParseSteam2("STEAM_9:1:1")
	assert.ErrorIs(t, err, ErrInvalidSteamID)
}

func TestProfileArg(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://steamcommunity.com/id/gabelogannewell/", "gabelogannewell"},
		{"https://steamcommunity.com/profiles/76561197960287930", "76561197960287930"},
		{"  gaben ", "gaben"},
	}
	for _, tt := range tests {
		if got := ProfileArg(tt.in); got != tt.want {
			t.Errorf("ProfileArg(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func newMocked(t *testing.T, key string) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(key, httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000), httpx.WithRetries(0))
}

func TestProfile(t *testing.T) {
	c := newMocked(t, "k")
	httpmock.RegisterResponder("GET", APIURL+"/ISteamUser/ResolveVanityURL/v1/",
		httpmock.NewStringResponder(200, `{"response":{"steamid":"76561197960287930","success":1}}`))
	httpmock.RegisterResponder("GET", APIURL+"/ISteamUser/GetPlayerSummaries/v2/",
		httpmock.NewStringResponder(200, `{"response":{"players":[{"steamid":"76561197960287930","personaname":"Rabscuttle","personastate":1,"communityvisibilitystate":3,"gameserverip":"0.0.0.0:0"}]}}`))
	httpmock.RegisterResponder("GET", APIURL+"/ISteamUser/GetPlayerBans/v1/",
		httpmock.NewStringResponder(200, `{"players":[{"VACBanned":true,"DaysSinceLastBan":12,"EconomyBan":"none"}]}`))
	httpmock.RegisterResponder("GET", APIURL+"/IPlayerService/GetSteamLevel/v1/",
		httpmock.NewStringResponder(200, `{"response":{"player_level":40}}`))

	p, err := c.Profile(context.Background(), "https://steamcommunity.com/id/gabelogannewell/")
	require.NoError(t, err)
	assert.Equal(t, "Rabscuttle", p.Summary.PersonaName)
	assert.Equal(t, 40, p.Level)
	assert.Equal(t, "Conectado", p.PersonaState())
	assert.Equal(t, "Público", p.Visibility())
	assert.Equal(t, ColorOnline, p.Color())
	assert.Equal(t, "", p.GameServer())
	assert.Equal(t, "", p.EconomyBan())
	assert.Equal(t, "Días desde el último baneo: 12", p.BansDescription())
	assert.Nil(t, p.SharedBy)
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["GET "+APIURL+"/ISteamUser/ResolveVanityURL/v1/"])
}

func TestProfileWithoutKey(t *testing.T) {
	c := newMocked(t, "")
	_, err := c.Profile(context.Background(), "gaben")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

const statusJSON = `{
  "time": 1600000000,
  "services": [["online", 0, "25.1M"], ["store", 2, "Down"], ["cms", 1, "95%"]],
  "graph": {"start": 1600000000000, "step": 600000, "data": [99, 97, 80, 95]}
}`

func TestStatusCached(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder("GET", StatusURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "https://steamstat.us/", req.Header.Get("Referer"))
		return httpmock.NewStringResponse(200, statusJSON), nil
	})
	c := NewStatusClient(httpx.WithHTTPClient(hc), httpx.WithRateLimit(1000, 1000))

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	_, err = c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	assert.Equal(t, "💚 25.1M", st.Find("online").WithIndicator())
	assert.Equal(t, "💔 Down", st.Find("store").WithIndicator())
	assert.Equal(t, "", st.Find("tf2").WithIndicator())
	assert.Contains(t, st.Description(), "**Connection Managers**: 💛 95%")
	assert.Equal(t, 2020, st.Timestamp().Year())

	img, err := RenderGraph(st.Graph)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(img))
	assert.NoError(t, err)
}

func infoPacket() []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF, 'I', 17})
	for _, s := range []string{"  My Server ", "workshop/123456/de_test", "csgo", "Counter-Strike"} {
		b.WriteString(s)
		b.WriteByte(0)
	}
	_ = binary.Write(&b, binary.LittleEndian, uint16(730))
	b.Write([]byte{12, 24, 2, 'd', 'l', 0, 1})
	b.WriteString("1.38.0.0")
	b.WriteByte(0)
	b.WriteByte(0x80)
	_ = binary.Write(&b, binary.LittleEndian, uint16(27015))
	return b.Bytes()
}

func TestParseInfo(t *testing.T) {
	info, err := ParseInfo(infoPacket())
	require.NoError(t, err)
	assert.Equal(t, "My Server", info.Name)
	assert.Equal(t, uint16(730), info.AppID)
	assert.Equal(t, 10, info.Humans())
	assert.Equal(t, "Dedicado", info.ServerType)
	assert.Equal(t, "Linux", info.Platform)
	assert.True(t, info.VAC)
	assert.False(t, info.Password)
	assert.Equal(t, "1.38.0.0", info.Version)
	assert.Equal(t, uint16(27015), info.Port)
	assert.Equal(t, "de_test [(Mapa del Workshop)](https://steamcommunity.com/sharedfiles/filedetails/?id=123456)", info.MapLink())

	_, err = ParseInfo([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestQueryInfoWithChallenge(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	go func() {
		buf := make([]byte, 1400)
		for i := 0; i < 2; i++ {
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			if n == len(infoRequest(nil)) {
				_, _ = pc.WriteTo([]byte{0xFF, 0xFF, 0xFF, 0xFF, 'A', 1, 2, 3, 4}, addr)
				continue
			}
			if bytes.HasSuffix(buf[:n], []byte{1, 2, 3, 4}) {
				_, _ = pc.WriteTo(infoPacket(), addr)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	info, err := QueryInfo(ctx, pc.LocalAddr().String())
	require.NoError(t, err)
	assert.Equal(t, "My Server", info.Name)
}
