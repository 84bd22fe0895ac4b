package minecraft

import (
	"context"
	"net"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/Tnze/go-mc/bot"
	"github.com/goccy/go-json"
)

// DefaultPort is the Java edition server port
const DefaultPort = "25565"

// Pinger performs the server list ping and returns the raw status JSON
type Pinger interface {
	Ping(ctx context.Context, addr string) ([]byte, time.Duration, error)
}

type goMCPinger struct{}

func (goMCPinger) Ping(ctx context.Context, addr string) ([]byte, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return bot.PingAndListContext(ctx, addr)
}

// ServerStatus is the parsed server list ping
type ServerStatus struct {
	Address  string
	Latency  time.Duration
	Version  string
	Protocol int
	Online   int
	Max      int
	Sample   []string
	MOTD     string
	Favicon  string
}

type chatComponent struct {
	Text  string          `json:"text"`
	Extra []chatComponent `json:"extra"`
}

func (c chatComponent) plain() string {
	var sb strings.Builder
	sb.WriteString(c.Text)
	for _, e := range c.Extra {
		sb.WriteString(e.plain())
	}
	return sb.String()
}

// NormalizeAddress appends the default port when missing
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultPort)
}

// Server pings a Java edition server
func (c *Client) Server(ctx context.Context, addr string) (*ServerStatus, error) {
	addr = NormalizeAddress(addr)
	data, latency, err := c.pinger.Ping(ctx, addr)
	if err != nil {
		return nil, errors.WrapIf(err, "no se pudo contactar con el servidor")
	}
	status, err := ParseStatus(data)
	if err != nil {
		return nil, err
	}
	status.Address = addr
	status.Latency = latency
	return status, nil
}

// ParseStatus decodes a server list ping response
func ParseStatus(data []byte) (*ServerStatus, error) {
	var raw struct {
		Version struct {
			Name     string `json:"name"`
			Protocol int    `json:"protocol"`
		} `json:"version"`
		Players struct {
			Max    int `json:"max"`
			Online int `json:"online"`
			Sample []struct {
				Name string `json:"name"`
			} `json:"sample"`
		} `json:"players"`
		Description json.RawMessage `json:"description"`
		Favicon     string          `json:"favicon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapIf(err, "respuesta de estado inválida")
	}
	s := &ServerStatus{
		Version:  raw.Version.Name,
		Protocol: raw.Version.Protocol,
		Online:   raw.Players.Online,
		Max:      raw.Players.Max,
		Favicon:  raw.Favicon,
	}
	for _, p := range raw.Players.Sample {
		s.Sample = append(s.Sample, p.Name)
	}
	s.MOTD = parseDescription(raw.Description)
	return s, nil
}

// formatCodes strips legacy § color and style codes
var formatCodes = func() *strings.Replacer {
	var pairs []string
	for _, c := range "0123456789abcdefklmnor" {
		pairs = append(pairs, "§"+string(c), "")
	}
	return strings.NewReplacer(pairs...)
}()

func parseDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return formatCodes.Replace(text)
	}
	var comp chatComponent
	if err := json.Unmarshal(raw, &comp); err == nil {
		return formatCodes.Replace(comp.plain())
	}
	return ""
}
