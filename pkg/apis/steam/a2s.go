package steam

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"

	"emperror.dev/errors"
)

// DefaultServerPort is the Source engine query port
const DefaultServerPort = "27015"

// ErrNoResponse is returned when the server does not answer the query
const ErrNoResponse = errors.Sentinel("no se pudo contactar con el servidor o no está en la lista maestra de Steam")

const (
	a2sInfoRequest   = 'T'
	a2sInfoResponse  = 'I'
	a2sChallenge     = 'A'
	a2sPayload       = "Source Engine Query\x00"
	a2sMaxPacketSize = 1400
)

var a2sHeader = []byte{0xFF, 0xFF, 0xFF, 0xFF}

// ServerInfo is an A2S_INFO response
type ServerInfo struct {
	Protocol   byte
	Name       string
	Map        string
	Folder     string
	Game       string
	AppID      uint16
	Players    int
	MaxPlayers int
	Bots       int
	ServerType string
	Platform   string
	Password   bool
	VAC        bool
	Version    string
	Port       uint16
	Keywords   string
	GameID     uint64
	Address    string
}

// Humans is the player count without bots
func (s *ServerInfo) Humans() int { return s.Players - s.Bots }

// MapLink formats the map name, linking workshop maps
func (s *ServerInfo) MapLink() string {
	if !strings.HasPrefix(strings.ToLower(s.Map), "workshop") {
		return s.Map
	}
	parts := strings.Split(s.Map, "/")
	if len(parts) < 3 {
		return s.Map
	}
	return fmt.Sprintf("%s [(Mapa del Workshop)](https://steamcommunity.com/sharedfiles/filedetails/?id=%s)", parts[2], parts[1])
}

// NormalizeServerAddress appends the default query port when missing
func NormalizeServerAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultServerPort)
}

// QueryInfo sends A2S_INFO to addr over UDP, answering a challenge when the server asks for one
func QueryInfo(ctx context.Context, addr string) (*ServerInfo, error) {
	addr = NormalizeServerAddress(addr)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, errors.WrapIf(err, "dirección del servidor no válida")
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	request := infoRequest(nil)
	for attempt := 0; attempt < 3; attempt++ {
		if _, err := conn.Write(request); err != nil {
			return nil, errors.WrapIf(err, "enviar consulta A2S")
		}
		buf := make([]byte, a2sMaxPacketSize)
		n, err := conn.Read(buf)
		if err != nil {
			return nil, errors.WithStack(ErrNoResponse)
		}
		packet := buf[:n]
		if len(packet) >= 9 && packet[4] == a2sChallenge {
			request = infoRequest(packet[5:9])
			continue
		}
		info, err := ParseInfo(packet)
		if err != nil {
			return nil, err
		}
		info.Address = conn.RemoteAddr().String()
		return info, nil
	}
	return nil, errors.WithStack(ErrNoResponse)
}

func infoRequest(challenge []byte) []byte {
	var b bytes.Buffer
	b.Write(a2sHeader)
	b.WriteByte(a2sInfoRequest)
	b.WriteString(a2sPayload)
	b.Write(challenge)
	return b.Bytes()
}

type packetReader struct {
	r   *bytes.Reader
	err error
}

func (p *packetReader) readByte() byte {
	if p.err != nil {
		return 0
	}
	b, err := p.r.ReadByte()
	p.err = err
	return b
}

func (p *packetReader) readString() string {
	var sb strings.Builder
	for {
		b := p.readByte()
		if p.err != nil || b == 0 {
			return sb.String()
		}
		sb.WriteByte(b)
	}
}

func (p *packetReader) read(v interface{}) {
	if p.err != nil {
		return
	}
	p.err = binary.Read(p.r, binary.LittleEndian, v)
}

// ParseInfo decodes a single packet A2S_INFO response
func ParseInfo(packet []byte) (*ServerInfo, error) {
	if len(packet) < 6 || !bytes.Equal(packet[:4], a2sHeader) || packet[4] != a2sInfoResponse {
		return nil, errors.New("respuesta A2S_INFO inválida")
	}
	p := &packetReader{r: bytes.NewReader(packet[5:])}
	info := &ServerInfo{}
	info.Protocol = p.readByte()
	info.Name = strings.TrimSpace(p.readString())
	info.Map = p.readString()
	info.Folder = p.readString()
	info.Game = p.readString()
	p.read(&info.AppID)
	info.Players = int(p.readByte())
	info.MaxPlayers = int(p.readByte())
	info.Bots = int(p.readByte())
	info.ServerType = serverType(p.readByte())
	info.Platform = platform(p.readByte())
	info.Password = p.readByte() == 1
	info.VAC = p.readByte() == 1
	if info.AppID == 2400 {
		// The Ship: mode, witnesses, duration
		p.readByte()
		p.readByte()
		p.readByte()
	}
	info.Version = p.readString()
	if p.err != nil {
		return nil, errors.WrapIf(p.err, "respuesta A2S_INFO incompleta")
	}

	edf := p.readByte()
	if p.err != nil {
		return info, nil
	}
	if edf&0x80 != 0 {
		p.read(&info.Port)
	}
	if edf&0x10 != 0 {
		var steamID uint64
		p.read(&steamID)
	}
	if edf&0x40 != 0 {
		var port uint16
		p.read(&port)
		p.readString()
	}
	if edf&0x20 != 0 {
		info.Keywords = p.readString()
	}
	if edf&0x01 != 0 {
		p.read(&info.GameID)
	}
	return info, nil
}

func serverType(b byte) string {
	switch b {
	case 'd', 'D':
		return "Dedicado"
	case 'l', 'L':
		return "No dedicado"
	case 'p', 'P':
		return "Proxy SourceTV"
	}
	return "Desconocido"
}

func platform(b byte) string {
	switch b {
	case 'l', 'L':
		return "Linux"
	case 'w', 'W':
		return "Windows"
	case 'm', 'M', 'o', 'O':
		return "Mac"
	}
	return "Desconocido"
}
