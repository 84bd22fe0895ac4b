// Package minecraft wraps the Mojang API, the skin and cape services and
// the server list ping.
package minecraft

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Service URLs
const (
	MojangURL   = "https://api.mojang.com"
	StatusURL   = "https://status.mojang.com/check"
	CrafatarURL = "https://crafatar.com"
	OptifineURL = "http://s.optifine.net/capes"
	LabyModURL  = "http://capes.labymod.net/capes"
	FiveZigURL  = "http://textures.5zig.net/textures/2"
	MCCapesURL  = "https://www.minecraftcapes.co.uk/getCape.php"
)

// ErrPlayerNotFound is returned when Mojang does not know a nickname
const ErrPlayerNotFound = errors.Sentinel("jugador no encontrado en los servidores de Mojang")

// ErrNoCape is returned when a service has no cape for the player
const ErrNoCape = errors.Sentinel("el jugador no tiene capa")

var nicknameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// Player is a Minecraft account
type Player struct {
	Name string `json:"name"`
	// UUID without dashes, as Mojang returns it
	UUID string `json:"id"`
}

// DashedUUID returns the UUID in canonical form
func (p Player) DashedUUID() string {
	id, err := uuid.Parse(p.UUID)
	if err != nil {
		return p.UUID
	}
	return id.String()
}

func (p Player) String() string { return p.Name }

// HeadRender is the crafatar head render, with the helm layer when overlay is set
func (p Player) HeadRender(overlay bool) string {
	u := fmt.Sprintf("%s/renders/head/%s", CrafatarURL, p.UUID)
	if overlay {
		u += "?overlay"
	}
	return u
}

// BodyRender is the crafatar body render
func (p Player) BodyRender(overlay bool) string {
	u := fmt.Sprintf("%s/renders/body/%s.png", CrafatarURL, p.UUID)
	if overlay {
		u += "?overlay"
	}
	return u
}

// Skin is the raw skin file
func (p Player) Skin() string { return fmt.Sprintf("%s/skins/%s", CrafatarURL, p.UUID) }

// OptifineCape is the OptiFine cape image
func (p Player) OptifineCape() string { return fmt.Sprintf("%s/%s.png", OptifineURL, p.Name) }

// MinecraftCapesCape is the minecraftcapes.co.uk cape image
func (p Player) MinecraftCapesCape() string { return MCCapesURL + "?uuid=" + p.UUID }

// NameChange is one entry of the nickname history
type NameChange struct {
	Name string `json:"name"`
	// ChangedToAt is a unix time in milliseconds, zero for the first name
	ChangedToAt int64 `json:"changedToAt"`
}

// When formats the change date, "Inicial" for the first name
func (n NameChange) When() string {
	if n.ChangedToAt == 0 {
		return "Inicial"
	}
	return time.UnixMilli(n.ChangedToAt).UTC().Format("02.01.2006 15:04:05")
}

// ServiceStatus is the state of one Mojang service
type ServiceStatus struct {
	Service string
	Status  string
}

// Label turns the status color into a readable label
func (s ServiceStatus) Label() string {
	switch s.Status {
	case "red":
		return "💔 **NO DISPONIBLE**"
	case "yellow":
		return "💛 **ALGUNOS PROBLEMAS**"
	case "green":
		return "💚 **OK**"
	}
	return s.Status
}

// Client talks to Mojang and the cape services
type Client struct {
	http   *httpx.Client
	pinger Pinger
}

// New creates a client. opts are passed to the HTTP client.
func New(opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(MojangURL)}, opts...)
	return &Client{http: httpx.New("mojang", opts...), pinger: goMCPinger{}}
}

// WithPinger replaces the server list pinger
func (c *Client) WithPinger(p Pinger) *Client {
	c.pinger = p
	return c
}

// Player resolves a nickname
func (c *Client) Player(ctx context.Context, nickname string) (*Player, error) {
	if !nicknameRe.MatchString(nickname) {
		return nil, errors.WithStack(ErrPlayerNotFound)
	}
	data, err := c.http.GetBytes(ctx, "users/profiles/minecraft/"+nickname, nil)
	if httpx.IsNotFound(err) {
		return nil, errors.WithStack(ErrPlayerNotFound)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.WithStack(ErrPlayerNotFound)
	}
	var p Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.UUID == "" {
		return nil, errors.WithStack(ErrPlayerNotFound)
	}
	if _, err := uuid.Parse(p.UUID); err != nil {
		return nil, errors.Errorf("%s existe, pero su UUID es incorrecto", nickname)
	}
	return &p, nil
}

// NameHistory returns the nickname history of a player
func (c *Client) NameHistory(ctx context.Context, p *Player) ([]NameChange, error) {
	var out []NameChange
	if err := c.http.GetJSON(ctx, fmt.Sprintf("user/profiles/%s/names", p.UUID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Status returns the state of the Mojang services, sorted by name
func (c *Client) Status(ctx context.Context) ([]ServiceStatus, error) {
	var raw []map[string]string
	if err := c.http.GetJSON(ctx, StatusURL, nil, &raw); err != nil {
		return nil, err
	}
	var out []ServiceStatus
	for _, entry := range raw {
		for service, status := range entry {
			out = append(out, ServiceStatus{Service: service, Status: status})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out, nil
}

// LabyModCape downloads the LabyMod cape
func (c *Client) LabyModCape(ctx context.Context, p *Player) ([]byte, error) {
	data, err := c.http.GetBytes(ctx, LabyModURL+"/"+p.DashedUUID(), nil)
	if httpx.IsNotFound(err) {
		return nil, errors.WithStack(ErrNoCape)
	}
	return data, err
}

// FiveZigCape downloads the 5zig cape, or the animated one
func (c *Client) FiveZigCape(ctx context.Context, p *Player, animated bool) ([]byte, error) {
	var raw struct {
		Cape         string `json:"cape"`
		AnimatedCape string `json:"animatedCape"`
	}
	if err := c.http.GetJSON(ctx, FiveZigURL+"/"+p.UUID, nil, &raw); err != nil {
		if httpx.IsNotFound(err) {
			return nil, errors.WithStack(ErrNoCape)
		}
		return nil, err
	}
	encoded := raw.Cape
	if animated {
		encoded = raw.AnimatedCape
	}
	if encoded == "" {
		return nil, errors.WithStack(ErrNoCape)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.WrapIf(err, "decodificar capa de 5zig")
	}
	return data, nil
}
