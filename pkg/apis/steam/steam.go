// Package steam wraps the Steam Web API, the steamstat.us status feed and
// the A2S server query.
package steam

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"golang.org/x/sync/errgroup"
)

// APIURL is the Steam Web API
const APIURL = "https://api.steampowered.com"

// Errors returned by the Web API helpers
const (
	ErrNoAPIKey     = errors.Sentinel("la clave de la API de Steam no está configurada")
	ErrUserNotFound = errors.Sentinel("usuario de Steam no encontrado")
)

// Persona states
var personaStates = map[int]string{
	0: "Desconectado",
	1: "Conectado",
	2: "Ocupado",
	3: "Ausente",
	4: "Durmiendo",
	5: "Buscando intercambio",
	6: "Buscando partida",
}

// Profile visibility states
var visibilities = map[int]string{
	1: "Privado",
	2: "Solo amigos",
	3: "Público",
	4: "Solo usuarios",
	5: "Público",
}

// Embed colors by presence
const (
	ColorInGame  = 0x90BA3C
	ColorOnline  = 0x57CBDE
	ColorOffline = 0x898989
)

// Summary is a GetPlayerSummaries entry
type Summary struct {
	SteamID                  string `json:"steamid"`
	PersonaName              string `json:"personaname"`
	ProfileURL               string `json:"profileurl"`
	Avatar                   string `json:"avatar"`
	AvatarMedium             string `json:"avatarmedium"`
	AvatarFull               string `json:"avatarfull"`
	PersonaState             int    `json:"personastate"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	ProfileState             int    `json:"profilestate"`
	LastLogoff               int64  `json:"lastlogoff"`
	CommentPermission        int    `json:"commentpermission"`
	RealName                 string `json:"realname"`
	PrimaryClanID            string `json:"primaryclanid"`
	TimeCreated              int64  `json:"timecreated"`
	GameID                   string `json:"gameid"`
	GameServerIP             string `json:"gameserverip"`
	GameExtraInfo            string `json:"gameextrainfo"`
	LocCountryCode           string `json:"loccountrycode"`
	LocStateCode             string `json:"locstatecode"`
}

// Bans is a GetPlayerBans entry
type Bans struct {
	SteamID          string `json:"SteamId"`
	CommunityBanned  bool   `json:"CommunityBanned"`
	VACBanned        bool   `json:"VACBanned"`
	NumberOfVACBans  int    `json:"NumberOfVACBans"`
	DaysSinceLastBan int    `json:"DaysSinceLastBan"`
	NumberOfGameBans int    `json:"NumberOfGameBans"`
	EconomyBan       string `json:"EconomyBan"`
}

// Profile merges the summary, bans and level of a user
type Profile struct {
	ID       ID
	Summary  Summary
	Bans     Bans
	Level    int
	SharedBy *Summary
}

// PersonaState names the online state
func (p *Profile) PersonaState() string {
	if s, ok := personaStates[p.Summary.PersonaState]; ok {
		return s
	}
	return personaStates[0]
}

// Visibility names the profile visibility
func (p *Profile) Visibility() string {
	if v, ok := visibilities[p.Summary.CommunityVisibilityState]; ok {
		return v
	}
	return visibilities[1]
}

// Color is the embed color for the current presence
func (p *Profile) Color() int {
	switch {
	case p.Summary.GameExtraInfo != "":
		return ColorInGame
	case p.Summary.PersonaState > 0:
		return ColorOnline
	}
	return ColorOffline
}

// GameServer is the server the user plays on, empty when none
func (p *Profile) GameServer() string {
	if p.Summary.GameServerIP == "0.0.0.0:0" {
		return ""
	}
	return p.Summary.GameServerIP
}

// EconomyBan is empty when there is no economy ban
func (p *Profile) EconomyBan() string {
	if p.Bans.EconomyBan == "none" {
		return ""
	}
	return p.Bans.EconomyBan
}

// BansDescription summarizes the bans of the user
func (p *Profile) BansDescription() string {
	switch {
	case p.Bans.VACBanned || p.Bans.NumberOfGameBans > 0:
		return fmt.Sprintf("Días desde el último baneo: %d", p.Bans.DaysSinceLastBan)
	case p.Bans.CommunityBanned || p.EconomyBan() != "":
		return "Tiene uno o más baneos:"
	}
	return "Sin baneos registrados"
}

// LastSeen is the last logoff time, zero when hidden
func (p *Profile) LastSeen() time.Time {
	if p.Summary.LastLogoff == 0 {
		return time.Time{}
	}
	return time.Unix(p.Summary.LastLogoff, 0).UTC()
}

// Client talks to the Steam Web API
type Client struct {
	http *httpx.Client
	key  string
}

// New creates a client. opts are passed to the HTTP client.
func New(key string, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(APIURL)}, opts...)
	return &Client{http: httpx.New("steam", opts...), key: key}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	if c.key == "" {
		return errors.WithStack(ErrNoAPIKey)
	}
	q.Set("key", c.key)
	return c.http.GetJSON(ctx, path, q, out)
}

// ResolveID turns a profile URL, vanity name, SteamID2 or SteamID64 into a SteamID64
func (c *Client) ResolveID(ctx context.Context, arg string) (ID, error) {
	arg = ProfileArg(arg)
	if arg == "" {
		return 0, errors.WithStack(ErrUserNotFound)
	}
	if strings.Trim(arg, "0123456789") == "" {
		return ParseID64(arg)
	}
	if strings.HasPrefix(strings.ToUpper(arg), "STEAM_") {
		return ParseSteam2(arg)
	}
	var raw struct {
		Response struct {
			SteamID string `json:"steamid"`
			Success int    `json:"success"`
		} `json:"response"`
	}
	if err := c.get(ctx, "ISteamUser/ResolveVanityURL/v1/", url.Values{"vanityurl": {arg}}, &raw); err != nil {
		return 0, err
	}
	if raw.Response.SteamID == "" {
		return 0, errors.WithStack(ErrUserNotFound)
	}
	return ParseID64(raw.Response.SteamID)
}

// Summary returns the player summary of id
func (c *Client) Summary(ctx context.Context, id ID) (*Summary, error) {
	var raw struct {
		Response struct {
			Players []Summary `json:"players"`
		} `json:"response"`
	}
	if err := c.get(ctx, "ISteamUser/GetPlayerSummaries/v2/", url.Values{"steamids": {id.String()}}, &raw); err != nil {
		return nil, err
	}
	if len(raw.Response.Players) == 0 {
		return nil, errors.WithStack(ErrUserNotFound)
	}
	return &raw.Response.Players[0], nil
}

// Bans returns the ban record of id
func (c *Client) Bans(ctx context.Context, id ID) (*Bans, error) {
	var raw struct {
		Players []Bans `json:"players"`
	}
	if err := c.get(ctx, "ISteamUser/GetPlayerBans/v1/", url.Values{"steamids": {id.String()}}, &raw); err != nil {
		return nil, err
	}
	if len(raw.Players) == 0 {
		return nil, errors.WithStack(ErrUserNotFound)
	}
	return &raw.Players[0], nil
}

// Level returns the Steam level of id
func (c *Client) Level(ctx context.Context, id ID) (int, error) {
	var raw struct {
		Response struct {
			PlayerLevel int `json:"player_level"`
		} `json:"response"`
	}
	if err := c.get(ctx, "IPlayerService/GetSteamLevel/v1/", url.Values{"steamid": {id.String()}}, &raw); err != nil {
		return 0, err
	}
	return raw.Response.PlayerLevel, nil
}

// Lender returns who shares the running game with id, zero when the game is owned
func (c *Client) Lender(ctx context.Context, id ID, appID string) (ID, error) {
	var raw struct {
		Response struct {
			LenderSteamID string `json:"lender_steamid"`
		} `json:"response"`
	}
	q := url.Values{"steamid": {id.String()}, "appid_playing": {appID}}
	if err := c.get(ctx, "IPlayerService/IsPlayingSharedGame/v1/", q, &raw); err != nil {
		return 0, err
	}
	if raw.Response.LenderSteamID == "" || raw.Response.LenderSteamID == "0" {
		return 0, nil
	}
	return ParseID64(raw.Response.LenderSteamID)
}

// Profile resolves arg and fetches the summary, bans and level in parallel
func (c *Client) Profile(ctx context.Context, arg string) (*Profile, error) {
	id, err := c.ResolveID(ctx, arg)
	if err != nil {
		return nil, err
	}
	p := &Profile{ID: id}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.Summary(gctx, id)
		if err != nil {
			return err
		}
		p.Summary = *s
		return nil
	})
	g.Go(func() error {
		b, err := c.Bans(gctx, id)
		if err != nil {
			return err
		}
		p.Bans = *b
		return nil
	})
	g.Go(func() error {
		lvl, err := c.Level(gctx, id)
		if err != nil {
			// private profiles hide the level
			return nil
		}
		p.Level = lvl
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.Summary.GameID != "" {
		if lender, err := c.Lender(ctx, id, p.Summary.GameID); err == nil && lender != 0 {
			if s, err := c.Summary(ctx, lender); err == nil {
				p.SharedBy = s
			}
		}
	}
	return p, nil
}
