// Package godville reads public hero profiles from Godville.
package godville

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
)

// Game servers
const (
	BaseURLRu = "https://godville.net/gods/api"
	BaseURLEn = "https://godvillegame.com/gods/api"
)

// ErrGodNotFound is returned for unknown gods
const ErrGodNotFound = errors.Sentinel("no existe ningún dios con ese nombre")

// Pet is the hero's pet
type Pet struct {
	Class   string `json:"pet_class"`
	Level   int    `json:"pet_level"`
	Name    string `json:"pet_name"`
	Wounded bool   `json:"wounded"`
}

// Profile is a hero profile. Fields behind the API key are zero without it.
type Profile struct {
	GodName            string `json:"godname"`
	Name               string `json:"name"`
	Motto              string `json:"motto"`
	Gender             string `json:"gender"`
	Level              int    `json:"level"`
	MaxHealth          int    `json:"max_health"`
	InventoryMaxNum    int    `json:"inventory_max_num"`
	Alignment          string `json:"alignment"`
	Clan               string `json:"clan"`
	ClanPosition       string `json:"clan_position"`
	GoldApprox         string `json:"gold_approx"`
	Savings            string `json:"savings"`
	TradingLevel       int    `json:"t_level"`
	ArenaWon           int    `json:"arena_won"`
	ArenaLost          int    `json:"arena_lost"`
	BricksCnt          int    `json:"bricks_cnt"`
	WoodCnt            int    `json:"wood_cnt"`
	ArkFemale          int    `json:"ark_f"`
	ArkMale            int    `json:"ark_m"`
	TempleCompletedAt  string `json:"temple_completed_at"`
	ArkCompletedAt     string `json:"ark_completed_at"`
	SavingsCompletedAt string `json:"savings_completed_at"`
	Pet                *Pet   `json:"pet"`

	// only with the god's API key
	Health        int    `json:"health"`
	Godpower      int    `json:"godpower"`
	Quest         string `json:"quest"`
	QuestProgress int    `json:"quest_progress"`
	Experience    int    `json:"exp_progress"`
	Distance      int    `json:"distance"`
	TownName      string `json:"town_name"`
	DiaryLast     string `json:"diary_last"`
	ArenaFight    bool   `json:"arena_fight"`
	FightType     string `json:"fight_type"`
	Aura          string `json:"aura"`
	Expired       bool   `json:"expired"`
}

var fightTypes = map[string]string{
	"sail":      "Expedición marítima",
	"arena":     "Arena",
	"challenge": "Entrenamiento",
	"dungeon":   "Mazmorra",
}

// FightTypeName translates the current fight kind, empty when not fighting
func (p *Profile) FightTypeName() string {
	return fightTypes[p.FightType]
}

// FormatDate converts an ISO timestamp to UTC as DD.MM.YYYY HH:MM:SS, empty when unset
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("02.01.2006 15:04:05")
}

// Header is the title line of the profile
func (p *Profile) Header() string {
	return fmt.Sprintf("**%s** y su **%s**\n*%s*", p.GodName, p.Name, p.Motto)
}

// Lines returns the labeled profile values, skipping empty ones
func (p *Profile) Lines() []string {
	var out []string
	add := func(label string, value interface{}) {
		switch v := value.(type) {
		case string:
			if v == "" {
				return
			}
		case int:
			if v == 0 {
				return
			}
		}
		out = append(out, fmt.Sprintf("%s: %v", label, value))
	}
	add("Nivel del héroe", p.Level)
	add("Sexo del héroe", p.Gender)
	add("Carácter del héroe", p.Alignment)
	add("Salud máxima", p.MaxHealth)
	add("Capacidad del inventario", p.InventoryMaxNum)
	add("Gremio", p.Clan)
	add("Rango en el gremio", p.ClanPosition)
	add("Oro aproximado", p.GoldApprox)
	add("Ahorros aproximados", p.Savings)
	add("Nivel de comerciante", p.TradingLevel)
	add("Victorias en la arena", p.ArenaWon)
	add("Derrotas en la arena", p.ArenaLost)
	add("Ladrillos", p.BricksCnt)
	add("Leños", p.WoodCnt)
	add("Criaturas hembra en el arca", p.ArkFemale)
	add("Criaturas macho en el arca", p.ArkMale)
	add("Templo terminado", FormatDate(p.TempleCompletedAt))
	add("Arca terminada", FormatDate(p.ArkCompletedAt))
	add("Pensión terminada", FormatDate(p.SavingsCompletedAt))
	add("Salud", p.Health)
	add("Poder divino", p.Godpower)
	add("Misión", p.Quest)
	add("Ciudad", p.TownName)
	add("Combate", p.FightTypeName())
	if p.Pet != nil && p.Pet.Name != "" {
		out = append(out, "Mascota:")
		out = append(out, "    Nombre: "+p.Pet.Name)
		if p.Pet.Class != "" {
			out = append(out, "    Especie: "+p.Pet.Class)
		}
		if p.Pet.Level > 0 {
			out = append(out, fmt.Sprintf("    Nivel: %d", p.Pet.Level))
		}
		if p.Pet.Wounded {
			out = append(out, "    Herida: sí")
		}
	}
	return out
}

// Text is the header followed by the values in a code block
func (p *Profile) Text() string {
	return p.Header() + "\n```\n" + strings.Join(p.Lines(), "\n") + "\n```"
}

// Client reads profiles from one game server
type Client struct {
	http *httpx.Client
}

// New creates a client for baseURL. opts are passed to the HTTP client.
func New(baseURL string, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(baseURL), httpx.WithRateLimit(1, 2)}, opts...)
	return &Client{http: httpx.New("godville", opts...)}
}

// Profile fetches the public profile of god, the extended one when apiKey is set
func (c *Client) Profile(ctx context.Context, god, apiKey string) (*Profile, error) {
	path := url.PathEscape(strings.TrimSpace(god))
	if apiKey != "" {
		path += "/" + url.PathEscape(apiKey)
	}
	var p Profile
	if err := c.http.GetJSON(ctx, path, nil, &p); err != nil {
		if httpx.IsNotFound(err) {
			return nil, errors.WithStack(ErrGodNotFound)
		}
		return nil, err
	}
	if p.GodName == "" {
		return nil, errors.WithStack(ErrGodNotFound)
	}
	return &p, nil
}
