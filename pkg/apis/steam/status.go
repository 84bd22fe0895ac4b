package steam

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

// StatusURL is the steamstat.us feed
const StatusURL = "https://vortigaunt.steamstat.us/not_an_api.json"

// StatusTTL is how long a status response is reused
const StatusTTL = 45 * time.Second

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.104 Safari/537.36"

var loadIndicators = []string{"💚", "💛", "💔"}

// Service is one steamstat.us entry
type Service struct {
	ID   string
	Load int
	Text string
}

// WithIndicator prefixes the text with a colored heart for the load
func (s Service) WithIndicator() string {
	if s.ID == "" {
		return ""
	}
	indicator := ""
	if s.Load >= 0 && s.Load < len(loadIndicators) {
		indicator = loadIndicators[s.Load]
	}
	return indicator + " " + s.Text
}

// Graph is the connection managers availability series
type Graph struct {
	// Start and Step are unix milliseconds
	Start int64     `json:"start"`
	Step  int64     `json:"step"`
	Data  []float64 `json:"data"`
}

// Status is a steamstat.us snapshot
type Status struct {
	Time     int64
	Services []Service
	Graph    *Graph
}

// Find returns the service with id, or an empty one
func (s *Status) Find(id string) Service {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc
		}
	}
	return Service{}
}

// Timestamp is the time of the snapshot
func (s *Status) Timestamp() time.Time { return time.Unix(s.Time, 0).UTC() }

// UnmarshalJSON reads services sent as [id, load, text] arrays
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw struct {
		Time     int64               `json:"time"`
		Services [][]json.RawMessage `json:"services"`
		Graph    *Graph              `json:"graph"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.Time = raw.Time
	s.Graph = raw.Graph
	s.Services = s.Services[:0]
	for _, entry := range raw.Services {
		if len(entry) < 3 {
			continue
		}
		var svc Service
		if err := json.Unmarshal(entry[0], &svc.ID); err != nil {
			continue
		}
		_ = json.Unmarshal(entry[1], &svc.Load)
		_ = json.Unmarshal(entry[2], &svc.Text)
		s.Services = append(s.Services, svc)
	}
	return nil
}

// StatusClient fetches steamstat.us and caches the result
type StatusClient struct {
	http  *httpx.Client
	cache *cache.Cache
}

// NewStatusClient creates a client. opts are passed to the HTTP client.
func NewStatusClient(opts ...httpx.Option) *StatusClient {
	opts = append([]httpx.Option{
		httpx.WithUserAgent(browserUserAgent),
		httpx.WithHeader("Referer", "https://steamstat.us/"),
	}, opts...)
	return &StatusClient{
		http:  httpx.New("steamstatus", opts...),
		cache: cache.New(StatusTTL, time.Minute),
	}
}

// Status returns the current snapshot, from cache when fresher than StatusTTL
func (c *StatusClient) Status(ctx context.Context) (*Status, error) {
	if v, ok := c.cache.Get("status"); ok {
		return v.(*Status), nil
	}
	var st Status
	if err := c.http.GetJSON(ctx, StatusURL, nil, &st); err != nil {
		return nil, errors.WrapIf(err, "no se pudieron obtener datos de steamstat.us")
	}
	c.cache.SetDefault("status", &st)
	return &st, nil
}

// Description lists the main services with indicators
func (s *Status) Description() string {
	return fmt.Sprintf("**En línea**: %s\n**En partida**: %s\n**Tienda**: %s\n**Comunidad**: %s\n"+
		"**Web API**: %s\n**Connection Managers**: %s\n**Base de datos de SteamDB.info**: %s",
		s.Find("online").WithIndicator(),
		s.Find("ingame").WithIndicator(),
		s.Find("store").WithIndicator(),
		s.Find("community").WithIndicator(),
		s.Find("webapi").WithIndicator(),
		s.Find("cms").WithIndicator(),
		s.Find("database").WithIndicator(),
	)
}

// Games lists the game coordinators with indicators
func (s *Status) Games() string {
	return fmt.Sprintf("**TF2 Game Coordinator**: %s\n**Dota 2 Game Coordinator**: %s\n"+
		"**Underlords Game Coordinator**: %s\n**Artifact Game Coordinator**: %s\n"+
		"**CS:GO Game Coordinator**: %s\n**CS:GO Sessions Logon**: %s\n"+
		"**CS:GO Player Inventories**: %s\n**CS:GO Matchmaking Scheduler**: %s",
		s.Find("tf2").WithIndicator(),
		s.Find("dota2").WithIndicator(),
		s.Find("underlords").WithIndicator(),
		s.Find("artifact").WithIndicator(),
		s.Find("csgo").WithIndicator(),
		s.Find("csgo_sessions").WithIndicator(),
		s.Find("csgo_community").WithIndicator(),
		s.Find("csgo_mm_scheduler").WithIndicator(),
	)
}

var (
	graphBackground = drawing.Color{R: 54, G: 57, B: 63, A: 255}
	graphLine       = drawing.Color{R: 114, G: 137, B: 218, A: 255}
)

// RenderGraph draws the connection managers series as a PNG
func RenderGraph(g *Graph) ([]byte, error) {
	if g == nil || len(g.Data) < 2 {
		return nil, errors.New("no hay datos del gráfico")
	}
	start := time.Now()
	xs := make([]time.Time, len(g.Data))
	cur := g.Start
	for i := range g.Data {
		cur += g.Step
		xs[i] = time.UnixMilli(cur).UTC()
	}

	ticks := make([]chart.Tick, 0, 20)
	for v := 0; v <= 100; v += 10 {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: fmt.Sprintf("%d", v)})
	}
	axisStyle := chart.Style{Show: true, StrokeColor: drawing.ColorWhite, FontColor: drawing.ColorWhite}
	graph := chart.Chart{
		Width:      800,
		Height:     400,
		Title:      "Steam Connection Managers",
		TitleStyle: chart.Style{Show: true, FontColor: drawing.ColorWhite},
		Background: chart.Style{Show: true, FillColor: graphBackground},
		Canvas:     chart.Style{Show: true, FillColor: graphBackground},
		XAxis: chart.XAxis{
			Name:      "Fecha",
			NameStyle: chart.Style{Show: true, FontColor: drawing.ColorWhite},
			Style:     axisStyle,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return time.Unix(0, int64(f)).UTC().Format("02 Jan 15:04")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:      "%",
			NameStyle: chart.Style{Show: true, FontColor: drawing.ColorWhite},
			Style:     axisStyle,
			Range:     &chart.ContinuousRange{Min: 0, Max: 100},
			Ticks:     ticks,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Style:   chart.Style{Show: true, StrokeColor: graphLine, StrokeWidth: 2},
				XValues: xs,
				YValues: g.Data,
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.WrapIf(err, "dibujar gráfico")
	}
	metrics.ObserveSince(metrics.Get().ImageRender.WithLabelValues("steam_cm_graph"), start)
	return buf.Bytes(), nil
}
