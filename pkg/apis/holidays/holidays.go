// Package holidays lists public holidays from the Enrico service.
package holidays

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/table"
)

// BaseURL is the Enrico v1.0 JSON endpoint
const BaseURL = "https://kayaposoft.com/enrico/json/v1.0/"

// ErrNoHolidays is returned when the month has no holidays
const ErrNoHolidays = errors.Sentinel("no encontré festivos")

// Countries maps the supported country codes to their names
var Countries = map[string]string{
	"ago": "Angola", "aus": "Australia", "aut": "Austria", "bel": "Bélgica",
	"bra": "Brasil", "can": "Canadá", "chn": "China", "col": "Colombia",
	"hrv": "Croacia", "cze": "República Checa", "dnk": "Dinamarca", "eng": "Inglaterra",
	"est": "Estonia", "fin": "Finlandia", "fra": "Francia", "deu": "Alemania",
	"grc": "Grecia", "hkg": "Hong Kong", "hun": "Hungría", "isl": "Islandia",
	"irl": "Irlanda", "imn": "Isla de Man", "isr": "Israel", "ita": "Italia",
	"jpn": "Japón", "lva": "Letonia", "ltu": "Lituania", "lux": "Luxemburgo",
	"mex": "México", "nld": "Países Bajos", "nzl": "Nueva Zelanda", "pol": "Polonia",
	"prt": "Portugal", "rou": "Rumanía", "rus": "Rusia", "srb": "Serbia",
	"svk": "Eslovaquia", "svn": "Eslovenia", "zaf": "Sudáfrica", "kor": "Corea del Sur",
	"sct": "Escocia", "swe": "Suecia", "ukr": "Ucrania", "usa": "Estados Unidos",
	"wls": "Gales",
}

// Date is an Enrico date
type Date struct {
	Day       int `json:"day"`
	Month     int `json:"month"`
	Year      int `json:"year"`
	DayOfWeek int `json:"dayOfWeek"`
}

func (d Date) String() string { return fmt.Sprintf("%d.%d.%d", d.Day, d.Month, d.Year) }

// Holiday is one public holiday
type Holiday struct {
	Date        Date   `json:"date"`
	LocalName   string `json:"localName"`
	EnglishName string `json:"englishName"`
}

// Client queries Enrico
type Client struct {
	http *httpx.Client
}

// New creates a client for baseURL. opts are passed to the HTTP client.
func New(baseURL string, opts ...httpx.Option) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	opts = append([]httpx.Option{httpx.WithBaseURL(baseURL)}, opts...)
	return &Client{http: httpx.New("holidays", opts...)}
}

// Month returns the holidays of country in month/year
func (c *Client) Month(ctx context.Context, country string, month, year int) ([]Holiday, error) {
	q := url.Values{
		"action":  {"getPublicHolidaysForMonth"},
		"month":   {strconv.Itoa(month)},
		"year":    {strconv.Itoa(year)},
		"country": {strings.ToLower(country)},
	}
	data, err := c.http.GetBytes(ctx, "", q)
	if err != nil {
		return nil, err
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return nil, errors.New(apiErr.Error)
	}
	var out []Holiday
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.WrapIf(err, "respuesta de festivos inválida")
	}
	if len(out) == 0 {
		return nil, errors.WithStack(ErrNoHolidays)
	}
	return out, nil
}

// Table renders holidays as a text table
func Table(hs []Holiday) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Fecha", "Nombre", "Nombre (ENG)"})
	for _, h := range hs {
		t.AppendRow(table.Row{h.Date.String(), h.LocalName, h.EnglishName})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}
