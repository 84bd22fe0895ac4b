// Package weather geocodes places with Nominatim and loads forecasts from a
// Dark Sky compatible API (Pirate Weather by default).
package weather

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
)

// NominatimURL is the OpenStreetMap geocoder
const NominatimURL = "https://nominatim.openstreetmap.org"

// DefaultUnits is used when neither the user nor the guild chose a system
const DefaultUnits = "si"

// ForecastDays is the number of daily pages shown by the forecast command
const ForecastDays = 8

const (
	ErrPlaceNotFound = errors.Sentinel("no encontré ese lugar")
	ErrNoAPIKey      = errors.Sentinel("falta la clave de la API del clima")
	ErrBadUnits      = errors.Sentinel("sistema de unidades no soportado")
)

// UnknownEmoji replaces missing icons and names
const UnknownEmoji = "❔"

// Units are the labels of one unit system
type Units struct {
	Distance     string
	Intensity    string
	Accumulation string
	Temp         string
	Speed        string
	Pressure     string
}

// UnitSystems lists the supported systems by API name
var UnitSystems = map[string]Units{
	"si":  {Distance: "km", Intensity: "mm/h", Accumulation: "cm", Temp: "℃", Speed: "m/s", Pressure: "hPa"},
	"ca":  {Distance: "km", Intensity: "mm/h", Accumulation: "cm", Temp: "℃", Speed: "km/h", Pressure: "hPa"},
	"uk2": {Distance: "mi", Intensity: "mm/h", Accumulation: "cm", Temp: "℃", Speed: "mph", Pressure: "hPa"},
	"us":  {Distance: "mi", Intensity: "″", Accumulation: "″", Temp: "℉", Speed: "mph", Pressure: "mbar"},
}

// NormalizeUnits lowercases name and checks it is supported
func NormalizeUnits(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := UnitSystems[name]; !ok {
		return "", errors.WithStack(ErrBadUnits)
	}
	return name, nil
}

// ResolveUnits picks the user preference, then the guild one, then si
func ResolveUnits(user, guild string) string {
	for _, u := range []string{user, guild} {
		if _, ok := UnitSystems[u]; ok {
			return u
		}
	}
	return DefaultUnits
}

var states = map[string]string{
	"clear-day":           "☀️",
	"clear-night":         "🌃",
	"rain":                "🌧️",
	"snow":                "🌨️",
	"sleet":               "❄️",
	"wind":                "🌬️",
	"fog":                 "🌫️",
	"cloudy":              "🌥️",
	"partly-cloudy-day":   "🌤️",
	"partly-cloudy-night": "🌃",
}

// StateEmoji maps an API icon name to an emoji
func StateEmoji(icon string) string {
	if e, ok := states[icon]; ok {
		return e
	}
	return UnknownEmoji
}

var precipNames = map[string]string{"rain": "Lluvia", "snow": "Nieve", "sleet": "Aguanieve"}

var directions = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSO", "SO", "OSO", "O", "ONO", "NO", "NNO",
}

// WindDirection converts a bearing in degrees to one of 16 compass points
func WindDirection(bearing float64) string {
	i := int(bearing/22.5+0.5) % 16
	if i < 0 {
		i += 16
	}
	return directions[i]
}

// MoonEmoji converts a lunation fraction (0 new, 0.5 full) to an emoji
func MoonEmoji(phase float64) string {
	switch {
	case phase == 0 || phase == 1:
		return "🌑"
	case phase < 0.25:
		return "🌒"
	case phase == 0.25:
		return "🌓"
	case phase < 0.5:
		return "🌔"
	case phase == 0.5:
		return "🌕"
	case phase < 0.75:
		return "🌖"
	case phase == 0.75:
		return "🌗"
	case phase < 1:
		return "🌘"
	}
	return fmt.Sprint(phase)
}

var supportedLangs = map[string]bool{
	"ar": true, "az": true, "be": true, "bg": true, "bn": true, "bs": true, "ca": true,
	"cs": true, "da": true, "de": true, "el": true, "en": true, "eo": true, "es": true,
	"et": true, "fi": true, "fr": true, "he": true, "hi": true, "hr": true, "hu": true,
	"id": true, "is": true, "it": true, "ja": true, "ka": true, "kn": true, "ko": true,
	"kw": true, "lv": true, "ml": true, "mr": true, "nb": true, "nl": true, "no": true,
	"pa": true, "pl": true, "pt": true, "ro": true, "ru": true, "sk": true, "sl": true,
	"sr": true, "sv": true, "ta": true, "te": true, "tr": true, "uk": true, "ur": true,
	"zh": true, "zh-tw": true,
}

// Lang maps a Discord locale (es-ES, zh-TW...) to a forecast language
func Lang(locale string) string {
	l := strings.ToLower(locale)
	if l == "zh-tw" {
		return l
	}
	if len(l) > 2 {
		l = l[:2]
	}
	if supportedLangs[l] {
		return l
	}
	return "en"
}

// Place is a geocoded location
type Place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Title shortens the place name for embed titles
func (p Place) Title() string {
	name := p.DisplayName
	if name == "" {
		name = UnknownEmoji
	}
	if r := []rune(name); len(r) > 244 {
		name = string(r[:243]) + "…"
	}
	return "Clima en " + name
}

// MapsLink links the place on Google Maps
func (p Place) MapsLink() string {
	return fmt.Sprintf("[Ver en Google Maps](https://www.google.com/maps/place/%s,%s)", p.Lat, p.Lon)
}

// DataPoint is one current, hourly or daily sample
type DataPoint struct {
	Time                   int64    `json:"time"`
	Summary                string   `json:"summary"`
	Icon                   string   `json:"icon"`
	Temperature            float64  `json:"temperature"`
	ApparentTemperature    float64  `json:"apparentTemperature"`
	TemperatureMin         float64  `json:"temperatureMin"`
	TemperatureMax         float64  `json:"temperatureMax"`
	ApparentTemperatureMin float64  `json:"apparentTemperatureMin"`
	ApparentTemperatureMax float64  `json:"apparentTemperatureMax"`
	Pressure               float64  `json:"pressure"`
	Humidity               float64  `json:"humidity"`
	Visibility             float64  `json:"visibility"`
	WindSpeed              float64  `json:"windSpeed"`
	WindBearing            float64  `json:"windBearing"`
	CloudCover             float64  `json:"cloudCover"`
	Ozone                  float64  `json:"ozone"`
	UVIndex                float64  `json:"uvIndex"`
	PrecipProbability      float64  `json:"precipProbability"`
	PrecipIntensity        float64  `json:"precipIntensity"`
	PrecipType             string   `json:"precipType"`
	PrecipAccumulation     *float64 `json:"precipAccumulation"`
	MoonPhase              float64  `json:"moonPhase"`
}

// At returns the sample time
func (d DataPoint) At() time.Time { return time.Unix(d.Time, 0).UTC() }

// Block is a list of samples with a summary
type Block struct {
	Summary string      `json:"summary"`
	Icon    string      `json:"icon"`
	Data    []DataPoint `json:"data"`
}

// Forecast is the API response
type Forecast struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timezone  string    `json:"timezone"`
	Currently DataPoint `json:"currently"`
	Daily     Block     `json:"daily"`
}

// Field is a name/value pair ready to become an embed field
type Field struct {
	Name  string
	Value string
}

func num(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

func pct(f float64) string { return fmt.Sprintf("%d%%", int(f*100)) }

func (d DataPoint) precipitation(u Units, withAccumulation bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Probabilidad: %s\nIntensidad: %d %s", pct(d.PrecipProbability), int(d.PrecipIntensity*100), u.Intensity)
	if d.PrecipType != "" {
		name, ok := precipNames[d.PrecipType]
		if !ok {
			name = d.PrecipType
		}
		fmt.Fprintf(&b, "\nTipo: %s", name)
	}
	if withAccumulation && d.PrecipAccumulation != nil && *d.PrecipAccumulation > 0 {
		fmt.Fprintf(&b, "\nAcumulación de nieve: %s %s", num(*d.PrecipAccumulation), u.Accumulation)
	}
	return b.String()
}

func (d DataPoint) common(u Units) []Field {
	return []Field{
		{"Presión", num(d.Pressure) + " " + u.Pressure},
		{"Humedad", pct(d.Humidity)},
		{"Visibilidad", num(d.Visibility) + " " + u.Distance},
		{"Viento", fmt.Sprintf("%s %s %s", WindDirection(d.WindBearing), num(d.WindSpeed), u.Speed)},
		{"Nubosidad", pct(d.CloudCover)},
		{"Ozono", num(d.Ozone) + " [DU](https://es.wikipedia.org/wiki/Unidad_Dobson)"},
		{"Índice UV", num(d.UVIndex)},
	}
}

// CurrentFields renders the current conditions
func (d DataPoint) CurrentFields(units string) []Field {
	u := UnitSystems[ResolveUnits(units, "")]
	fields := []Field{
		{"Resumen", StateEmoji(d.Icon) + " " + d.Summary},
		{"Temperatura", fmt.Sprintf("%s %s (%s %s)", num(d.Temperature), u.Temp, num(d.ApparentTemperature), u.Temp)},
	}
	fields = append(fields, d.common(u)...)
	return append(fields, Field{"Precipitación", d.precipitation(u, false)})
}

// DayFields renders one day of the daily forecast
func (d DataPoint) DayFields(units string) []Field {
	u := UnitSystems[ResolveUnits(units, "")]
	summary := d.Summary
	if summary == "" {
		summary = "Sin resumen para este día"
	}
	fields := []Field{
		{"Resumen", StateEmoji(d.Icon) + " " + summary},
		{"Temperatura", fmt.Sprintf("%s - %s %s\n(%s - %s %s)",
			num(d.TemperatureMin), num(d.TemperatureMax), u.Temp,
			num(d.ApparentTemperatureMin), num(d.ApparentTemperatureMax), u.Temp)},
	}
	fields = append(fields, d.common(u)...)
	return append(fields,
		Field{"Precipitación", d.precipitation(u, true)},
		Field{"Fase lunar", MoonEmoji(d.MoonPhase)},
	)
}

// Client geocodes places and loads forecasts
type Client struct {
	geo      *httpx.Client
	forecast *httpx.Client
	apiKey   string
}

// New creates a client. baseURL is the forecast API root; opts apply to both HTTP clients.
func New(apiKey, baseURL string, opts ...httpx.Option) *Client {
	geoOpts := append([]httpx.Option{httpx.WithBaseURL(NominatimURL), httpx.WithRateLimit(1, 1)}, opts...)
	fcOpts := append([]httpx.Option{httpx.WithBaseURL(baseURL)}, opts...)
	return &Client{
		geo:      httpx.New("nominatim", geoOpts...),
		forecast: httpx.New("weather", fcOpts...),
		apiKey:   apiKey,
	}
}

// Geocode finds the best match for query
func (c *Client) Geocode(ctx context.Context, query, lang string) (Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")
	q.Set("accept-language", lang)
	var places []Place
	if err := c.geo.GetJSON(ctx, "search", q, &places); err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, errors.WithStack(ErrPlaceNotFound)
	}
	return places[0], nil
}

// Forecast loads the forecast at the place
func (c *Client) Forecast(ctx context.Context, p Place, units, lang string) (*Forecast, error) {
	if c.apiKey == "" {
		return nil, errors.WithStack(ErrNoAPIKey)
	}
	q := url.Values{}
	q.Set("units", ResolveUnits(units, ""))
	q.Set("lang", lang)
	var f Forecast
	path := fmt.Sprintf("forecast/%s/%s,%s", url.PathEscape(c.apiKey), p.Lat, p.Lon)
	if err := c.forecast.GetJSON(ctx, path, q, &f); err != nil {
		return nil, errors.WrapIf(err, "cargar pronóstico")
	}
	return &f, nil
}

// Days returns up to ForecastDays daily samples
func (f *Forecast) Days() []DataPoint {
	if len(f.Daily.Data) > ForecastDays {
		return f.Daily.Data[:ForecastDays]
	}
	return f.Daily.Data
}
