// Package weather shows current conditions and forecasts for a place.
package weather

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/apis/weather"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	requestTimeout = 20 * time.Second
	scopeGuild     = "guild"
	scopeUser      = "user"
	poweredBy      = "Powered by Dark Sky API"
)

// Cog holds the weather client
type Cog struct {
	pages  *discord.Interactive
	client *weather.Client
}

// Register adds /weather, /forecast and /weatherset
func Register(client *discord.ExtendedClient, apiKey, baseURL string) *Cog {
	c := &Cog{pages: client.Interactive, client: weather.New(apiKey, baseURL)}
	h := client.CommandHandler

	place := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "lugar",
		Description: "Ciudad, dirección o lugar",
		Required:    true,
	}
	for _, cmd := range []*discord.Command{
		discord.NewCommand("weather", "Clima actual de un lugar", "weather", c.weatherHandler).WithOptions(place),
		discord.NewCommand("forecast", "Pronóstico de los próximos días", "weather", c.forecastHandler).WithOptions(place),
	} {
		h.RegisterCommand(cmd)
	}

	h.AddGlobalCommand(h.BuildCommandGroup("weatherset", "Unidades del clima",
		discord.NewCommand("guild", "Unidades por defecto del servidor", "weather", c.setHandler(scopeGuild)).
			WithOptions(unitsOption()).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase().InGuild(),
		discord.NewCommand("user", "Tus unidades", "weather", c.setHandler(scopeUser)).
			WithOptions(unitsOption()).RequiresDatabase(),
	))
	return c
}

func unitsOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "unidades",
		Description: "Sistema de unidades",
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "SI (℃, m/s)", Value: "si"},
			{Name: "Canadá (℃, km/h)", Value: "ca"},
			{Name: "Reino Unido (℃, mph)", Value: "uk2"},
			{Name: "EE. UU. (℉, mph)", Value: "us"},
		},
	}
}

func unitsQuery(scope, id string) bson.M {
	return bson.M{"scope": scope, "id": id}
}

func stored(scope, id string) string {
	if database.GlobalWeatherDM == nil || id == "" {
		return ""
	}
	u, err := database.GlobalWeatherDM.Get(unitsQuery(scope, id))
	if err != nil {
		logger.Warn(err.Error(), "Weather")
		return ""
	}
	if u == nil {
		return ""
	}
	return u.Units
}

// units resolves the user preference, then the guild default
func units(ctx *discord.CommandContext) string {
	return weather.ResolveUnits(stored(scopeUser, ctx.User().ID), stored(scopeGuild, ctx.Interaction.GuildID))
}

func (c *Cog) setHandler(scope string) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		name, err := weather.NormalizeUnits(ctx.GetStringOption("unidades"))
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Weather")))
		}
		id := ctx.User().ID
		if scope == scopeGuild {
			id = ctx.Interaction.GuildID
		}
		_, err = database.GlobalWeatherDM.Set(unitsQuery(scope, id), &models.WeatherUnits{Scope: scope, ID: id, Units: name})
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(errors.WrapIf(err, "guardar unidades"), "Weather")))
		}
		return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed(fmt.Sprintf("Unidades cambiadas a `%s`.", name)))
	}
}

// load geocodes the place and fetches its forecast
func (c *Cog) load(ctx *discord.CommandContext) (weather.Place, *weather.Forecast, string, error) {
	rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	lang := weather.Lang(string(ctx.Interaction.Locale))
	place, err := c.client.Geocode(rctx, ctx.GetStringOption("lugar"), lang)
	if err != nil {
		return place, nil, "", err
	}
	u := units(ctx)
	f, err := c.client.Forecast(rctx, place, u, lang)
	return place, f, u, err
}

func embedFields(fields []weather.Field) []*discordgo.MessageEmbedField {
	out := make([]*discordgo.MessageEmbedField, len(fields))
	for i, f := range fields {
		out[i] = &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: true}
	}
	return out
}

// CurrentEmbed shows the current conditions at a place
func CurrentEmbed(place weather.Place, f *weather.Forecast, units string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       place.Title(),
		Description: place.MapsLink(),
		Color:       discord.ColorInfo,
		Fields:      embedFields(f.Currently.CurrentFields(units)),
		Footer:      &discordgo.MessageEmbedFooter{Text: poweredBy},
		Timestamp:   f.Currently.At().Format(time.RFC3339),
	}
}

// ForecastEmbeds builds one page per day
func ForecastEmbeds(place weather.Place, f *weather.Forecast, units string) []*discordgo.MessageEmbed {
	days := f.Days()
	pages := make([]*discordgo.MessageEmbed, len(days))
	for i, d := range days {
		pages[i] = &discordgo.MessageEmbed{
			Title:       place.Title(),
			Description: place.MapsLink(),
			Color:       discord.ColorInfo,
			Fields:      embedFields(d.DayFields(units)),
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s • Página %d/%d", poweredBy, i+1, len(days))},
			Timestamp:   d.At().Format(time.RFC3339),
		}
	}
	return pages
}

func (c *Cog) weatherHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		place, f, u, err := c.load(ctx)
		if err != nil {
			ctx.Fail(err, "Weather")
			return
		}
		ctx.EditReplyEmbed(CurrentEmbed(place, f, u))
	}()
	return nil
}

func (c *Cog) forecastHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		place, f, u, err := c.load(ctx)
		if err != nil {
			ctx.Fail(err, "Weather")
			return
		}
		pages := ForecastEmbeds(place, f, u)
		if len(pages) == 0 {
			ctx.EditReplyEmbed(discord.ErrorEmbed("No hay pronóstico para ese lugar."))
			return
		}
		c.pages.PaginateEdit(ctx, pages)
	}()
	return nil
}
