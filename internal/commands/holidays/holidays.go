// Package holidays lists public holidays by country and month.
package holidays

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/apis/holidays"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const requestTimeout = 15 * time.Second

// ErrUnknownCountry is returned for codes Enrico does not support
const ErrUnknownCountry = errors.Sentinel("país no soportado, elige uno de la lista")

// Cog holds the Enrico client
type Cog struct {
	client *holidays.Client
	now    func() time.Time
}

// Register adds /holidays
func Register(client *discord.ExtendedClient, baseURL string) *Cog {
	c := &Cog{client: holidays.New(baseURL), now: time.Now}
	month, year := 1.0, 2011.0
	cmd := discord.NewCommand("holidays", "Festivos de un país en un mes", "holidays", c.handler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "pais",
				Description:  "País",
				Required:     true,
				Autocomplete: true,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "mes",
				Description: "Mes (el actual por defecto)",
				MinValue:    &month,
				MaxValue:    12,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "anio",
				Description: "Año (el actual por defecto)",
				MinValue:    &year,
				MaxValue:    32767,
			},
		).
		WithAutoComplete(func(ctx *discord.CommandContext) { ctx.Suggest(CountryLabels()) })
	client.CommandHandler.RegisterCommand(cmd)
	return c
}

// CountryLabels lists "code - name" for autocompletion, sorted by name
func CountryLabels() []string {
	out := make([]string, 0, len(holidays.Countries))
	for code, name := range holidays.Countries {
		out = append(out, code+" - "+name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][6:] < out[j][6:] })
	return out
}

// CountryCode accepts a bare code or an autocompleted label
func CountryCode(v string) (string, error) {
	fields := strings.Fields(strings.ToLower(v))
	if len(fields) == 0 {
		return "", errors.WithStack(ErrUnknownCountry)
	}
	if _, ok := holidays.Countries[fields[0]]; !ok {
		return "", errors.WithStack(ErrUnknownCountry)
	}
	return fields[0], nil
}

func (c *Cog) handler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		country, err := CountryCode(ctx.GetStringOption("pais"))
		if err != nil {
			ctx.Fail(err, "Holidays")
			return
		}
		now := c.now()
		month, year := int(ctx.GetIntOption("mes")), int(ctx.GetIntOption("anio"))
		if month == 0 {
			month = int(now.Month())
		}
		if year == 0 {
			year = now.Year()
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		hs, err := c.client.Month(rctx, country, month, year)
		if err != nil {
			ctx.Fail(err, "Holidays")
			return
		}
		header := fmt.Sprintf("**%s, %02d/%d**\n", holidays.Countries[country], month, year)
		ctx.EditReply(header + discord.Box(holidays.Table(hs), ""))
	}()
	return nil
}
