// Package imagesearch finds the source of images with SauceNAO and trace.moe.
package imagesearch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/saucenao"
	"github.com/PancyStudios/CogsBotGo/pkg/apis/tracemoe"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/imagefinder"
	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
)

const (
	searchTimeout  = 45 * time.Second
	searchCooldown = 30 * time.Second
	recentMessages = 10
)

// Cog holds the search clients and the last known SauceNAO limits
type Cog struct {
	pages     *discord.Interactive
	sauce     *saucenao.Client
	trace     *tracemoe.Client
	numRes    atomic.Int64
	cooldowns *cache.Cache

	mu     sync.Mutex
	limits *saucenao.Limits
}

// Register adds /saucenao and /tracemoe
func Register(client *discord.ExtendedClient, sauceKey, traceToken string) *Cog {
	c := &Cog{
		pages:     client.Interactive,
		sauce:     saucenao.New(sauceKey),
		trace:     tracemoe.New(traceToken),
		cooldowns: cache.New(searchCooldown, time.Minute),
	}
	c.numRes.Store(saucenao.DefaultNumRes)
	h := client.CommandHandler

	min := 1.0
	h.AddGlobalCommand(h.BuildCommandGroup("saucenao", "Busca el origen de una imagen en SauceNAO",
		discord.NewCommand("search", "Busca una imagen", "imagesearch", c.sauceHandler).WithOptions(imageOptions()...),
		discord.NewCommand("maxres", "Cuántos resultados pedir", "imagesearch", c.maxResHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "resultados",
				Description: "Número de resultados (6 por defecto)",
				Required:    true,
				MinValue:    &min,
				MaxValue:    40,
			}).AsOwner(),
		discord.NewCommand("stats", "Búsquedas restantes", "imagesearch", c.sauceStatsHandler).AsOwner(),
	))
	h.AddGlobalCommand(h.BuildCommandGroup("tracemoe", "Busca de qué anime es una captura",
		discord.NewCommand("search", "Busca una captura", "imagesearch", c.traceHandler).WithOptions(imageOptions()...),
		discord.NewCommand("stats", "Cuota restante", "imagesearch", c.traceStatsHandler).AsOwner(),
	))
	return c
}

func imageOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "imagen",
			Description: "Imagen adjunta",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "fuente",
			Description: "Enlace, emoji personalizado, mención o ID de usuario",
		},
	}
}

// query collects the candidate images of a command
func query(ctx *discord.CommandContext) imagefinder.Query {
	q := imagefinder.Query{Argument: ctx.GetStringOption("fuente")}
	if opt := ctx.GetOption("imagen"); opt != nil {
		if resolved := ctx.Interaction.ApplicationCommandData().Resolved; resolved != nil {
			if id, ok := opt.Value.(string); ok {
				if att, found := resolved.Attachments[id]; found {
					q.Attachments = append(q.Attachments, att)
				}
			}
		}
	}
	if len(q.Attachments) == 0 && q.Argument == "" {
		q.Recent, _ = ctx.Session.ChannelMessages(ctx.Interaction.ChannelID, recentMessages, "", "", "")
	}
	return q
}

func (c *Cog) resolveImage(ctx *discord.CommandContext) (string, error) {
	return imagefinder.Resolve(query(ctx), func(id string) (*discordgo.User, error) {
		return ctx.Session.User(id)
	})
}

// throttle reports the remaining cooldown of a user for a command
func (c *Cog) throttle(command, userID string) time.Duration {
	key := command + ":" + userID
	if exp, found := c.cooldowns.Get(key); found {
		return time.Until(exp.(time.Time)).Round(time.Second)
	}
	c.cooldowns.SetDefault(key, time.Now().Add(searchCooldown))
	return 0
}

func timeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), searchTimeout)
}

func nothingFound() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: "No encontré nada.", Color: discord.ColorInfo}
}

func cooldownMessage(wait time.Duration) string {
	return fmt.Sprintf("Espera %s antes de buscar otra vez.", wait)
}
