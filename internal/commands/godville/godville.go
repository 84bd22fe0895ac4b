// Package godville shows Godville hero profiles.
package godville

import (
	"context"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/godville"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson"
)

const requestTimeout = 15 * time.Second

// Game servers
const (
	ServerRu = "ru"
	ServerEn = "en"
)

// Cog holds one client per game server
type Cog struct {
	clients map[string]*godville.Client
}

// Register adds /godville
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{clients: map[string]*godville.Client{
		ServerRu: godville.New(godville.BaseURLRu),
		ServerEn: godville.New(godville.BaseURLEn),
	}}
	h := client.CommandHandler

	h.AddGlobalCommand(h.BuildCommandGroup("godville", "Perfiles de Godville",
		discord.NewCommand("profile", "Perfil de un dios", "godville", c.profileHandler).
			WithOptions(
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "dios",
					Description: "Nombre del dios",
					Required:    true,
				},
				serverOption(false),
			),
		discord.NewCommand("apikey", "Guarda tu clave de API para ver datos privados", "godville", c.setKeyHandler).
			WithOptions(
				serverOption(true),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "clave",
					Description: "Clave de la API (vacío para borrarla)",
				},
			).RequiresDatabase(),
	))
	return c
}

func serverOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "servidor",
		Description: "Servidor del juego",
		Required:    required,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "godvillegame.com", Value: ServerEn},
			{Name: "godville.net", Value: ServerRu},
		},
	}
}

func keyQuery(userID, server string) bson.M {
	return bson.M{"user_id": userID, "server": server}
}

// apiKey returns the stored key of a user, empty when there is none
func apiKey(userID, server string) string {
	if database.GlobalGodvilleDM == nil {
		return ""
	}
	k, err := database.GlobalGodvilleDM.Get(keyQuery(userID, server))
	if err != nil || k == nil {
		return ""
	}
	return k.Key
}

func server(ctx *discord.CommandContext) string {
	if s := ctx.GetStringOption("servidor"); s != "" {
		return s
	}
	return ServerEn
}

// ProfileEmbed renders a hero profile
func ProfileEmbed(p *godville.Profile, server string) *discordgo.MessageEmbed {
	base := "https://godvillegame.com/gods/"
	if server == ServerRu {
		base = "https://godville.net/gods/"
	}
	return &discordgo.MessageEmbed{
		Title:       p.GodName,
		URL:         base + p.GodName,
		Description: discord.Truncate(p.Text(), discord.MaxDescriptionLength),
		Color:       discord.ColorInfo,
	}
}

func (c *Cog) profileHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		srv := server(ctx)
		god := ctx.GetStringOption("dios")
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		// a stored key only opens the caller's own god
		key := apiKey(ctx.User().ID, srv)
		p, err := c.clients[srv].Profile(rctx, god, key)
		if err != nil && key != "" {
			p, err = c.clients[srv].Profile(rctx, god, "")
		}
		if err != nil {
			ctx.Fail(err, "Godville")
			return
		}
		ctx.EditReplyEmbed(ProfileEmbed(p, srv))
	}()
	return nil
}

func (c *Cog) setKeyHandler(ctx *discord.CommandContext) error {
	uid, srv := ctx.User().ID, server(ctx)
	key := ctx.GetStringOption("clave")
	if key == "" {
		if err := database.GlobalGodvilleDM.Delete(keyQuery(uid, srv)); err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Godville")))
		}
		return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed("Clave borrada."))
	}
	_, err := database.GlobalGodvilleDM.Set(keyQuery(uid, srv), &models.GodvilleKey{UserID: uid, Server: srv, Key: key})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Godville")))
	}
	return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed("Clave guardada. Solo sirve para tu propio dios."))
}
