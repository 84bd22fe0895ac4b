// Package cleverbot talks to cleverbot.io, on command or when mentioned.
package cleverbot

import (
	"context"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/cleverbot"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/bson"
)

const requestTimeout = 20 * time.Second

// Cog holds the cleverbot.io session
type Cog struct {
	client *cleverbot.Client
}

// Register adds /cleverbot and /cleverbotset
func Register(client *discord.ExtendedClient, user, key string) *Cog {
	c := &Cog{client: cleverbot.New(user, key, "cogsbot")}
	h := client.CommandHandler

	ask := discord.NewCommand("cleverbot", "Habla con Cleverbot", "cleverbot", c.askHandler).
		WithOptions(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "texto",
			Description: "Lo que quieres decirle",
			Required:    true,
		})
	h.RegisterCommand(ask)

	h.AddGlobalCommand(h.BuildCommandGroup("cleverbotset", "Ajustes de Cleverbot",
		discord.NewCommand("toggle", "Responder cuando mencionan al bot", "cleverbot", c.toggleHandler).
			WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase().InGuild(),
	))
	return c
}

// Enabled reports whether mention replies are on in a guild
func Enabled(guildID string) bool {
	if database.GlobalCleverbotDM == nil || guildID == "" {
		return false
	}
	g, err := database.GlobalCleverbotDM.Get(bson.M{"guild_id": guildID})
	if err != nil || g == nil {
		return false
	}
	return g.Enabled
}

// StripMention removes a leading mention of botID. ok is false when the
// message does not start with one.
func StripMention(content, botID string) (string, bool) {
	for _, prefix := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, prefix) {
			return strings.TrimSpace(content[len(prefix):]), true
		}
	}
	return content, false
}

func (c *Cog) ask(text string) (string, error) {
	rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.client.Ask(rctx, text)
}

func (c *Cog) askHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		answer, err := c.ask(ctx.GetStringOption("texto"))
		if err != nil {
			ctx.Fail(err, "Cleverbot")
			return
		}
		ctx.EditReply(discord.Truncate(answer, discord.MaxMessageLength))
	}()
	return nil
}

func (c *Cog) toggleHandler(ctx *discord.CommandContext) error {
	gid := ctx.Interaction.GuildID
	enabled := !Enabled(gid)
	_, err := database.GlobalCleverbotDM.Set(bson.M{"guild_id": gid}, &models.CleverbotGuild{GuildID: gid, Enabled: enabled})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Cleverbot")))
	}
	msg := "Ya no responderé cuando me mencionen."
	if enabled {
		msg = "Ahora responderé cuando me mencionen."
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

// OnMessage answers messages that start with a mention of the bot
func (c *Cog) OnMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || s.State.User == nil {
		return
	}
	text, ok := StripMention(m.Content, s.State.User.ID)
	if !ok || text == "" || !Enabled(m.GuildID) {
		return
	}
	s.ChannelTyping(m.ChannelID)
	answer, err := c.ask(text)
	if err != nil {
		logger.Warn("Cleverbot no respondió: "+err.Error(), "Cleverbot")
		return
	}
	_, err = s.ChannelMessageSendReply(m.ChannelID, discord.Truncate(answer, discord.MaxMessageLength), m.Reference())
	if err != nil {
		logger.Error("Error respondiendo: "+err.Error(), "Cleverbot")
	}
}
