// Package generalchannel lets members rename the server's general channel
// and edit its topic.
package generalchannel

import (
	"fmt"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	cooldown       = 60 * time.Second
	maxNameLength  = 100
	maxTopicLength = 1024
)

const errNotSet = errors.Sentinel("el canal general no está configurado")

// Cog holds the general channel commands
type Cog struct {
	cooldowns *cache.Cache
}

// Register adds /gc
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{cooldowns: cache.New(cooldown, time.Minute)}
	h := client.CommandHandler
	group := h.BuildCommandGroup("gc", "Nombre y tema del canal general",
		discord.NewCommand("set", "Elige el canal general (vacío para quitarlo)", "generalchannel", c.setHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "canal",
				Description:  "Canal de texto",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}).WithUserPermissions(discordgo.PermissionManageChannels).RequiresDatabase(),
		discord.NewCommand("name", "Cambia el nombre del canal general", "generalchannel", c.nameHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "nombre",
				Description: "Nuevo nombre",
				Required:    true,
			}).RequiresDatabase(),
		discord.NewCommand("topic", "Cambia el tema del canal general (empieza con + para añadir)", "generalchannel", c.topicHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tema",
				Description: "Nuevo tema, o +texto para añadirlo al final",
				Required:    true,
			}).RequiresDatabase(),
	)
	h.AddGlobalCommand(group)
	return c
}

func channelOf(guildID string) (string, error) {
	cfg, err := database.GlobalGeneralChannelDM.Get(bson.M{"guild_id": guildID})
	if err != nil {
		return "", errors.WrapIf(err, "leer canal general")
	}
	if cfg == nil || cfg.Channel == "" {
		return "", errNotSet
	}
	return cfg.Channel, nil
}

func (c *Cog) setHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	var err error
	msg := "Canal general quitado."
	if ch := ctx.GetChannelOption("canal"); ch != nil {
		_, err = database.GlobalGeneralChannelDM.Set(bson.M{"guild_id": guildID}, &models.GeneralChannelGuild{GuildID: guildID, Channel: ch.ID})
		msg = fmt.Sprintf("Canal general: <#%s>.", ch.ID)
	} else {
		err = database.GlobalGeneralChannelDM.Delete(bson.M{"guild_id": guildID})
	}
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "GeneralChannel")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

// Name cuts a channel name to the maximum Discord accepts
func Name(s string) string {
	r := []rune(s)
	if len(r) > maxNameLength {
		r = r[:maxNameLength]
	}
	return string(r)
}

// Topic computes the new topic. A leading "+" appends to current, keeping
// the last characters when the result is too long.
func Topic(current, text string) string {
	r := []rune(text)
	if len(r) > maxTopicLength {
		r = r[:maxTopicLength]
	}
	text = string(r)
	if !strings.HasPrefix(text, "+") {
		return text
	}
	joined := []rune(current + "\n" + strings.TrimSpace(text[1:]))
	if len(joined) > maxTopicLength {
		joined = joined[len(joined)-maxTopicLength:]
	}
	return string(joined)
}

// edit applies the change to the general channel under a per user cooldown.
// The cooldown is released when Discord rejects the request.
func (c *Cog) edit(ctx *discord.CommandContext, what string, fn func(ch *discordgo.Channel) *discordgo.ChannelEdit) error {
	key := ctx.Interaction.GuildID + ":" + ctx.User().ID
	if _, found := c.cooldowns.Get(key); found {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(fmt.Sprintf("Espera %s entre cambios.", cooldown)))
	}
	id, err := channelOf(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "GeneralChannel")))
	}
	ch, err := ctx.Session.State.Channel(id)
	if err != nil {
		if ch, err = ctx.Session.Channel(id); err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(errNotSet, "GeneralChannel")))
		}
	}
	c.cooldowns.SetDefault(key, true)
	reason := discordgo.WithAuditLogReason(fmt.Sprintf("%s: cambio de %s del canal general", ctx.User().Username, what))
	if _, err := ctx.Session.ChannelEdit(ch.ID, fn(ch), reason); err != nil {
		c.cooldowns.Delete(key)
		var rest *discordgo.RESTError
		if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == 403 {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(fmt.Sprintf("No pude cambiar el %s del canal: me faltan permisos.", what)))
		}
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(fmt.Sprintf("No pude cambiar el %s del canal: %v", what, err)))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Cambié el %s de <#%s>.", what, ch.ID)))
}

func (c *Cog) nameHandler(ctx *discord.CommandContext) error {
	name := Name(ctx.GetStringOption("nombre"))
	return c.edit(ctx, "nombre", func(*discordgo.Channel) *discordgo.ChannelEdit {
		return &discordgo.ChannelEdit{Name: name}
	})
}

func (c *Cog) topicHandler(ctx *discord.CommandContext) error {
	text := ctx.GetStringOption("tema")
	return c.edit(ctx, "tema", func(ch *discordgo.Channel) *discordgo.ChannelEdit {
		return &discordgo.ChannelEdit{Topic: Topic(ch.Topic, text)}
	})
}
