// Package smm reads Super Mario Maker Bookmark courses and makers.
package smm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/smm"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const requestTimeout = 20 * time.Second

// Cog holds the bookmark scraper
type Cog struct {
	client *smm.Client
}

// Register adds the /smm group
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{client: smm.New()}
	h := client.CommandHandler
	h.AddGlobalCommand(h.BuildCommandGroup("smm", "Super Mario Maker Bookmark",
		discord.NewCommand("level", "Información de un nivel", "smm", c.levelHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "codigo",
				Description: "Código del nivel, p. ej. 0000-0000-0000-0000",
				Required:    true,
			}),
		discord.NewCommand("maker", "Perfil de un creador", "smm", c.makerHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "nnid",
				Description: "Nintendo Network ID",
				Required:    true,
			}),
	))
	return c
}

func userLink(u *smm.User) string {
	if u == nil {
		return "—"
	}
	return fmt.Sprintf("[%s](%s)", u.Name, u.URL)
}

// LevelEmbed describes a course
func LevelEmbed(l *smm.Level) *discordgo.MessageEmbed {
	best := userLink(l.BestPlayer)
	if l.BestTime != "" {
		best += " (" + l.BestTime + ")"
	}
	embed := &discordgo.MessageEmbed{
		Title:       l.Title,
		URL:         l.URL,
		Description: l.Tag,
		Color:       l.Color(),
		Author:      &discordgo.MessageEmbedAuthor{Name: l.Creator.Name, URL: l.Creator.URL, IconURL: l.Creator.Image},
		Image:       &discordgo.MessageEmbedImage{URL: l.Map},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Dificultad", Value: l.Difficulty, Inline: true},
			{Name: "Estilo", Value: l.GameSkin, Inline: true},
			{Name: "Estrellas", Value: strconv.Itoa(l.Stars), Inline: true},
			{Name: "Jugadores", Value: strconv.Itoa(l.Players), Inline: true},
			{Name: "Compartido", Value: strconv.Itoa(l.Shares), Inline: true},
			{Name: "Superado", Value: fmt.Sprintf("%d/%d (%.2f%%)", l.Clears, l.Attempts, l.ClearRate), Inline: true},
			{Name: "Récord", Value: best, Inline: true},
			{Name: "Primero en superarlo", Value: userLink(l.FirstClear), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Super Mario Maker Bookmark", IconURL: smm.IconURL},
	}
	if l.Preview != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: l.Preview}
	}
	if !l.CreatedAt.IsZero() {
		embed.Timestamp = l.CreatedAt.Format(time.RFC3339)
	}
	return embed
}

// MakerEmbed describes a maker profile
func MakerEmbed(m *smm.Maker) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     m.Name,
		URL:       m.URL,
		Color:     0xF9CF00,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: m.Image},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "País", Value: m.Country, Inline: true},
			{Name: "Estrellas", Value: strconv.Itoa(m.Stars), Inline: true},
			{Name: "Medallas", Value: strconv.Itoa(m.Medals), Inline: true},
			{Name: "Niveles subidos", Value: strconv.Itoa(m.Uploads), Inline: true},
			{Name: "Superados (Fácil/Normal/Experto/Súper experto)", Value: fmt.Sprintf("%d/%d/%d/%d",
				m.EasyClears, m.NormalClears, m.ExpertClears, m.SuperExpertClears)},
			{Name: "Jugados", Value: strconv.Itoa(m.CoursesPlayed), Inline: true},
			{Name: "Superados", Value: strconv.Itoa(m.CoursesCleared), Inline: true},
			{Name: "Partidas", Value: strconv.Itoa(m.TotalPlays), Inline: true},
			{Name: "Vidas perdidas", Value: strconv.Itoa(m.LivesLost), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Super Mario Maker Bookmark", IconURL: smm.IconURL},
	}
}

func (c *Cog) levelHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		l, err := c.client.Level(rctx, ctx.GetStringOption("codigo"))
		if err != nil {
			ctx.Fail(err, "SMM")
			return
		}
		ctx.EditReplyEmbed(LevelEmbed(l))
	}()
	return nil
}

func (c *Cog) makerHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		m, err := c.client.Maker(rctx, ctx.GetStringOption("nnid"))
		if err != nil {
			ctx.Fail(err, "SMM")
			return
		}
		ctx.EditReplyEmbed(MakerEmbed(m))
	}()
	return nil
}
