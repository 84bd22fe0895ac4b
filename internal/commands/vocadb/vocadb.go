// Package vocadb searches VocaDB songs and shows their lyrics.
package vocadb

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/vocadb"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const requestTimeout = 15 * time.Second

const embedColor = 0x86D2D0

// Cog holds the VocaDB client
type Cog struct {
	pages  *discord.Interactive
	client *vocadb.Client
}

// Register adds /vocadb
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{pages: client.Interactive, client: vocadb.New()}
	min := 1.0
	cmd := discord.NewCommand("vocadb", "Busca canciones con letra en VocaDB", "vocadb", c.searchHandler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "consulta",
				Description: "Título o artista",
				Required:    true,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "numero",
				Description: "Resultado a mostrar cuando hay varios",
				MinValue:    &min,
				MaxValue:    10,
			},
		)
	client.CommandHandler.RegisterCommand(cmd)
	return c
}

// SongPages builds the info page followed by one page per lyrics
func SongPages(s vocadb.Song) []*discordgo.MessageEmbed {
	info := &discordgo.MessageEmbed{
		Title:  s.Title(),
		URL:    s.URL(),
		Color:  embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artistas", Value: discord.Truncate(s.ArtistLinks(), discord.MaxFieldLength)},
			{Name: "Publicada", Value: s.Published(), Inline: true},
			{Name: "Duración", Value: s.Duration(), Inline: true},
			{Name: "Estadísticas", Value: s.Statistics()},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Datos de VocaDB"},
	}
	if s.ThumbURL != "" {
		info.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: s.ThumbURL}
	}
	out := []*discordgo.MessageEmbed{info}
	for _, p := range s.Pages() {
		page := &discordgo.MessageEmbed{
			Title:       p.Title,
			URL:         s.URL(),
			Description: p.Body,
			Color:       embedColor,
			Footer:      &discordgo.MessageEmbedFooter{Text: p.Footer},
		}
		if p.Source != "" {
			page.Fields = []*discordgo.MessageEmbedField{{Name: "Fuente", Value: p.Source}}
		}
		out = append(out, page)
	}
	return out
}

// ChoicesEmbed lists the matches when the user has to pick one
func ChoicesEmbed(query string, songs []vocadb.Song) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Resultados para " + discord.Truncate(query, 200),
		Description: discord.Truncate(vocadb.Choices(songs), discord.MaxDescriptionLength),
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Repite el comando con la opción numero"},
	}
}

func (c *Cog) searchHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		query := ctx.GetStringOption("consulta")
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		songs, err := c.client.Search(rctx, query)
		if err != nil {
			ctx.Fail(err, "VocaDB")
			return
		}
		n := int(ctx.GetIntOption("numero"))
		switch {
		case len(songs) == 0:
			ctx.EditReplyEmbed(discord.ErrorEmbed(fmt.Sprintf("No encontré canciones con letra para `%s`.", query)))
		case n > len(songs):
			ctx.EditReplyEmbed(discord.ErrorEmbed(fmt.Sprintf("Solo hay %d resultados.", len(songs))))
		case n > 0:
			c.pages.PaginateEdit(ctx, SongPages(songs[n-1]))
		case len(songs) == 1:
			c.pages.PaginateEdit(ctx, SongPages(songs[0]))
		default:
			ctx.EditReplyEmbed(ChoicesEmbed(query, songs))
		}
	}()
	return nil
}
