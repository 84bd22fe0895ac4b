// Package steam shows Steam profiles, service status and game servers.
package steam

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/steam"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

const requestTimeout = 20 * time.Second

// Cog holds the Web API and steamstat.us clients
type Cog struct {
	api    *steam.Client
	status *steam.StatusClient
}

// Register adds the /steam group
func Register(client *discord.ExtendedClient, apiKey string) *Cog {
	c := &Cog{api: steam.New(apiKey), status: steam.NewStatusClient()}
	h := client.CommandHandler

	h.AddGlobalCommand(h.BuildCommandGroup("steam", "Steam Community",
		discord.NewCommand("profile", "Perfil de Steam", "steam", c.profileHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "usuario",
				Description: "SteamID64, STEAM_X:Y:Z, [U:1:n], URL personalizada o enlace al perfil",
				Required:    true,
			}),
		discord.NewCommand("status", "Estado de los servicios de Steam", "steam", c.statusHandler),
		discord.NewCommand("server", "Información de un servidor de juego", "steam", c.serverHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "direccion",
				Description: "IP o dominio, con el puerto opcional (27015 por defecto)",
				Required:    true,
			}),
	))
	return c
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if value == "" {
		value = "—"
	}
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

// ProfileEmbed describes a Steam profile
func ProfileEmbed(p *steam.Profile, now time.Time) *discordgo.MessageEmbed {
	s := p.Summary
	embed := &discordgo.MessageEmbed{
		Title:       s.PersonaName,
		URL:         s.ProfileURL,
		Description: p.BansDescription(),
		Color:       p.Color(),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: s.AvatarFull},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Perfil creado"},
	}
	if s.TimeCreated > 0 {
		embed.Timestamp = time.Unix(s.TimeCreated, 0).UTC().Format(time.RFC3339)
	}

	fields := []*discordgo.MessageEmbedField{
		field("SteamID", fmt.Sprintf("%s\n%s", p.ID.Steam2(), p.ID.Steam3()), true),
		field("SteamID64", p.ID.String(), true),
	}
	if s.RealName != "" {
		fields = append(fields, field("Nombre real", discord.Truncate(s.RealName, 1024), true))
	}
	if s.LocCountryCode != "" {
		fields = append(fields, field("País", ":flag_"+strings.ToLower(s.LocCountryCode)+":", true))
	}
	fields = append(fields,
		field("Visibilidad", p.Visibility(), true),
		field("Estado", p.PersonaState(), true),
	)
	if p.Level > 0 {
		fields = append(fields, field("Nivel", strconv.Itoa(p.Level), true))
	}
	if s.GameExtraInfo != "" {
		game := s.GameExtraInfo
		if s.GameID != "" {
			game = fmt.Sprintf("[%s](https://store.steampowered.com/app/%s)", game, s.GameID)
		}
		fields = append(fields, field("Jugando", game, true))
	}
	if srv := p.GameServer(); srv != "" {
		fields = append(fields, field("Servidor", srv, true))
	}
	if p.SharedBy != nil {
		fields = append(fields, field("Juego prestado por", fmt.Sprintf("[%s](%s)", p.SharedBy.PersonaName, p.SharedBy.ProfileURL), true))
	}
	if seen := p.LastSeen(); !seen.IsZero() && s.PersonaState == 0 {
		fields = append(fields, field("Última conexión", humanize.RelTime(seen, now, "atrás", "después"), true))
	}
	if p.Bans.VACBanned {
		fields = append(fields, field("Baneos VAC", strconv.Itoa(p.Bans.NumberOfVACBans), true))
	}
	if p.Bans.NumberOfGameBans > 0 {
		fields = append(fields, field("Baneos en juegos", strconv.Itoa(p.Bans.NumberOfGameBans), true))
	}
	if p.Bans.CommunityBanned {
		fields = append(fields, field("Baneo de comunidad", discord.YesNo(true), true))
	}
	if eco := p.EconomyBan(); eco != "" {
		fields = append(fields, field("Baneo de intercambio", eco, true))
	}
	embed.Fields = fields
	return embed
}

// StatusEmbed summarizes a steamstat.us snapshot
func StatusEmbed(st *steam.Status) *discordgo.MessageEmbed {
	color := discord.ColorSuccess
	if online := st.Find("online"); online.Load > 0 {
		color = discord.ColorWarn
	}
	return &discordgo.MessageEmbed{
		Title:       "Estado de Steam",
		URL:         "https://steamstat.us",
		Description: st.Description(),
		Color:       color,
		Fields:      []*discordgo.MessageEmbedField{field("Juegos", st.Games(), false)},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Datos de steamstat.us"},
		Timestamp:   st.Timestamp().Format(time.RFC3339),
	}
}

// ServerEmbed describes an A2S_INFO reply
func ServerEmbed(info *steam.ServerInfo) *discordgo.MessageEmbed {
	players := fmt.Sprintf("%d/%d", info.Humans(), info.MaxPlayers)
	if info.Bots > 0 {
		players += fmt.Sprintf(" (+%d bots)", info.Bots)
	}
	game := info.Game
	if info.AppID > 0 {
		game = fmt.Sprintf("[%s](https://store.steampowered.com/app/%d)", info.Game, info.AppID)
	}
	return &discordgo.MessageEmbed{
		Title:       discord.Truncate(info.Name, 256),
		Description: fmt.Sprintf("Conectar: steam://connect/%s", info.Address),
		Color:       discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("Juego", game, true),
			field("Jugadores", players, true),
			field("Mapa", info.MapLink(), true),
			field("Versión", info.Version, true),
			field("Tipo", info.ServerType, true),
			field("Sistema", info.Platform, true),
			field("Contraseña", discord.YesNo(info.Password), true),
			field("VAC", discord.YesNo(info.VAC), true),
		},
	}
}

func (c *Cog) profileHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := c.api.Profile(rctx, ctx.GetStringOption("usuario"))
		if err != nil {
			ctx.Fail(err, "Steam")
			return
		}
		ctx.EditReplyEmbed(ProfileEmbed(p, time.Now()))
	}()
	return nil
}

func (c *Cog) statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := c.status.Status(rctx)
		if err != nil {
			ctx.Fail(err, "Steam")
			return
		}
		embed := StatusEmbed(st)
		graph, err := steam.RenderGraph(st.Graph)
		if err != nil {
			logger.Debug("Sin gráfico de CM: "+err.Error(), "Steam")
			ctx.EditReplyEmbed(embed)
			return
		}
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://cm.png"}
		if err := ctx.EditReplyEmbedFile(embed, "cm.png", graph); err != nil {
			logger.Error("Error enviando estado de Steam: "+err.Error(), "Steam")
		}
	}()
	return nil
}

func (c *Cog) serverHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		info, err := steam.QueryInfo(rctx, ctx.GetStringOption("direccion"))
		if err != nil {
			ctx.Fail(err, "Steam")
			return
		}
		ctx.EditReplyEmbed(ServerEmbed(info))
	}()
	return nil
}
