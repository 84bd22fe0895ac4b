// Package minecraft has player, cape and server lookups.
package minecraft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/apis/minecraft"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/gabriel-vasile/mimetype"
	"github.com/jedib0t/go-pretty/table"
)

const requestTimeout = 15 * time.Second

// Cape services
const (
	CapeOptifine       = "optifine"
	CapeLabyMod        = "labymod"
	CapeFiveZig        = "5zig"
	CapeFiveZigAnim    = "5zig-animated"
	CapeMinecraftCapes = "minecraftcapes"
)

// Cog holds the Mojang client
type Cog struct {
	client *minecraft.Client
}

// Register adds the /mc group
func Register(client *discord.ExtendedClient) *Cog {
	c := &Cog{client: minecraft.New()}
	h := client.CommandHandler

	h.AddGlobalCommand(h.BuildCommandGroup("mc", "Minecraft",
		discord.NewCommand("skin", "Skin de un jugador", "minecraft", c.skinHandler).
			WithOptions(nickOption(), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "capa",
				Description: "Incluir la segunda capa de la skin",
			}),
		discord.NewCommand("cape", "Capa de un jugador", "minecraft", c.capeHandler).
			WithOptions(nickOption(), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "servicio",
				Description: "Servicio de capas",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "OptiFine", Value: CapeOptifine},
					{Name: "LabyMod", Value: CapeLabyMod},
					{Name: "5zig", Value: CapeFiveZig},
					{Name: "5zig (animada)", Value: CapeFiveZigAnim},
					{Name: "MinecraftCapes", Value: CapeMinecraftCapes},
				},
			}),
		discord.NewCommand("uuid", "UUID de un jugador", "minecraft", c.uuidHandler).WithOptions(nickOption()),
		discord.NewCommand("history", "Historial de nombres de un jugador", "minecraft", c.historyHandler).WithOptions(nickOption()),
		discord.NewCommand("status", "Estado de los servicios de Mojang", "minecraft", c.statusHandler),
		discord.NewCommand("server", "Consulta un servidor de Java Edition", "minecraft", c.serverHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "direccion",
				Description: "Dirección del servidor (puerto 25565 por defecto)",
				Required:    true,
			}),
	))
	return c
}

func nickOption() *discordgo.ApplicationCommandOption {
	min := 1
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "jugador",
		Description: "Nombre del jugador",
		Required:    true,
		MinLength:   &min,
		MaxLength:   16,
	}
}

// async runs fn after deferring, with a request context
func async(ctx *discord.CommandContext, fn func(rctx context.Context) error) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := fn(rctx); err != nil {
			ctx.Fail(err, "Minecraft")
		}
	}()
	return nil
}

// SkinEmbed shows the renders and the raw skin of a player
func SkinEmbed(p *minecraft.Player, overlay bool) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       p.Name,
		URL:         "https://namemc.com/profile/" + p.Name,
		Description: fmt.Sprintf("[Descargar skin](%s)", p.Skin()),
		Color:       discord.ColorInfo,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: p.HeadRender(overlay)},
		Image:       &discordgo.MessageEmbedImage{URL: p.BodyRender(overlay)},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Renders de Crafatar"},
	}
}

// HistoryTable renders the nickname history
func HistoryTable(changes []minecraft.NameChange) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Nombre", "Desde"})
	for _, n := range changes {
		t.AppendRow(table.Row{n.Name, n.When()})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// StatusLines lists every Mojang service with its label
func StatusLines(services []minecraft.ServiceStatus) string {
	lines := make([]string, len(services))
	for i, s := range services {
		lines[i] = fmt.Sprintf("**%s**: %s", s.Service, s.Label())
	}
	return strings.Join(lines, "\n")
}

// ServerEmbed describes a server list ping
func ServerEmbed(s *minecraft.ServerStatus) *discordgo.MessageEmbed {
	players := fmt.Sprintf("%d/%d", s.Online, s.Max)
	if len(s.Sample) > 0 {
		players += "\n" + discord.Truncate(strings.Join(s.Sample, ", "), 900)
	}
	motd := s.MOTD
	if motd == "" {
		motd = "Sin descripción"
	}
	return &discordgo.MessageEmbed{
		Title:       s.Address,
		Description: discord.Box(motd, ""),
		Color:       discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Jugadores", Value: players},
			{Name: "Versión", Value: fmt.Sprintf("%s (protocolo %d)", s.Version, s.Protocol), Inline: true},
			{Name: "Latencia", Value: fmt.Sprintf("%d ms", s.Latency.Milliseconds()), Inline: true},
		},
	}
}

// capeFileName picks an extension from the downloaded bytes
func capeFileName(p *minecraft.Player, data []byte) string {
	return p.Name + mimetype.Detect(data).Extension()
}

func (c *Cog) skinHandler(ctx *discord.CommandContext) error {
	return async(ctx, func(rctx context.Context) error {
		p, err := c.client.Player(rctx, ctx.GetStringOption("jugador"))
		if err != nil {
			return err
		}
		return ctx.EditReplyEmbed(SkinEmbed(p, ctx.GetBoolOption("capa")))
	})
}

func (c *Cog) capeHandler(ctx *discord.CommandContext) error {
	return async(ctx, func(rctx context.Context) error {
		p, err := c.client.Player(rctx, ctx.GetStringOption("jugador"))
		if err != nil {
			return err
		}
		service := ctx.GetStringOption("servicio")
		embed := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("Capa de %s (%s)", p.Name, service),
			Color: discord.ColorInfo,
		}
		var data []byte
		switch service {
		case CapeOptifine:
			embed.Image = &discordgo.MessageEmbedImage{URL: p.OptifineCape()}
			return ctx.EditReplyEmbed(embed)
		case CapeMinecraftCapes:
			embed.Image = &discordgo.MessageEmbedImage{URL: p.MinecraftCapesCape()}
			return ctx.EditReplyEmbed(embed)
		case CapeLabyMod:
			data, err = c.client.LabyModCape(rctx, p)
		default:
			data, err = c.client.FiveZigCape(rctx, p, service == CapeFiveZigAnim)
		}
		if err != nil {
			return err
		}
		name := capeFileName(p, data)
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + name}
		return ctx.EditReplyEmbedFile(embed, name, data)
	})
}

func (c *Cog) uuidHandler(ctx *discord.CommandContext) error {
	return async(ctx, func(rctx context.Context) error {
		p, err := c.client.Player(rctx, ctx.GetStringOption("jugador"))
		if err != nil {
			return err
		}
		return ctx.EditReply(fmt.Sprintf("**%s**: `%s`", p.Name, p.DashedUUID()))
	})
}

func (c *Cog) historyHandler(ctx *discord.CommandContext) error {
	return async(ctx, func(rctx context.Context) error {
		p, err := c.client.Player(rctx, ctx.GetStringOption("jugador"))
		if err != nil {
			return err
		}
		changes, err := c.client.NameHistory(rctx, p)
		if err != nil {
			return err
		}
		return ctx.EditReply(discord.Box(HistoryTable(changes), ""))
	})
}

func (c *Cog) statusHandler(ctx *discord.CommandContext) error {
	return async(ctx, func(rctx context.Context) error {
		services, err := c.client.Status(rctx)
		if err != nil {
			return err
		}
		return ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       "Estado de Mojang",
			Description: StatusLines(services),
			Color:       discord.ColorInfo,
		})
	})
}

func (c *Cog) serverHandler(ctx *discord.CommandContext) error {
	return async(ctx, func(rctx context.Context) error {
		s, err := c.client.Server(rctx, ctx.GetStringOption("direccion"))
		if err != nil {
			return err
		}
		return ctx.EditReplyEmbed(ServerEmbed(s))
	})
}
