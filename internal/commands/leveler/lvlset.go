package leveler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// Color values with a special meaning
const (
	colorDefault = "default"
	colorAuto    = "auto"
)

func sectionChoices(card string) []*discordgo.ApplicationCommandOptionChoice {
	sections := append(append([]string{}, lvl.Sections(card)...), lvl.SectionAll)
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(sections))
	for i, s := range sections {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: s, Value: s}
	}
	return out
}

func (c *Cog) createColorCommand(card string) *discord.Command {
	return discord.NewCommand("color", "Cambia los colores de la tarjeta", "leveler",
		func(ctx *discord.CommandContext) error { return c.colorHandler(ctx, card) },
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "seccion",
			Description: "Parte de la tarjeta",
			Required:    true,
			Choices:     sectionChoices(card),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "color",
			Description: "Color hexadecimal, \"default\" o \"auto\" (según tu avatar)",
			Required:    true,
		},
	).RequiresDatabase()
}

// colorTargets returns how many colors a section update needs
func colorTargets(card, section string) int {
	if section == lvl.SectionAll {
		return len(lvl.Sections(card))
	}
	return 1
}

func (c *Cog) colorHandler(ctx *discord.CommandContext, card string) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		user := ctx.User()
		section := ctx.GetStringOption("seccion")
		value := strings.ToLower(strings.TrimSpace(ctx.GetStringOption("color")))

		var values []string
		switch value {
		case colorDefault:
		case colorAuto:
			rctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
			defer cancel()
			avatar := c.assets.Load(rctx, user.AvatarURL("128"))[0]
			if avatar == nil {
				ctx.EditReplyEmbed(discord.ErrorEmbed("No pude leer tu avatar."))
				return
			}
			values = lvl.DominantColors(avatar, colorTargets(card, section))
		default:
			values = []string{value}
		}

		if err := c.svc.SetColors(user.ID, card, section, values); err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		shown := "por defecto"
		if len(values) > 0 {
			shown = strings.Join(values, ", ")
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Color de `%s` en la tarjeta %s: %s", section, card, shown)))
	}()
	return nil
}

func (c *Cog) createBgCommand(card string) *discord.Command {
	return discord.NewCommand("bg", "Cambia el fondo de la tarjeta", "leveler",
		func(ctx *discord.CommandContext) error { return c.bgHandler(ctx, card) },
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "nombre",
			Description:  "Nombre del fondo (vacío para ver la lista)",
			Autocomplete: true,
		},
	).WithAutoComplete(func(ctx *discord.CommandContext) {
		names, _ := c.svc.BackgroundNames(card)
		ctx.Suggest(names)
	}).RequiresDatabase()
}

func (c *Cog) bgHandler(ctx *discord.CommandContext, card string) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		name := ctx.GetStringOption("nombre")
		if name == "" {
			names, err := c.svc.BackgroundNames(card)
			if err != nil {
				ctx.Fail(err, "Leveler")
				return
			}
			global, _ := c.svc.Global()
			lines := make([]string, len(names))
			for i, n := range names {
				lines[i] = "• " + n
			}
			pages := discord.TextPages(fmt.Sprintf("Fondos de %s (%d créditos)", card, global.BgPrice), discord.ColorInfo, lines)
			c.pages.PaginateEdit(ctx, pages)
			return
		}
		price, err := c.svc.SetBackground(ctx.User().ID, card, name)
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		msg := fmt.Sprintf("Fondo de %s cambiado a **%s**.", card, name)
		if price > 0 {
			msg += fmt.Sprintf(" Se cobraron %d créditos.", price)
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed(msg))
	}()
	return nil
}

func textOption(name, description string, max int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
		MaxLength:   max,
	}
}

func (c *Cog) createTitleCommand() *discord.Command {
	return discord.NewCommand("title", "Cambia el título del perfil", "leveler", func(ctx *discord.CommandContext) error {
		if err := c.svc.SetTitle(ctx.User().ID, ctx.GetStringOption("texto")); err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed("Título actualizado."))
	}).WithOptions(textOption("texto", "Nuevo título (máx. 20 caracteres)", 20)).RequiresDatabase()
}

func (c *Cog) createInfoCommand() *discord.Command {
	return discord.NewCommand("info", "Cambia la descripción del perfil", "leveler", func(ctx *discord.CommandContext) error {
		if err := c.svc.SetInfo(ctx.User().ID, ctx.GetStringOption("texto")); err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed("Descripción actualizada."))
	}).WithOptions(textOption("texto", "Nueva descripción (máx. 150 caracteres)", 150)).RequiresDatabase()
}

func globalOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "global",
		Description: "Insignias globales en vez de las del servidor",
	}
}

// badgeServer resolves the badge scope of a command
func badgeServer(ctx *discord.CommandContext) string {
	if ctx.GetBoolOption("global") {
		return lvl.GlobalServer
	}
	return ctx.Interaction.GuildID
}

func badgeLine(b models.Badge) string {
	price := "no se vende"
	if b.Price == 0 {
		price = "gratis"
	} else if b.Price > 0 {
		price = fmt.Sprintf("%d créditos", b.Price)
	}
	line := fmt.Sprintf("**%s** (%s)", b.BadgeName, price)
	if b.Description != "" {
		line += "\n" + b.Description
	}
	return line
}

func (c *Cog) createBadgeAvailableCommand() *discord.Command {
	return discord.NewCommand("available", "Insignias disponibles", "leveler", func(ctx *discord.CommandContext) error {
		go func() {
			defer errors.RecoverMiddleware()()

			if err := ctx.Defer(); err != nil {
				return
			}
			server := badgeServer(ctx)
			badges, err := c.svc.ServerBadges(server)
			if err != nil {
				ctx.Fail(err, "Leveler")
				return
			}
			lines := make([]string, len(badges))
			for i, b := range badges {
				lines[i] = badgeLine(b)
			}
			if len(lines) == 0 {
				lines = []string{"No hay insignias."}
			}
			title := "Insignias del servidor"
			if server == lvl.GlobalServer {
				title = "Insignias globales"
			}
			c.pages.PaginateEdit(ctx, discord.TextPages(title, discord.ColorInfo, lines))
		}()
		return nil
	}).WithOptions(globalOption()).RequiresDatabase()
}

func (c *Cog) createBadgeListCommand() *discord.Command {
	return discord.NewCommand("list", "Tus insignias", "leveler", func(ctx *discord.CommandContext) error {
		go func() {
			defer errors.RecoverMiddleware()()

			if err := ctx.Defer(); err != nil {
				return
			}
			user, _ := target(ctx)
			u, err := c.svc.User(user.ID, user.Username, "")
			if err != nil {
				ctx.Fail(err, "Leveler")
				return
			}
			badges := make([]models.Badge, 0, len(u.Badges))
			for _, b := range u.Badges {
				badges = append(badges, b)
			}
			sort.Slice(badges, func(i, j int) bool {
				if badges[i].PriorityNum != badges[j].PriorityNum {
					return badges[i].PriorityNum > badges[j].PriorityNum
				}
				return badges[i].BadgeName < badges[j].BadgeName
			})
			lines := make([]string, len(badges))
			for i, b := range badges {
				lines[i] = fmt.Sprintf("**%s** (prioridad %d)", b.BadgeName, b.PriorityNum)
			}
			if len(lines) == 0 {
				lines = []string{"Sin insignias."}
			}
			c.pages.PaginateEdit(ctx, discord.TextPages("Insignias de "+user.Username, discord.ColorInfo, lines))
		}()
		return nil
	}).WithOptions(userOption("Usuario del que ver las insignias")).RequiresDatabase()
}

func (c *Cog) createBadgeBuyCommand() *discord.Command {
	return discord.NewCommand("buy", "Compra una insignia con créditos", "leveler", func(ctx *discord.CommandContext) error {
		user := ctx.User()
		price, err := c.svc.BuyBadge(user.ID, user.Username, badgeServer(ctx), ctx.GetStringOption("nombre"))
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Compraste **%s** por %d créditos.", ctx.GetStringOption("nombre"), price)))
	}).WithOptions(
		textOption("nombre", "Nombre de la insignia", 100),
		globalOption(),
	).RequiresDatabase().InGuild()
}

func (c *Cog) createBadgeSetCommand() *discord.Command {
	return discord.NewCommand("set", "Cambia la prioridad de una insignia", "leveler", func(ctx *discord.CommandContext) error {
		err := c.svc.SetBadgePriority(ctx.User().ID, ctx.GetStringOption("nombre"), int(ctx.GetIntOption("prioridad")))
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEphemeralEmbed(discord.SuccessEmbed("Prioridad actualizada."))
	}).WithOptions(
		textOption("nombre", "Nombre de la insignia", 100),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "prioridad",
			Description: "-1 la oculta, 0 la quita del perfil, mayor se muestra antes",
			Required:    true,
			MinValue:    func() *float64 { v := -1.0; return &v }(),
			MaxValue:    5000,
		},
	).RequiresDatabase()
}
