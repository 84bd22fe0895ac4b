// Package leveler provides the leveling commands: profile cards, ranks,
// reputation, user settings (/lvlset) and server administration (/lvladmin).
package leveler

import (
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
)

// Cog holds what the leveler commands share
type Cog struct {
	svc    *lvl.Service
	cards  *lvl.Renderer
	assets *lvl.Assets
	pages  *discord.Interactive
}

// Register adds /profile, /rank, /lvlinfo, /top, /rep, /lvlset and /lvladmin
func Register(client *discord.ExtendedClient, svc *lvl.Service, cards *lvl.Renderer, assets *lvl.Assets) *Cog {
	c := &Cog{svc: svc, cards: cards, assets: assets, pages: client.Interactive}

	for _, cmd := range []*discord.Command{
		c.createProfileCommand(),
		c.createRankCommand(),
		c.createLvlInfoCommand(),
		c.createTopCommand(),
		c.createRepCommand(),
	} {
		client.CommandHandler.RegisterCommand(cmd)
	}

	h := client.CommandHandler
	lvlset := h.BuildCommandGroup("lvlset", "Personaliza tu perfil de niveles")
	lvlset.Options = append(lvlset.Options,
		h.BuildSubcommandGroup("lvlset", "profile", "Tarjeta de perfil",
			c.createColorCommand(lvl.CardProfile),
			c.createBgCommand(lvl.CardProfile),
			c.createTitleCommand(),
			c.createInfoCommand(),
		),
		h.BuildSubcommandGroup("lvlset", "rank", "Tarjeta de rango",
			c.createColorCommand(lvl.CardRank),
			c.createBgCommand(lvl.CardRank),
		),
		h.BuildSubcommandGroup("lvlset", "levelup", "Tarjeta de subida de nivel",
			c.createColorCommand(lvl.CardLevelup),
			c.createBgCommand(lvl.CardLevelup),
		),
		h.BuildSubcommandGroup("lvlset", "badge", "Tus insignias",
			c.createBadgeAvailableCommand(),
			c.createBadgeListCommand(),
			c.createBadgeBuyCommand(),
			c.createBadgeSetCommand(),
		),
	)
	h.AddGlobalCommand(lvlset)

	lvladmin := h.BuildCommandGroup("lvladmin", "Administración del sistema de niveles", c.adminCommands()...)
	lvladmin.Options = append(lvladmin.Options,
		h.BuildSubcommandGroup("lvladmin", "badge", "Gestión de insignias", c.badgeAdminCommands()...),
		h.BuildSubcommandGroup("lvladmin", "role", "Roles por nivel", c.roleAdminCommands()...),
		h.BuildSubcommandGroup("lvladmin", "bg", "Fondos disponibles", c.bgAdminCommands()...),
	)
	h.AddGlobalCommand(lvladmin)
	return c
}
