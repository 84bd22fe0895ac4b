// Package commands wires every cog into the command handler.
// Each cog lives in its own subdirectory (leveler, captcha, admin, etc.)
package commands

import (
	"github.com/PancyStudios/CogsBotGo/internal/commands/admin"
	"github.com/PancyStudios/CogsBotGo/internal/commands/captcha"
	"github.com/PancyStudios/CogsBotGo/internal/commands/cleverbot"
	"github.com/PancyStudios/CogsBotGo/internal/commands/datautils"
	"github.com/PancyStudios/CogsBotGo/internal/commands/dev"
	"github.com/PancyStudios/CogsBotGo/internal/commands/generalchannel"
	"github.com/PancyStudios/CogsBotGo/internal/commands/godville"
	"github.com/PancyStudios/CogsBotGo/internal/commands/holidays"
	"github.com/PancyStudios/CogsBotGo/internal/commands/imagesearch"
	"github.com/PancyStudios/CogsBotGo/internal/commands/leveler"
	"github.com/PancyStudios/CogsBotGo/internal/commands/memegen"
	"github.com/PancyStudios/CogsBotGo/internal/commands/minecraft"
	"github.com/PancyStudios/CogsBotGo/internal/commands/msglog"
	"github.com/PancyStudios/CogsBotGo/internal/commands/personalroles"
	"github.com/PancyStudios/CogsBotGo/internal/commands/selfrole"
	"github.com/PancyStudios/CogsBotGo/internal/commands/smm"
	"github.com/PancyStudios/CogsBotGo/internal/commands/steam"
	"github.com/PancyStudios/CogsBotGo/internal/commands/translators"
	"github.com/PancyStudios/CogsBotGo/internal/commands/utils"
	"github.com/PancyStudios/CogsBotGo/internal/commands/vocadb"
	"github.com/PancyStudios/CogsBotGo/internal/commands/weather"
	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
)

// Deps are the services shared by the cogs
type Deps struct {
	Config  *config.Config
	Leveler *lvl.Service
	Cards   *lvl.Renderer
	Assets  *lvl.Assets
	Captcha *cpt.Manager
}

// Cogs are the registered cogs that gateway events need
type Cogs struct {
	Leveler   *leveler.Cog
	Captcha   *captcha.Cog
	Cleverbot *cleverbot.Cog
}

// RegisterAll registers every cog with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) Cogs {
	cfg := deps.Config
	var cogs Cogs

	// Leveling and member verification
	cogs.Leveler = leveler.Register(client, deps.Leveler, deps.Cards, deps.Assets)
	cogs.Captcha = captcha.Register(client, deps.Captcha)

	// Server administration
	admin.Register(client)
	datautils.Register(client)
	msglog.Register(client)
	selfrole.Register(client)
	generalchannel.Register(client)
	personalroles.Register(client)

	// Text and image tools
	translators.Register(client, cfg.YandexAPIKey)
	imagesearch.Register(client, cfg.SauceNAOAPIKey, cfg.TraceMoeAPIKey)
	memegen.Register(client)

	// Third party services
	weather.Register(client, cfg.WeatherAPIKey, cfg.WeatherBaseURL)
	steam.Register(client, cfg.SteamAPIKey)
	godville.Register(client)
	minecraft.Register(client)
	vocadb.Register(client)
	smm.Register(client)
	holidays.Register(client, cfg.HolidaysBaseURL)
	if cfg.CleverbotUser != "" && cfg.CleverbotKey != "" {
		cogs.Cleverbot = cleverbot.Register(client, cfg.CleverbotUser, cfg.CleverbotKey)
	} else {
		logger.Warn("Cleverbot desactivado: faltan cleverbotUser o cleverbotKey", "Commands")
	}

	// Bot information and owner tools
	utils.Register(client)
	dev.Register(client)

	return cogs
}
