// Package main is the entry point for the CogsBot Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/CogsBotGo/internal/commands"
	captchacmd "github.com/PancyStudios/CogsBotGo/internal/commands/captcha"
	"github.com/PancyStudios/CogsBotGo/internal/events"
	"github.com/PancyStudios/CogsBotGo/pkg/captcha"
	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/PancyStudios/CogsBotGo/pkg/mqtt"
	"github.com/PancyStudios/CogsBotGo/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const blacklistRefresh = 5 * time.Minute

var _ leveler.Store = (*database.LevelerStore)(nil)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook, logger.Options{
		Dir:        cfg.LogsDir,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando CogsBot Go %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				logger.Error(fmt.Sprintf("Error cerrando Discord: %v", err), "Main")
			}
		}
	})

	// Metrics
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.Init(reg)
		gatherer = reg
	}

	// Without a URL the bot runs on memory stores. A failed first connection
	// keeps retrying in the background while writes are queued.
	var db *database.Database
	if cfg.MongoDBURL != "" {
		db, err = database.Init(cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			logger.Error(fmt.Sprintf("Error connecting to database, se reintentará en segundo plano: %v", err), "Main")
		}
	} else {
		logger.Warn("mongodbUrl vacío: usando almacenamiento en memoria", "Main")
	}
	defer func() {
		if db != nil {
			if err := db.Disconnect(); err != nil {
				logger.Error(fmt.Sprintf("Error cerrando la base de datos: %v", err), "Main")
			}
		}
	}()

	// Stores fall back to memory so the leveler and captcha keep working without Mongo
	var (
		levelerStore leveler.Store = leveler.NewMemoryStore()
		captchaStore captcha.Store = captcha.NewMemoryStore()
	)
	if db != nil {
		database.InitGlobalDataManagers(db)
		levelerStore = database.NewLevelerStore(db)
		captchaStore = captcha.NewDataManagerStore(database.GlobalCaptchaDM)

		// Initialize blacklist cache at startup and start auto-refresh
		if err := database.InitBlacklistCache(); err != nil {
			logger.Warn(fmt.Sprintf("Error inicializando caché de blacklist: %v", err), "Main")
		}
		database.StartBlacklistCacheRefresh(blacklistRefresh)
		defer database.StopBlacklistCacheRefresh()
	}

	// Initialize MQTT
	mqttClientID := "cogsbot"
	if !cfg.IsProd() {
		mqttClientID = "cogsbot_canary"
	}
	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	hub := web.NewHub()
	sinks := []events.Sink{hub.Broadcast, events.MQTTSink(mqttClient)}

	// Leveler
	levelerSvc := leveler.NewService(levelerStore,
		leveler.WithDefaults(cfg.XPMin, cfg.XPMax, cfg.MessageLength),
		leveler.WithPublisher(events.LevelerPublisher(sinks...)),
	)
	cards, err := leveler.NewRenderer(cfg.LevelerFontPath)
	if err != nil {
		logger.Warn(fmt.Sprintf("Fuente personalizada ignorada: %v", err), "Main")
		if cards, err = leveler.NewRenderer(""); err != nil {
			logger.Critical(fmt.Sprintf("Error cargando las fuentes de las tarjetas: %v", err), "Main")
			os.Exit(1)
		}
	}
	assets := leveler.NewAssets(httpx.New("leveler-assets", httpx.WithRateLimit(10, 10)))
	mqttClient.On("leveler/profile", events.LevelerProfile(levelerSvc))

	// Initialize web server
	webServer := web.Init(cfg.LogsWebServerHook, cfg.AllowedHosts)
	web.SetupAPIRoutes(webServer, web.Routes{Leveler: levelerSvc, Hub: hub, Gatherer: gatherer})
	webServer.StartAsync(cfg.Port)

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	captchaManager := captcha.NewManager(captchaStore, captchacmd.NewUI(discordClient.Session))
	captchaManager.OnFinish(events.CaptchaHook(sinks...))

	// Register every cog, then the gateway events that feed them
	cogs := commands.RegisterAll(discordClient, commands.Deps{
		Config:  cfg,
		Leveler: levelerSvc,
		Cards:   cards,
		Assets:  assets,
		Captcha: captchaManager,
	})
	events.RegisterAll(discordClient, cogs, sinks...)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando Discord: %v", err), "Main")
		}
	}()

	logger.Success("CogsBot Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando CogsBot Go...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
