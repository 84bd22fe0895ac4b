// Command sync-commands compares the slash commands the cogs define with
// the ones Discord has registered and applies the difference.
//
// Usage:
//
//	sync-commands [-list] [-clean] [-dry-run] [-guild <id>]
//
// Without -guild it works on the global commands. With -guild it works on
// that guild and, when it is the dev guild, uses the dev definitions.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/CogsBotGo/internal/commands"
	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const prefix = "SyncCommands"

func main() {
	listCmd := flag.Bool("list", false, "Lista los comandos registrados en Discord")
	cleanCmd := flag.Bool("clean", false, "Elimina todos los comandos sin registrar nuevos")
	dryRun := flag.Bool("dry-run", false, "Muestra el plan sin aplicarlo")
	guildID := flag.String("guild", "", "Servidor objetivo (vacío para globales)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), prefix)
		os.Exit(1)
	}
	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), prefix)
		os.Exit(1)
	}
	defer client.Session.Close()

	// Definitions only, no services
	commands.RegisterAll(client, commands.Deps{Config: cfg})

	remote, err := fetchRemote(client, *guildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo comandos: %v", err), prefix)
		os.Exit(1)
	}

	switch {
	case *listCmd:
		if len(remote) == 0 {
			logger.Info("No hay comandos registrados", prefix)
			return
		}
		fmt.Println(RenderRemote(remote))
	case *cleanCmd:
		if err := apply(client, *guildID, nil, *dryRun, remote); err != nil {
			logger.Error(fmt.Sprintf("Error eliminando comandos: %v", err), prefix)
			os.Exit(1)
		}
	default:
		// only the dev guild gets guild scoped commands
		var local []*discordgo.ApplicationCommand
		switch *guildID {
		case "":
			local = client.CommandHandler.Definitions(false)
		case cfg.DevGuildID:
			local = client.CommandHandler.Definitions(true)
		}
		if err := apply(client, *guildID, local, *dryRun, remote); err != nil {
			logger.Error(fmt.Sprintf("Error sincronizando comandos: %v", err), prefix)
			os.Exit(1)
		}
	}
}

func fetchRemote(client *discord.ExtendedClient, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if guildID != "" {
		return client.CommandHandler.ListGuildCommands(guildID)
	}
	return client.CommandHandler.ListGlobalCommands()
}

func apply(client *discord.ExtendedClient, guildID string, local []*discordgo.ApplicationCommand, dryRun bool, remote []*discordgo.ApplicationCommand) error {
	steps := Plan(local, remote)
	if len(steps) > 0 {
		fmt.Println(RenderPlan(steps))
	}
	if !Pending(steps) {
		logger.Success("✅ Los comandos ya están sincronizados", prefix)
		return nil
	}
	if dryRun {
		logger.Info("Modo de prueba: no se aplicó ningún cambio", prefix)
		return nil
	}
	if local == nil {
		local = []*discordgo.ApplicationCommand{}
	}
	if err := client.CommandHandler.OverwriteGuildCommands(guildID, local); err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("✅ %d comandos aplicados", len(local)), prefix)
	return nil
}
