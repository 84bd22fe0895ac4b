package discord

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client           *ExtendedClient
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:           client,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
	}
}

// LoadCommands checks the registered definitions before connecting.
// Discord rejects a bulk overwrite when two top level commands share a name.
func (ch *CommandHandler) LoadCommands() error {
	if len(ch.slashCommands)+len(ch.slashCommandsDev) == 0 {
		return ErrNoCommands
	}
	for _, list := range [][]*discordgo.ApplicationCommand{ch.slashCommands, ch.slashCommandsDev} {
		if name, dup := duplicateName(list); dup {
			return errors.WithDetails(ErrDuplicateCommand, "command", name)
		}
	}
	logger.System(fmt.Sprintf("%d comandos globales, %d de desarrollo, %d rutas ejecutables",
		len(ch.slashCommands), len(ch.slashCommandsDev), ch.client.Commands.Size()), "CommandHandler")
	return nil
}

func duplicateName(list []*discordgo.ApplicationCommand) (string, bool) {
	seen := make(map[string]bool, len(list))
	for _, cmd := range list {
		if seen[cmd.Name] {
			return cmd.Name, true
		}
		seen[cmd.Name] = true
	}
	return "", false
}

// RegisterCommand adds a command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)

	appCmd := cmd.ToApplicationCommand()

	if cmd.IsDev {
		ch.slashCommandsDev = append(ch.slashCommandsDev, appCmd)
	} else {
		ch.slashCommands = append(ch.slashCommands, appCmd)
	}

	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		}
		options = append(options, opt)
	}

	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// BuildSubcommandGroup creates a subcommand group
func (ch *CommandHandler) BuildSubcommandGroup(groupName, name, description string, subcommands ...*Command) *discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := groupName + "." + name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		}
		options = append(options, opt)
	}

	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// RegisterCommands pushes the registered definitions to Discord
func (ch *CommandHandler) RegisterCommands() error {
	logger.Info("🔄 Sincronizando comandos...", "CommandHandler")
	if err := ch.SyncCommands(); err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("✅ %d comandos sincronizados.", len(ch.slashCommands)+len(ch.slashCommandsDev)), "CommandHandler")
	return nil
}

// UnregisterCommands removes every global command from Discord
func (ch *CommandHandler) UnregisterCommands() error {
	return errors.WrapIf(ch.UnregisterGuildCommands(""), "eliminar comandos globales")
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// AddDevCommand adds a command to the dev command list
func (ch *CommandHandler) AddDevCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommandsDev = append(ch.slashCommandsDev, cmd)
}

// Definitions returns the registered global definitions, or the dev guild ones
func (ch *CommandHandler) Definitions(dev bool) []*discordgo.ApplicationCommand {
	if dev {
		return ch.slashCommandsDev
	}
	return ch.slashCommands
}

// OverwriteGuildCommands replaces the commands of one guild with cmds
func (ch *CommandHandler) OverwriteGuildCommands(guildID string, cmds []*discordgo.ApplicationCommand) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.client.Session.State.User.ID, guildID, cmds)
	return errors.WrapIf(err, "sobrescribir comandos")
}

// ListGlobalCommands fetches the global commands Discord knows about
func (ch *CommandHandler) ListGlobalCommands() ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, "")
}

// ListGuildCommands fetches the commands registered in one guild
func (ch *CommandHandler) ListGuildCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, guildID)
}

// UnregisterGuildCommands removes every command registered in one guild
func (ch *CommandHandler) UnregisterGuildCommands(guildID string) error {
	return ch.OverwriteGuildCommands(guildID, []*discordgo.ApplicationCommand{})
}

// SyncCommands replaces the global commands, and the dev guild ones when
// configured, with the registered definitions. Stale commands disappear.
func (ch *CommandHandler) SyncCommands() error {
	appID := ch.client.Session.State.User.ID
	if _, err := ch.client.Session.ApplicationCommandBulkOverwrite(appID, "", ch.slashCommands); err != nil {
		return errors.WrapIf(err, "sincronizar comandos globales")
	}
	if devGuild := config.Get().DevGuildID; devGuild != "" {
		if _, err := ch.client.Session.ApplicationCommandBulkOverwrite(appID, devGuild, ch.slashCommandsDev); err != nil {
			return errors.WrapIf(err, "sincronizar comandos de desarrollo")
		}
	}
	return nil
}
