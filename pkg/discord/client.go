// Package discord wraps discordgo with the command registry, the component
// router and the event bookkeeping shared by every cog.
package discord

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/bwmarrin/discordgo"
)

// Intents are the gateway events the cogs listen to
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildPresences |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentsMessageContent

func init() {
	discordgo.Logger = func(msgL int, _ int, format string, a ...interface{}) {
		log := logger.Info
		switch msgL {
		case discordgo.LogError:
			log = logger.Error
		case discordgo.LogWarning:
			log = logger.Warn
		case discordgo.LogDebug:
			log = logger.Debug
		}
		log(fmt.Sprintf(format, a...), "DiscordGo")
	}
}

// ExtendedClient is the bot session plus everything the cogs register on it
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	Components     *ComponentRouter
	Interactive    *Interactive
	StartTime      time.Time
	blacklist      BlacklistLookup
	ready          atomic.Bool
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init creates the global client once
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

func Get() *ExtendedClient {
	return client
}

// NewClient creates a client that is not connected yet
func NewClient(token string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = Intents
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := &ExtendedClient{
		Session:    session,
		Commands:   NewCommandCollection(),
		Components: NewComponentRouter(),
		blacklist:  cachedBlacklist,
	}
	c.Interactive = NewInteractive(c.Components)
	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)
	return c, nil
}

// Start checks the registrations and opens the gateway. Commands are
// synced with Discord on every Ready.
func (c *ExtendedClient) Start() error {
	if err := c.CommandHandler.LoadCommands(); err != nil {
		return err
	}
	if err := c.EventHandler.LoadEvents(); err != nil {
		return err
	}

	c.EventHandler.On("Ready", func(_ *discordgo.Session, _ *discordgo.Ready) {
		c.ready.Store(true)
		if err := c.CommandHandler.RegisterCommands(); err != nil {
			logger.Error(fmt.Sprintf("No se pudieron sincronizar los comandos: %v", err), "Client")
		}
	})
	c.EventHandler.On("InteractionCreate", c.handleInteraction)

	c.StartTime = time.Now()
	return c.Session.Open()
}

// CommandKey is the registry key of an invocation: "name", "group.sub" or "group.subgroup.sub"
func CommandKey(data discordgo.ApplicationCommandInteractionData) string {
	if len(data.Options) == 0 {
		return data.Name
	}
	opt := data.Options[0]
	switch opt.Type {
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		if len(opt.Options) > 0 {
			return data.Name + "." + opt.Name + "." + opt.Options[0].Name
		}
	case discordgo.ApplicationCommandOptionSubCommand:
		return data.Name + "." + opt.Name
	}
	return data.Name
}

func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		if !c.Components.Dispatch(s, i) {
			logger.Debug("Componente sin handler: "+i.MessageComponentData().CustomID, "Client")
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		if cmd, ok := c.Commands.Get(CommandKey(i.ApplicationCommandData())); ok && cmd.AutoComplete != nil {
			cmd.AutoComplete(&CommandContext{Session: s, Interaction: i, Client: c})
		}
	case discordgo.InteractionApplicationCommand:
		c.runCommand(&CommandContext{Session: s, Interaction: i, Client: c})
	}
}

func (c *ExtendedClient) runCommand(ctx *CommandContext) {
	key := CommandKey(ctx.Interaction.ApplicationCommandData())
	cmd, ok := c.Commands.Get(key)
	if !ok {
		logger.Warn("Comando desconocido: "+key, "Client")
		return
	}
	if err := c.BlacklistMiddleware(ctx); err != nil {
		return
	}
	if msg, ok := checkAccess(cmd, ctx); !ok {
		_ = ctx.ReplyEphemeral(msg)
		return
	}

	m := metrics.Get()
	m.Commands.WithLabelValues(key).Inc()
	start := time.Now()
	err := cmd.Run(ctx)
	metrics.ObserveSince(m.CommandRun.WithLabelValues(key), start)
	if err != nil {
		m.CommandErrors.WithLabelValues(key).Inc()
		logger.Error(fmt.Sprintf("Error ejecutando /%s: %v", key, err), "Client")
	}
}

// checkAccess enforces owner, database, guild and permission requirements
func checkAccess(cmd *Command, ctx *CommandContext) (string, bool) {
	inGuild := ctx.Interaction.GuildID != ""
	switch {
	case cmd.OwnerOnly && !ctx.IsOwner():
		return "❌ Este comando solo está disponible para los dueños del bot.", false
	case cmd.RequiresDB && !database.Get().Connected():
		return "❌ La base de datos no está disponible ahora mismo.", false
	case (cmd.GuildOnly || cmd.UserPermissions != 0) && !inGuild:
		return "❌ Este comando solo puede usarse en un servidor.", false
	case cmd.UserPermissions != 0 && !ctx.IsOwner() && !hasPermissions(ctx.Member(), cmd.UserPermissions):
		return "❌ No tienes permisos suficientes para usar este comando.", false
	case cmd.BotPermissions != 0 && inGuild && !botHas(ctx.Interaction.AppPermissions, cmd.BotPermissions):
		return "❌ Me faltan permisos en este canal para hacer eso.", false
	}
	return "", true
}

// hasPermissions is true for administrators or members holding every bit of perms
func hasPermissions(member *discordgo.Member, perms int64) bool {
	if member == nil {
		return false
	}
	return member.Permissions&discordgo.PermissionAdministrator != 0 || member.Permissions&perms == perms
}

// botHas checks the permissions Discord reports for the bot in the interaction channel
func botHas(granted, perms int64) bool {
	return granted&discordgo.PermissionAdministrator != 0 || granted&perms == perms
}

// Stop detaches every handler and closes the gateway
func (c *ExtendedClient) Stop() error {
	c.ready.Store(false)
	c.EventHandler.RemoveAll()
	if c.Session == nil {
		return nil
	}
	return c.Session.Close()
}

// IsReady is true between the first Ready and Stop
func (c *ExtendedClient) IsReady() bool {
	return c.ready.Load()
}

func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}
