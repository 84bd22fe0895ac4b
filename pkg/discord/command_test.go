package discord

import (
	"fmt"
	"testing"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*CommandContext) error { return nil }

func TestCommandBuilder(t *testing.T) {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: "Miembro",
	}
	cmd := NewCommand("profile", "Tarjeta de perfil", "leveler", noop).
		WithOptions(opt).
		WithUserPermissions(discordgo.PermissionManageRoles).
		InGuild().
		RequiresDatabase()

	assert.Equal(t, "leveler", cmd.Category)
	assert.True(t, cmd.GuildOnly)
	assert.True(t, cmd.RequiresDB)
	assert.Equal(t, int64(discordgo.PermissionManageRoles), cmd.UserPermissions)

	app := cmd.ToApplicationCommand()
	assert.Equal(t, "profile", app.Name)
	require.Len(t, app.Options, 1)
	assert.Equal(t, "usuario", app.Options[0].Name)
}

func TestCommandKey(t *testing.T) {
	sub := func(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
		return &discordgo.ApplicationCommandInteractionDataOption{Type: discordgo.ApplicationCommandOptionSubCommand, Name: name, Options: opts}
	}
	tests := []struct {
		name string
		data discordgo.ApplicationCommandInteractionData
		want string
	}{
		{"plain", discordgo.ApplicationCommandInteractionData{Name: "profile"}, "profile"},
		{"plain with option", discordgo.ApplicationCommandInteractionData{
			Name:    "rank",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario"}},
		}, "rank"},
		{"subcommand", discordgo.ApplicationCommandInteractionData{
			Name:    "cogs",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{sub("ping")},
		}, "cogs.ping"},
		{"subcommand group", discordgo.ApplicationCommandInteractionData{
			Name: "lvlset",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:    "rank",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{sub("bg")},
			}},
		}, "lvlset.rank.bg"},
	}
	for _, tt := range tests {
		if got := CommandKey(tt.data); got != tt.want {
			t.Errorf("CommandKey(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func newTestClient() *ExtendedClient {
	c := &ExtendedClient{Commands: NewCommandCollection()}
	c.CommandHandler = NewCommandHandler(c)
	return c
}

func TestBuildCommandGroupRegistersKeys(t *testing.T) {
	c := newTestClient()
	group := c.CommandHandler.BuildCommandGroup("cogs", "Utilidades",
		NewCommand("ping", "Latencia", "utils", noop),
		NewCommand("help", "Ayuda", "utils", noop),
	)
	sub := c.CommandHandler.BuildSubcommandGroup("lvlset", "rank", "Tarjeta de rango",
		NewCommand("bg", "Fondo", "leveler", noop),
	)

	assert.Len(t, group.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, sub.Type)
	for _, key := range []string{"cogs.ping", "cogs.help", "lvlset.rank.bg"} {
		_, ok := c.Commands.Get(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Commands.Size())
}

func TestLoadCommands(t *testing.T) {
	c := newTestClient()
	assert.True(t, errors.Is(c.CommandHandler.LoadCommands(), ErrNoCommands))

	c.CommandHandler.RegisterCommand(NewCommand("profile", "Perfil", "leveler", noop))
	c.CommandHandler.AddDevCommand(&discordgo.ApplicationCommand{Name: "dev"})
	require.NoError(t, c.CommandHandler.LoadCommands())

	c.CommandHandler.AddGlobalCommand(&discordgo.ApplicationCommand{Name: "profile"})
	err := c.CommandHandler.LoadCommands()
	assert.True(t, errors.Is(err, ErrDuplicateCommand))
	assert.Contains(t, errors.GetDetails(err), "profile")
}

func TestCheckBlacklist(t *testing.T) {
	entries := map[string]*models.BlacklistEntry{
		"bad-user":  {ID: "bad-user", Type: models.BlacklistTypeUser, Reason: "spam"},
		"bad-guild": {ID: "bad-guild", Type: models.BlacklistTypeGuild},
	}
	lookup := func(id string, kind models.BlacklistType) (*models.BlacklistEntry, bool) {
		e, ok := entries[id]
		if !ok || e.Type != kind {
			return nil, false
		}
		return e, true
	}

	tests := []struct {
		user, guild string
		want        error
	}{
		{"ok", "", nil},
		{"ok", "fine", nil},
		{"bad-user", "bad-guild", ErrBlacklistedUser},
		{"ok", "bad-guild", ErrBlacklistedGuild},
		{"bad-guild", "", nil},
	}
	for _, tt := range tests {
		_, err := CheckBlacklist(lookup, tt.user, tt.guild)
		if err != tt.want {
			t.Errorf("CheckBlacklist(%q, %q) = %v, want %v", tt.user, tt.guild, err, tt.want)
		}
	}
}

func TestBlacklistEmbed(t *testing.T) {
	e := BlacklistEmbed(ErrBlacklistedGuild, &models.BlacklistEntry{Reason: "raid"})
	assert.Equal(t, "🚫 Servidor en Blacklist", e.Title)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "raid", e.Fields[0].Value)

	e = BlacklistEmbed(ErrBlacklistedUser, nil)
	assert.Equal(t, "🚫 Acceso Denegado", e.Title)
	assert.Empty(t, e.Fields)
}

func TestEventHandler(t *testing.T) {
	session, err := discordgo.New("Bot test")
	require.NoError(t, err)
	c := &ExtendedClient{Session: session}
	eh := NewEventHandler(c)

	assert.True(t, errors.Is(eh.LoadEvents(), ErrNoEvents))

	eh.On("Ready", func(*discordgo.Session, *discordgo.Ready) {})
	eh.On("MessageCreate", func(*discordgo.Session, *discordgo.MessageCreate) {})
	eh.On("MessageCreate", func(*discordgo.Session, *discordgo.MessageCreate) {})
	assert.Equal(t, map[string]int{"Ready": 1, "MessageCreate": 2}, eh.Counts())
	require.NoError(t, eh.LoadEvents())

	eh.RemoveAll()
	assert.Empty(t, eh.Counts())
}

func TestCommandCollectionKeys(t *testing.T) {
	cc := NewCommandCollection()
	cc.Set("weather", NewCommand("weather", "Clima", "weather", nil))
	cc.Set("lvl.profile", NewCommand("profile", "Perfil", "leveler", nil))
	cc.Set("admin.role.add", NewCommand("add", "Añade", "admin", nil))

	assert.Equal(t, []string{"admin.role.add", "lvl.profile", "weather"}, cc.Keys())

	all := cc.All()
	delete(all, "weather")
	assert.Equal(t, 3, cc.Size())
}

func TestHasPermissions(t *testing.T) {
	tests := []struct {
		name   string
		member *discordgo.Member
		perms  int64
		want   bool
	}{
		{"no member", nil, discordgo.PermissionManageRoles, false},
		{"admin", &discordgo.Member{Permissions: discordgo.PermissionAdministrator}, discordgo.PermissionManageRoles, true},
		{"exact", &discordgo.Member{Permissions: discordgo.PermissionManageRoles}, discordgo.PermissionManageRoles, true},
		{"partial", &discordgo.Member{Permissions: discordgo.PermissionManageRoles},
			discordgo.PermissionManageRoles | discordgo.PermissionManageChannels, false},
	}
	for _, tt := range tests {
		if got := hasPermissions(tt.member, tt.perms); got != tt.want {
			t.Errorf("%s: hasPermissions() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBotHas(t *testing.T) {
	assert.True(t, botHas(discordgo.PermissionAdministrator, discordgo.PermissionManageRoles))
	assert.True(t, botHas(discordgo.PermissionManageRoles|discordgo.PermissionSendMessages, discordgo.PermissionManageRoles))
	assert.False(t, botHas(discordgo.PermissionSendMessages, discordgo.PermissionManageRoles))
}

func TestMatching(t *testing.T) {
	names := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		names = append(names, fmt.Sprintf("fondo-%02d", i))
	}
	names = append(names, "Navidad")

	assert.Len(t, Matching(names, "fondo"), 25)
	assert.Equal(t, []string{"Navidad"}, Matching(names, "NAV"))
	assert.Empty(t, Matching(names, "zzz"))
}

func TestIntents(t *testing.T) {
	tests := []struct {
		name   string
		intent discordgo.Intent
	}{
		{"guild reactions", discordgo.IntentsGuildMessageReactions},
		{"direct messages", discordgo.IntentsDirectMessages},
		{"direct message reactions", discordgo.IntentsDirectMessageReactions},
		{"message content", discordgo.IntentsMessageContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Intents&tt.intent == 0 {
				t.Errorf("Intents = %b, want bit %b set", Intents, tt.intent)
			}
		})
	}
}
