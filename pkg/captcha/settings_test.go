package captcha

import (
	"strings"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsFillsDefaults(t *testing.T) {
	s := NewSettings(models.CaptchaConfig{GuildID: "g"})
	cfg := s.Config()
	assert.Equal(t, TypeImage, cfg.Type)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultSimultaneous, cfg.SimultaneousChallenges)
	assert.False(t, s.IsDirty())
}

func TestSettingsValidation(t *testing.T) {
	s := NewSettings(Defaults("g"))

	assert.ErrorIs(t, s.SetType("audio"), ErrInvalidType)
	assert.ErrorIs(t, s.SetTimeout(0), ErrInvalidTimeout)
	assert.ErrorIs(t, s.SetTimeout(16), ErrInvalidTimeout)
	assert.ErrorIs(t, s.SetRetries(11), ErrInvalidRetries)
	assert.ErrorIs(t, s.SetSimultaneous(0), ErrInvalidParallel)
	assert.False(t, s.IsDirty())

	require.NoError(t, s.SetType(TypeWheezy))
	require.NoError(t, s.SetTimeout(15))
	require.NoError(t, s.SetRetries(1))
	assert.Equal(t, []string{"retries", "timeout", "type"}, s.Dirty())
}

func TestAutoRoles(t *testing.T) {
	s := NewSettings(Defaults("g"))
	assert.True(t, s.AddAutoRole("r1"))
	assert.False(t, s.AddAutoRole("r1"))
	assert.True(t, s.AddAutoRole("r2"))
	assert.True(t, s.RemoveAutoRole("r1"))
	assert.False(t, s.RemoveAutoRole("r1"))
	assert.Equal(t, []string{"r2"}, s.Config().AutoRoles)

	// Config returns a copy
	cfg := s.Config()
	cfg.AutoRoles[0] = "changed"
	assert.Equal(t, []string{"r2"}, s.Config().AutoRoles)
}

func TestProblems(t *testing.T) {
	s := NewSettings(Defaults("g"))
	bot := BotState{ManageRoles: true, KickMembers: true, TopRole: 10, RolePositions: map[string]int{"low": 2, "high": 12}}

	problems := s.Problems(bot)
	assert.Len(t, problems, 2)
	assert.False(t, s.CanBeEnabled(bot))

	s.SetChannel(ChannelDM)
	s.SetLogsChannel("logs")
	s.SetTempRole("low")
	s.AddAutoRole("low")
	assert.True(t, s.CanBeEnabled(bot))

	s.AddAutoRole("high")
	s.AddAutoRole("gone")
	bot.KickMembers = false
	problems = s.Problems(bot)
	require.Len(t, problems, 3)
	assert.True(t, strings.Contains(problems[0], "Expulsar"))
	assert.True(t, strings.Contains(problems[1], "<@&high>"))
	assert.True(t, strings.HasSuffix(problems[2], "gone"))
}

func TestExport(t *testing.T) {
	s := NewSettings(Defaults("g"))
	s.SetChannel("123")
	data, err := s.Export()
	require.NoError(t, err)

	var got models.CaptchaConfig
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "123", got.Channel)
	assert.Equal(t, "g", got.GuildID)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	s, err := store.Load("g")
	require.NoError(t, err)
	s.SetEnabled(true)
	require.NoError(t, store.Save(s))
	assert.False(t, s.IsDirty())

	again, err := store.Load("g")
	require.NoError(t, err)
	assert.True(t, again.Config().Enabled)

	require.NoError(t, store.Erase("g"))
	again, _ = store.Load("g")
	assert.False(t, again.Config().Enabled)
}
