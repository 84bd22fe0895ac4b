package selfrole

import (
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemove(t *testing.T) {
	cfg := &models.SelfRoleGuild{GuildID: "g"}
	require.NoError(t, Add(cfg, "r1"))
	require.NoError(t, Add(cfg, "r2"))
	assert.ErrorIs(t, Add(cfg, "r1"), errListed)
	assert.Equal(t, []string{"r1", "r2"}, cfg.Roles)

	require.NoError(t, Remove(cfg, "r1"))
	assert.ErrorIs(t, Remove(cfg, "r1"), errUnlisted)
	assert.Equal(t, []string{"r2"}, cfg.Roles)
}

func TestRows(t *testing.T) {
	guild := &discordgo.Guild{Roles: []*discordgo.Role{{ID: "r1", Name: "Artistas"}}}
	cfg := &models.SelfRoleGuild{Roles: []string{"r1", "gone"}}
	assert.Equal(t, []string{"Artistas | `r1`", "gone | `gone`"}, Rows(cfg, guild))
}
