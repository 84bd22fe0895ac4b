package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g", Name: "@everyone", Position: 0, Permissions: discordgo.PermissionSendMessages},
			{ID: "mod", Name: "Mod", Position: 5, Permissions: discordgo.PermissionManageRoles},
			{ID: "admin", Name: "Admin", Position: 9, Permissions: discordgo.PermissionAdministrator},
		},
	}
}

func TestRankOf(t *testing.T) {
	g := testGuild()

	mod := RankOf(g, &discordgo.Member{User: &discordgo.User{ID: "u1"}, Roles: []string{"mod"}})
	assert.Equal(t, 5, mod.TopRole)
	assert.True(t, mod.Can(discordgo.PermissionManageRoles))
	assert.True(t, mod.Can(discordgo.PermissionSendMessages))
	assert.False(t, mod.Can(discordgo.PermissionKickMembers))
	assert.True(t, mod.Above(4))
	assert.False(t, mod.Above(5))

	admin := RankOf(g, &discordgo.Member{User: &discordgo.User{ID: "u2"}, Roles: []string{"admin"}})
	assert.True(t, admin.Can(discordgo.PermissionKickMembers))

	owner := RankOf(g, &discordgo.Member{User: &discordgo.User{ID: "owner"}})
	assert.True(t, owner.IsOwner)
	assert.True(t, owner.Above(100))
}

func TestFindRole(t *testing.T) {
	g := testGuild()
	assert.Equal(t, "Mod", FindRole(g, "mod").Name)
	assert.Nil(t, FindRole(g, "missing"))
	assert.Equal(t, "admin", FindRoleByName(g, "Admin").ID)
	assert.Equal(t, 9, RolePositions(g)["admin"])
}
