package personalroles

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocklist(t *testing.T) {
	cfg := &models.PersonalRolesGuild{GuildID: "g"}

	name, err := Block(cfg, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "admin", name)

	_, err = Block(cfg, "Admin")
	assert.ErrorIs(t, err, errBlockedDup)

	_, err = CheckName(cfg, "aDmIn")
	assert.ErrorIs(t, err, errBlocked)

	got, err := CheckName(cfg, "Artista")
	require.NoError(t, err)
	assert.Equal(t, "Artista", got)

	_, err = Unblock(cfg, "Admin")
	require.NoError(t, err)
	assert.Empty(t, cfg.Blacklist)
	_, err = Unblock(cfg, "Admin")
	assert.ErrorIs(t, err, errNotBlocked)
}

func TestFoldGermanSharpS(t *testing.T) {
	assert.Equal(t, Fold("STRASSE"), Fold("straße"))
}

func TestCheckNameTruncates(t *testing.T) {
	got, err := CheckName(&models.PersonalRolesGuild{}, strings.Repeat("é", 120))
	require.NoError(t, err)
	assert.Equal(t, 100, utf8.RuneCountInString(got))
}

func TestFriends(t *testing.T) {
	rec := &models.PersonalRoleMember{UserID: "owner", Role: "r"}
	assert.ErrorIs(t, AddFriend(rec, "f1"), errNoSharing)

	rec.Limit = 1
	assert.ErrorIs(t, AddFriend(rec, "owner"), errOwnRoleFirst)
	require.NoError(t, AddFriend(rec, "f1"))
	assert.ErrorIs(t, AddFriend(rec, "f1"), errAlreadyHas)
	assert.ErrorIs(t, AddFriend(rec, "f2"), errFull)

	require.NoError(t, RemoveFriend(rec, "f1"))
	assert.ErrorIs(t, RemoveFriend(rec, "f1"), errDoesNotHave)
	assert.Empty(t, rec.Friends)
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"#ff0000", 0xff0000, false},
		{"0f0", 0x00ff00, false},
		{"nope", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColour(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColour(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColour(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestAssignedRows(t *testing.T) {
	guild := &discordgo.Guild{Roles: []*discordgo.Role{{ID: "r1", Name: "Pintores"}}}
	records := []*models.PersonalRoleMember{
		{UserID: "u1", Role: "r1"},
		{UserID: "u2", Role: "gone"},
		{UserID: "u3"},
	}
	rows := AssignedRows(records, guild, map[string]string{"u1": "Ana"})
	assert.Equal(t, []string{"Ana | Pintores", "[X] u2 | [X] gone"}, rows)
}
