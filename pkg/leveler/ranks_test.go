package leveler

import (
	"strings"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRanks(t *testing.T, store *MemoryStore) {
	t.Helper()
	users := []*models.LevelerUser{
		{UserID: "a", Username: "alice", Rep: 1, TotalExp: 900, Servers: map[string]models.ServerStats{"g1": {Level: 2, CurrentExp: 5}}},
		{UserID: "b", Username: "bob", Rep: 7, TotalExp: 300, Servers: map[string]models.ServerStats{"g1": {Level: 2, CurrentExp: 50}}},
		{UserID: "c", Username: "carol", Rep: 3, TotalExp: 1200, Servers: map[string]models.ServerStats{"g2": {Level: 5}}},
		{UserID: "d", Username: "a very long username indeed", Rep: 0, TotalExp: 10, Servers: map[string]models.ServerStats{"g1": {Level: 0, CurrentExp: 10}}},
	}
	for _, u := range users {
		require.NoError(t, store.SaveUser(u))
	}
}

func TestRanks(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedRanks(t, store)

	tests := []struct {
		name string
		fn   func() (int, error)
		want int
	}{
		{"server rank of bob", func() (int, error) { return svc.ServerRank("b", "g1") }, 1},
		{"server rank of alice", func() (int, error) { return svc.ServerRank("a", "g1") }, 2},
		{"server rank outside guild", func() (int, error) { return svc.ServerRank("c", "g1") }, 0},
		{"server rep rank", func() (int, error) { return svc.ServerRepRank("a", "g1") }, 2},
		{"global rank", func() (int, error) { return svc.GlobalRank("c") }, 1},
		{"global rep rank", func() (int, error) { return svc.GlobalRepRank("c") }, 2},
	}
	for _, tt := range tests {
		got, err := tt.fn()
		require.NoError(t, err, tt.name)
		if got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedRanks(t, store)

	b, err := svc.Leaderboard(BoardQuery{GuildID: "g1", GuildName: "Guild", UserID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "Exp Leaderboard for Guild", b.Title)
	assert.True(t, b.IsLevel)
	require.Len(t, b.Entries, 3)
	assert.Equal(t, "bob", b.Entries[0].Name)
	assert.Equal(t, ServerExp(models.ServerStats{Level: 2, CurrentExp: 50}), b.Entries[0].Value)
	assert.Equal(t, "a very long usernam…", b.Entries[2].Name)
	require.NotNil(t, b.Self)
	assert.Equal(t, 2, b.Self.Pos)

	pages := b.Pages(2)
	require.Len(t, pages, 2)
	assert.True(t, strings.HasPrefix(pages[0], "```\n#"))
	assert.Contains(t, pages[0], "bob")
	assert.Contains(t, pages[1], "a very long usernam")

	rep, err := svc.Leaderboard(BoardQuery{Global: true, Rep: true, BotName: "Cogs"})
	require.NoError(t, err)
	assert.Equal(t, BoardRep, rep.Kind)
	assert.Equal(t, "b", rep.Entries[0].UserID)
	assert.Nil(t, rep.Self)
	assert.Empty(t, rep.Footer())
}

func TestShorten(t *testing.T) {
	if got := Shorten("short", 20); got != "short" {
		t.Errorf("Shorten = %q", got)
	}
	if got := Shorten("ñññññ", 3); got != "ññ…" {
		t.Errorf("Shorten = %q, want %q", got, "ññ…")
	}
}
