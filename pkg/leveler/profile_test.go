package leveler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiveRep(t *testing.T) {
	svc, store, clock := newTestService(t)

	_, err := svc.GiveRep("u1", "alice", "u1", "alice", false)
	assert.ErrorIs(t, err, ErrSelfRep)
	_, err = svc.GiveRep("u1", "alice", "bot", "robot", true)
	assert.ErrorIs(t, err, ErrBotRep)

	receiver, err := svc.GiveRep("u1", "alice", "u2", "bob", false)
	require.NoError(t, err)
	assert.Equal(t, 1, receiver.Rep)

	clock.Advance(time.Hour)
	_, err = svc.GiveRep("u1", "alice", "u2", "bob", false)
	var cooldown *RepCooldownError
	require.True(t, errors.As(err, &cooldown), "err = %v", err)
	assert.Equal(t, 11*time.Hour, cooldown.Remaining)

	wait, err := svc.RepReady("u1")
	require.NoError(t, err)
	assert.Equal(t, 11*time.Hour, wait)

	clock.Advance(11 * time.Hour)
	_, err = svc.GiveRep("u1", "alice", "u2", "bob", false)
	require.NoError(t, err)
	u, _ := store.User("u2")
	assert.Equal(t, 2, u.Rep)

	n, err := svc.ResetRep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	u, _ = store.User("u2")
	assert.Zero(t, u.Rep)
}

func TestTitleAndInfoLimits(t *testing.T) {
	svc, store, _ := newTestService(t)

	assert.ErrorIs(t, svc.SetTitle("u1", strings.Repeat("x", 21)), ErrTitleTooLong)
	require.NoError(t, svc.SetTitle("u1", strings.Repeat("ñ", 20)))
	assert.ErrorIs(t, svc.SetInfo("u1", strings.Repeat("x", 151)), ErrInfoTooLong)
	require.NoError(t, svc.SetInfo("u1", "hola"))

	u, _ := store.User("u1")
	assert.Equal(t, strings.Repeat("ñ", 20), u.Title)
	assert.Equal(t, "hola", u.Info)
}

func TestBackgrounds(t *testing.T) {
	svc, store, _ := newTestService(t)

	names, err := svc.BackgroundNames(CardRank)
	require.NoError(t, err)
	assert.Equal(t, []string{"aurora", "city", "default", "mountain", "nebula"}, names)

	price, err := svc.SetBackground("u1", CardRank, "city")
	require.NoError(t, err)
	assert.Zero(t, price)
	u, _ := store.User("u1")
	assert.Equal(t, "http://i.imgur.com/yr2cUM9.jpg", u.RankBackground)

	_, err = svc.SetBackground("u1", CardRank, "missing")
	assert.ErrorIs(t, err, ErrUnknownBg)

	require.NoError(t, svc.UpdateGlobal(func(g *models.LevelerGlobal) error {
		g.BgPrice = 50
		return nil
	}))
	_, err = svc.SetBackground("u1", CardProfile, "alice")
	assert.ErrorIs(t, err, ErrNotEnoughCredits)

	require.NoError(t, svc.AddBackground(CardLevelup, "space", "https://example.com/space.png"))
	names, _ = svc.BackgroundNames(CardLevelup)
	assert.Equal(t, []string{"default", "space"}, names)
	require.NoError(t, svc.DeleteBackground(CardLevelup, "space"))
	assert.ErrorIs(t, svc.DeleteBackground(CardLevelup, "default"), ErrUnknownBg)

	require.NoError(t, svc.SetCustomBackground("u1", CardProfile, "https://example.com/me.png"))
	u, _ = store.User("u1")
	assert.Equal(t, "https://example.com/me.png", u.ProfileBackground)

	// defaults are not shared between calls
	fresh, _, _ := newTestService(t)
	names, _ = fresh.BackgroundNames(CardLevelup)
	assert.Equal(t, []string{"default"}, names)
}

func TestXPRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.ErrorIs(t, svc.SetXPRange(10, 5), ErrBadXPRange)
	require.NoError(t, svc.SetXPRange(5, 10))
	g, err := svc.Global()
	require.NoError(t, err)
	assert.Equal(t, 5, g.XPMin)
	assert.Equal(t, 10, g.XPMax)
}
