package leveler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	opts = append([]Option{WithClock(clock.Now), WithDefaults(20, 20, 10)}, opts...)
	return NewService(store, opts...), store, clock
}

func msg(content string) Message {
	return Message{
		GuildID:   "g1",
		GuildName: "Guild",
		ChannelID: "c1",
		UserID:    "u1",
		Username:  "alice",
		Content:   content,
	}
}

func TestHandleMessageGrantsExp(t *testing.T) {
	var events []Event
	svc, store, _ := newTestService(t, WithPublisher(PublisherFunc(func(e Event) { events = append(events, e) })))

	res, err := svc.HandleMessage(msg("hello there!"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 20, res.Exp)
	assert.False(t, res.LeveledUp)

	u, err := store.User("u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 20, u.TotalExp)
	assert.Equal(t, models.ServerStats{Level: 0, CurrentExp: 20}, u.Servers["g1"])
	assert.Equal(t, "hello there!", u.LastMessage)
	assert.Equal(t, DefaultInfo, u.Info)

	require.Len(t, events, 1)
	assert.Equal(t, EventExp, events[0].Kind)
}

func TestHandleMessageRules(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(svc *Service, clock *fakeClock)
		message Message
		granted bool
	}{
		{
			name:    "short message",
			message: msg("hi"),
		},
		{
			name:    "short multibyte message",
			message: msg("привет ✨"),
		},
		{
			name:    "multibyte message over the length",
			message: msg("¡árbol ñandú!"),
			granted: true,
		},
		{
			name: "short message with attachment",
			message: func() Message {
				m := msg("hi")
				m.HasAttachments = true
				return m
			}(),
			granted: true,
		},
		{
			name: "bot author",
			message: func() Message {
				m := msg("beep boop beep")
				m.IsBot = true
				return m
			}(),
		},
		{
			name: "ignored channel",
			setup: func(svc *Service, _ *fakeClock) {
				_ = svc.UpdateGuild("g1", func(g *models.LevelerGuild) error {
					g.IgnoredChannels = []string{"c1"}
					return nil
				})
			},
			message: msg("hello there!"),
		},
		{
			name: "disabled guild",
			setup: func(svc *Service, _ *fakeClock) {
				_ = svc.UpdateGuild("g1", func(g *models.LevelerGuild) error {
					g.Disabled = true
					return nil
				})
			},
			message: msg("hello there!"),
		},
		{
			name: "chat cooldown",
			setup: func(svc *Service, clock *fakeClock) {
				_, _ = svc.HandleMessage(msg("first message"))
				clock.Advance(119 * time.Second)
			},
			message: msg("second message"),
		},
		{
			name: "after cooldown",
			setup: func(svc *Service, clock *fakeClock) {
				_, _ = svc.HandleMessage(msg("first message"))
				clock.Advance(120 * time.Second)
			},
			message: msg("second message"),
			granted: true,
		},
		{
			name: "repeated content",
			setup: func(svc *Service, clock *fakeClock) {
				_, _ = svc.HandleMessage(msg("same message"))
				clock.Advance(time.Hour)
			},
			message: msg("same message"),
		},
		{
			name: "xp banned",
			setup: func(svc *Service, clock *fakeClock) {
				_, _ = svc.XPBan("u1", "alice", time.Hour)
				clock.Advance(30 * time.Minute)
			},
			message: msg("hello there!"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, clock := newTestService(t)
			if tt.setup != nil {
				tt.setup(svc, clock)
			}
			res, err := svc.HandleMessage(tt.message)
			require.NoError(t, err)
			if got := res != nil; got != tt.granted {
				t.Errorf("granted = %v, want %v", got, tt.granted)
			}
		})
	}
}

func TestHandleMessageLevelUp(t *testing.T) {
	var kinds []string
	svc, store, _ := newTestService(t, WithPublisher(PublisherFunc(func(e Event) { kinds = append(kinds, e.Kind) })))
	_, err := svc.UpdateUser("u1", "alice", "g1", func(u *models.LevelerUser) error {
		u.Servers["g1"] = models.ServerStats{Level: 0, CurrentExp: 60}
		u.TotalExp = 60
		return nil
	})
	require.NoError(t, err)

	res, err := svc.HandleMessage(msg("level me up"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.Level)

	u, _ := store.User("u1")
	assert.Equal(t, models.ServerStats{Level: 1, CurrentExp: 15}, u.Servers["g1"])
	assert.Equal(t, 80, u.TotalExp)
	assert.Equal(t, []string{EventExp, EventLevelUp}, kinds)
}

func TestHandleMessageDepositsCredits(t *testing.T) {
	svc, store, _ := newTestService(t)
	require.NoError(t, svc.UpdateGuild("g1", func(g *models.LevelerGuild) error {
		g.MsgCredits = 5
		return nil
	}))

	res, err := svc.HandleMessage(msg("hello there!"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 5, res.Credits)

	u, _ := store.User("u1")
	assert.Equal(t, 5, u.Credits)
}

func TestHandleMessageConcurrentGrantsOnce(t *testing.T) {
	svc, store, _ := newTestService(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.HandleMessage(msg(fmt.Sprintf("concurrent message %d", i)))
			if err != nil {
				t.Errorf("HandleMessage: %v", err)
				return
			}
			if res != nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if granted != 1 {
		t.Errorf("granted = %v, want 1", granted)
	}
	u, _ := store.User("u1")
	if u.TotalExp != 20 {
		t.Errorf("TotalExp = %v, want 20", u.TotalExp)
	}
}

func TestSetLevelKeepsTotalExpConsistent(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.UpdateUser("u1", "alice", "g1", func(u *models.LevelerUser) error {
		u.Servers["g1"] = models.ServerStats{Level: 1, CurrentExp: 10}
		u.Servers["g2"] = models.ServerStats{Level: 0, CurrentExp: 30}
		u.TotalExp = 65 + 10 + 30
		return nil
	})
	require.NoError(t, err)

	u, err := svc.SetLevel("u1", "alice", "g1", 3)
	require.NoError(t, err)
	assert.Equal(t, LevelExp(3)+30, u.TotalExp)
	assert.Equal(t, models.ServerStats{Level: 3}, u.Servers["g1"])

	_, err = svc.SetLevel("u1", "alice", "g1", -1)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
