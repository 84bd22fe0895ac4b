package captcha

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUI records side effects and lets a test react to every challenge sent
type fakeUI struct {
	mu       sync.Mutex
	sent     int
	deleted  []string
	temps    []string
	logs     []string
	added    []string
	removed  []string
	kicked   []string
	notified []string
	rolesErr error
	onSend   func(c *Challenge, n int)
}

func (f *fakeUI) ResolveChannel(m Member, channel string) (string, error) {
	if channel == ChannelDM {
		return "dm-" + m.UserID, nil
	}
	return channel, nil
}

func (f *fakeUI) SendChallenge(c *Challenge, p Prompt) (string, error) {
	f.mu.Lock()
	f.sent++
	n := f.sent
	f.mu.Unlock()
	if f.onSend != nil {
		// the message ID must be known before the reaction arrives
		defer func() { go f.onSend(c, n) }()
	}
	return fmt.Sprintf("challenge-%d", n), nil
}

func (f *fakeUI) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeUI) SendTemporary(channelID, content string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.temps = append(f.temps, content)
}

func (f *fakeUI) Log(channelID, messageID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, content)
	if messageID == "" {
		messageID = fmt.Sprintf("log-%d", len(f.logs))
	}
	return messageID, nil
}

func (f *fakeUI) AddRoles(guildID, userID string, roleIDs []string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolesErr != nil && len(f.added) > 0 {
		return f.rolesErr
	}
	f.added = append(f.added, roleIDs...)
	return nil
}

func (f *fakeUI) RemoveRoles(guildID, userID string, roleIDs []string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, roleIDs...)
	return nil
}

func (f *fakeUI) Kick(m Member, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicked = append(f.kicked, reason)
	return nil
}

func (f *fakeUI) Notify(c *Challenge, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, content)
	return nil
}

func (f *fakeUI) lastLog() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.logs) == 0 {
		return ""
	}
	return f.logs[len(f.logs)-1]
}

var testMember = Member{GuildID: "g", GuildName: "Guild", UserID: "u", Username: "user"}

func newTestManager(t *testing.T, ui *fakeUI, edit func(s *Settings)) *Manager {
	t.Helper()
	store := NewMemoryStore()
	s, err := store.Load("g")
	require.NoError(t, err)
	s.SetEnabled(true)
	s.SetChannel("verify")
	s.SetLogsChannel("logs")
	s.SetTempRole("temp")
	s.AddAutoRole("member")
	require.NoError(t, s.SetType(TypeText))
	if edit != nil {
		edit(s)
	}
	require.NoError(t, store.Save(s))
	m := NewManager(store, ui)
	m.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC) }
	return m
}

func TestRealizePassed(t *testing.T) {
	ui := &fakeUI{}
	ui.onSend = func(c *Challenge, n int) {
		c.Answer(strings.ToLower(c.Code()), "answer")
	}
	m := newTestManager(t, ui, nil)

	var hooked Outcome
	m.OnFinish(func(c *Challenge, o Outcome) { hooked = o })

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, outcome)
	assert.Equal(t, OutcomePassed, hooked)
	assert.Equal(t, []string{"temp", "member"}, ui.added)
	assert.Equal(t, []string{"temp"}, ui.removed)
	assert.Empty(t, ui.kicked)
	assert.Contains(t, ui.deleted, "challenge-1")
	assert.Contains(t, ui.deleted, "answer")
	assert.Equal(t, 0, m.Running())

	log := ui.lastLog()
	assert.True(t, strings.HasPrefix(log, "**14:07 - 03/05/2024** <@u> (0/3): "), log)
	assert.Contains(t, log, "captcha superado")
}

func TestRealizeWrongThenPass(t *testing.T) {
	ui := &fakeUI{}
	ui.onSend = func(c *Challenge, n int) {
		if n == 1 {
			c.Answer("nope", fmt.Sprintf("answer-%d", n))
			return
		}
		c.Answer(c.Code(), fmt.Sprintf("answer-%d", n))
	}
	m := newTestManager(t, ui, nil)

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, outcome)
	assert.Equal(t, 2, ui.sent)
	assert.Equal(t, []string{"⚠️ Código inválido."}, ui.temps)
	assert.Contains(t, ui.deleted, "answer-1")
}

func TestRealizeCopiedCodeFails(t *testing.T) {
	ui := &fakeUI{}
	ui.onSend = func(c *Challenge, n int) {
		c.Answer(Obfuscate(c.Code()), "answer")
	}
	m := newTestManager(t, ui, func(s *Settings) { _ = s.SetRetries(1) })

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, 2, ui.sent)
	assert.Equal(t, []string{"Superó el número de intentos del captcha."}, ui.kicked)
	assert.Contains(t, ui.temps[0], "No lo copies")
}

func TestRealizeReloadChangesCode(t *testing.T) {
	ui := &fakeUI{}
	var first string
	ui.onSend = func(c *Challenge, n int) {
		if n == 1 {
			first = c.Code()
			for !c.Reload(fmt.Sprintf("challenge-%d", n)) {
				time.Sleep(time.Millisecond)
			}
			return
		}
		c.Answer(c.Code(), "answer")
	}
	m := newTestManager(t, ui, nil)

	var code string
	m.OnFinish(func(c *Challenge, o Outcome) {
		code = c.Code()
		assert.Equal(t, 1, c.TryNum)
	})
	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, outcome)
	assert.Contains(t, ui.deleted, "challenge-1")
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, code)
}

func TestRealizeReloadOnOtherMessageIgnored(t *testing.T) {
	c := newChallenge(testMember, "verify", Defaults("g"))
	c.Messages.BotChallenge = "challenge-1"
	assert.False(t, c.Reload("something-else"))
	assert.True(t, c.Reload("challenge-1"))
}

func TestRealizeTimeout(t *testing.T) {
	ui := &fakeUI{}
	m := newTestManager(t, ui, nil)
	settings, err := m.Store().Load("g")
	require.NoError(t, err)
	c, err := m.Create(testMember, settings)
	require.NoError(t, err)
	c.Timeout = 20 * time.Millisecond

	assert.Equal(t, OutcomeTimeout, m.Realize(context.Background(), c))
	assert.Equal(t, []string{"No respondió al captcha."}, ui.kicked)
	assert.Equal(t, 0, m.Running())
}

func TestRealizeLeave(t *testing.T) {
	ui := &fakeUI{}
	var m *Manager
	ui.onSend = func(c *Challenge, n int) {
		m.DispatchLeave("g", "u")
	}
	m = newTestManager(t, ui, nil)

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLeft, outcome)
	assert.Empty(t, ui.kicked)
}

func TestSkip(t *testing.T) {
	ui := &fakeUI{}
	var m *Manager
	ui.onSend = func(c *Challenge, n int) {
		assert.NoError(t, m.Skip("g", "u", "mod"))
	}
	m = newTestManager(t, ui, nil)

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, []string{"temp", "member"}, ui.added)
	assert.Contains(t, ui.lastLog(), "Captcha omitido por mod.")
	assert.ErrorIs(t, m.Skip("g", "u", "mod"), ErrNotRunning)
}

func TestMissingRolesNotifiesMember(t *testing.T) {
	ui := &fakeUI{rolesErr: assert.AnError}
	ui.onSend = func(c *Challenge, n int) {
		c.Answer(c.Code(), "answer")
	}
	m := newTestManager(t, ui, nil)

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, outcome)
	require.Len(t, ui.notified, 1)
	assert.Contains(t, ui.notified[0], "<@&member>")
}

func TestDispatchMessage(t *testing.T) {
	ui := &fakeUI{}
	var m *Manager
	ui.onSend = func(c *Challenge, n int) {
		assert.False(t, m.DispatchMessage("other", "u", c.Code(), "x"))
		assert.False(t, m.DispatchMessage("dm-u", "someone", c.Code(), "x"))
		assert.True(t, m.DispatchMessage("dm-u", "u", c.Code(), "answer"))
	}
	m = newTestManager(t, ui, func(s *Settings) { s.SetChannel(ChannelDM) })

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, outcome)
}

func TestHandleJoinIgnored(t *testing.T) {
	ui := &fakeUI{}
	m := newTestManager(t, ui, func(s *Settings) { s.SetEnabled(false) })

	outcome, err := m.HandleJoin(context.Background(), testMember)
	require.NoError(t, err)
	assert.Equal(t, Outcome(""), outcome)

	bot := testMember
	bot.IsBot = true
	outcome, err = m.HandleJoin(context.Background(), bot)
	require.NoError(t, err)
	assert.Equal(t, Outcome(""), outcome)
	assert.Zero(t, ui.sent)
}

func TestCreateAlreadyRunning(t *testing.T) {
	m := newTestManager(t, &fakeUI{}, nil)
	settings, err := m.Store().Load("g")
	require.NoError(t, err)

	_, err = m.Create(testMember, settings)
	require.NoError(t, err)
	_, err = m.Create(testMember, settings)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	_, err = m.HandleJoin(context.Background(), testMember)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestQueueLimitsSimultaneousChallenges(t *testing.T) {
	ui := &fakeUI{}
	release := make(chan struct{})
	ui.onSend = func(c *Challenge, n int) {
		<-release
		c.Answer(c.Code(), "answer")
	}
	m := newTestManager(t, ui, func(s *Settings) { _ = s.SetSimultaneous(1) })

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		member := testMember
		member.UserID = id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.HandleJoin(context.Background(), member)
		}()
	}

	require.Eventually(t, func() bool { return m.Running() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, m.Running())
	close(release)
	wg.Wait()
	assert.Equal(t, 2, ui.sent)
}

func TestLogStartsNewMessageWhenFull(t *testing.T) {
	ui := &fakeUI{}
	m := newTestManager(t, ui, nil)
	cfg := Defaults("g")
	cfg.LogsChannel = "logs"
	c := newChallenge(testMember, "verify", cfg)

	m.log(c, strings.Repeat("a", 1000))
	first := c.Messages.Logs
	m.log(c, strings.Repeat("b", 1000))
	assert.NotEqual(t, first, c.Messages.Logs)
	m.log(c, "short")
	assert.Equal(t, "log-2", c.Messages.Logs)
}
