package captcha

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"golang.org/x/sync/semaphore"
)

// Outcome is how a challenge ended
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeTimeout Outcome = "timeout"
	OutcomeLeft    Outcome = "left"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// maxLogLength keeps a log message under the Discord limit
const maxLogLength = 1900

// UI performs the Discord side effects of a challenge
type UI interface {
	// ResolveChannel turns the configured channel, an ID or "dm", into a channel ID
	ResolveChannel(m Member, channel string) (string, error)
	SendChallenge(c *Challenge, p Prompt) (string, error)
	DeleteMessage(channelID, messageID string) error
	SendTemporary(channelID, content string, ttl time.Duration)
	// Log sends content to channelID, editing messageID when set, and returns the message ID
	Log(channelID, messageID, content string) (string, error)
	AddRoles(guildID, userID string, roleIDs []string, reason string) error
	RemoveRoles(guildID, userID string, roleIDs []string, reason string) error
	Kick(m Member, reason string) error
	// Notify tells the member something, by DM or in the challenge channel
	Notify(c *Challenge, content string) error
}

// FinishHook is called after every challenge
type FinishHook func(c *Challenge, o Outcome)

type guildQueue struct {
	size int64
	sem  *semaphore.Weighted
}

// Manager runs challenges and routes Discord events to them
type Manager struct {
	store Store
	ui    UI
	now   func() time.Time

	mu      sync.Mutex
	running map[string]*Challenge
	queues  map[string]*guildQueue
	hooks   []FinishHook
}

// NewManager creates a manager
func NewManager(store Store, ui UI) *Manager {
	return &Manager{
		store:   store,
		ui:      ui,
		now:     time.Now,
		running: map[string]*Challenge{},
		queues:  map[string]*guildQueue{},
	}
}

// OnFinish registers a hook called when a challenge ends
func (m *Manager) OnFinish(h FinishHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Store returns the settings store
func (m *Manager) Store() Store { return m.store }

func key(guildID, userID string) string { return guildID + ":" + userID }

// Challenge returns the running challenge of a member
func (m *Manager) Challenge(guildID, userID string) (*Challenge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.running[key(guildID, userID)]
	return c, ok
}

// Running returns the number of running challenges
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.running)
}

// Create registers a challenge for member
func (m *Manager) Create(member Member, settings *Settings) (*Challenge, error) {
	cfg := settings.Config()
	if cfg.Channel == "" {
		return nil, ErrMissingChannel
	}
	m.mu.Lock()
	if _, ok := m.running[key(member.GuildID, member.UserID)]; ok {
		m.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	m.mu.Unlock()

	channelID, err := m.ui.ResolveChannel(member, cfg.Channel)
	if err != nil {
		return nil, errors.WrapIf(err, "resolver canal de verificación")
	}
	c := newChallenge(member, channelID, cfg)
	c.logf = m.log

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.running[key(member.GuildID, member.UserID)]; ok {
		return nil, ErrAlreadyRunning
	}
	m.running[key(member.GuildID, member.UserID)] = c
	return c, nil
}

func (m *Manager) remove(c *Challenge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.running[key(c.Member.GuildID, c.Member.UserID)]; ok && cur == c {
		delete(m.running, key(c.Member.GuildID, c.Member.UserID))
	}
}

// queue returns the semaphore of a guild, rebuilt when the limit changed
func (m *Manager) queue(guildID string, size int) *semaphore.Weighted {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[guildID]
	if !ok || q.size != int64(size) {
		q = &guildQueue{size: int64(size), sem: semaphore.NewWeighted(int64(size))}
		m.queues[guildID] = q
	}
	return q.sem
}

// log appends a timestamped line to the challenge log message
func (m *Manager) log(c *Challenge, content string) {
	logsChannel := c.Config.LogsChannel
	if logsChannel == "" {
		return
	}
	line := fmt.Sprintf("**%s** %s (%d/%d): %s",
		m.now().Format("15:04 - 01/02/2006"), c.Member.Mention(), c.TryNum, c.Limit, content)

	c.mu.Lock()
	text := c.logText
	msgID := c.Messages.Logs
	c.mu.Unlock()
	if text != "" && len(text)+len(line)+1 > maxLogLength {
		text, msgID = "", ""
	}
	if text != "" {
		text += "\n"
	}
	text += line

	id, err := m.ui.Log(logsChannel, msgID, text)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo registrar el captcha en %s: %v", c.Member.GuildID, err), "Captcha")
		return
	}
	c.mu.Lock()
	c.logText = text
	c.Messages.Logs = id
	c.mu.Unlock()
}

// HandleJoin challenges a member who just joined, waiting for a free slot in the guild queue
func (m *Manager) HandleJoin(ctx context.Context, member Member) (Outcome, error) {
	if member.IsBot {
		return "", nil
	}
	settings, err := m.store.Load(member.GuildID)
	if err != nil {
		return "", err
	}
	cfg := settings.Config()
	if !cfg.Enabled {
		return "", nil
	}
	if _, running := m.Challenge(member.GuildID, member.UserID); running {
		return "", ErrAlreadyRunning
	}

	sem := m.queue(member.GuildID, cfg.SimultaneousChallenges)
	if err := sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer sem.Release(1)

	c, err := m.Create(member, settings)
	if err != nil {
		return "", err
	}
	return m.Realize(ctx, c), nil
}

// Start challenges a member on demand with a custom timeout
func (m *Manager) Start(ctx context.Context, member Member, timeout time.Duration) (Outcome, error) {
	settings, err := m.store.Load(member.GuildID)
	if err != nil {
		return "", err
	}
	c, err := m.Create(member, settings)
	if err != nil {
		return "", err
	}
	if timeout > 0 {
		c.Timeout = timeout
	}
	return m.Realize(ctx, c), nil
}

// Realize runs the challenge until the member passes, runs out of tries,
// times out, leaves or is skipped, then applies the result.
func (m *Manager) Realize(ctx context.Context, c *Challenge) (outcome Outcome) {
	defer func() {
		m.cleanup(c)
		m.remove(c)
		metrics.Get().CaptchaOutcomes.WithLabelValues(string(outcome)).Inc()
		m.mu.Lock()
		hooks := append([]FinishHook(nil), m.hooks...)
		m.mu.Unlock()
		for _, h := range hooks {
			h(c, outcome)
		}
	}()

	member := c.Member
	if c.Config.TempRole != "" {
		if err := m.ui.AddRoles(member.GuildID, member.UserID, []string{c.Config.TempRole}, "Inicio del captcha"); err != nil {
			m.log(c, "❌ **No pude dar el rol temporal.**")
		}
	}

	passed, timedOut := false, false
loop:
	for !passed && c.TryNum <= c.Limit {
		ok, err := c.Try(ctx, m.ui)
		switch {
		case errors.Is(err, ErrTimeout):
			timedOut = true
			break loop
		case errors.Is(err, ErrAskedForReload):
			c.TryNum++
			continue
		case errors.Is(err, ErrLeftServer):
			m.log(c, "🚪 El miembro salió del servidor.")
			return OutcomeLeft
		case errors.Is(err, ErrSkipped):
			m.applySkip(c)
			return OutcomeSkipped
		case err != nil:
			logger.Error(fmt.Sprintf("Error en el captcha de %s: %v", member.UserID, err), "Captcha")
			m.log(c, "❌ **Error interno durante el captcha.**")
			return OutcomeError
		}
		if ok {
			passed = true
			break
		}
		c.TryNum++
		if c.Messages.Answer != "" {
			if err := m.ui.DeleteMessage(c.ChannelID, c.Messages.Answer); err != nil {
				m.log(c, "❌ **No pude borrar la respuesta del miembro.**")
			}
			c.Messages.Answer = ""
		}
	}

	if !passed {
		reason := "Superó el número de intentos del captcha."
		outcome = OutcomeFailed
		if timedOut {
			reason = "No respondió al captcha."
			outcome = OutcomeTimeout
		}
		if err := m.ui.Kick(member, reason); err != nil {
			m.log(c, "❌ **Me falta permiso para expulsar al miembro.**")
		} else {
			m.log(c, "**Miembro expulsado: "+reason+"**")
		}
		return outcome
	}

	if err := m.grant(c, "Captcha superado"); err != nil {
		m.alertMissingRoles(c)
		m.log(c, "❌ **Me falta permiso para dar los roles. Se avisó al miembro.**")
		return OutcomePassed
	}
	m.log(c, "**Roles añadidos, captcha superado.**")
	return OutcomePassed
}

// grant gives the auto roles and takes the temporary role
func (m *Manager) grant(c *Challenge, reason string) error {
	member := c.Member
	if len(c.Config.AutoRoles) > 0 {
		if err := m.ui.AddRoles(member.GuildID, member.UserID, c.Config.AutoRoles, reason); err != nil {
			return err
		}
	}
	if c.Config.TempRole != "" {
		if err := m.ui.RemoveRoles(member.GuildID, member.UserID, []string{c.Config.TempRole}, reason); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) alertMissingRoles(c *Challenge) {
	roles := "ninguno"
	if len(c.Config.AutoRoles) > 0 {
		mentions := make([]string, len(c.Config.AutoRoles))
		for i, r := range c.Config.AutoRoles {
			mentions[i] = "<@&" + r + ">"
		}
		roles = strings.Join(mentions, ", ")
	}
	msg := fmt.Sprintf("Contacta con la administración de %s para obtener acceso: no pude darte los roles del servidor.\nDeberías haber recibido: %s",
		c.Member.GuildName, roles)
	if err := m.ui.Notify(c, msg); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo avisar a %s: %v", c.Member.UserID, err), "Captcha")
	}
}

func (m *Manager) applySkip(c *Challenge) {
	by := c.SkippedBy()
	if err := m.grant(c, "Captcha omitido por "+by); err != nil {
		m.alertMissingRoles(c)
		m.log(c, "❌ **Captcha omitido, pero no pude dar los roles.**")
		return
	}
	m.log(c, "Captcha omitido por "+by+".")
}

// cleanup deletes every challenge message except the log
func (m *Manager) cleanup(c *Challenge) {
	for _, id := range []string{c.Messages.BotChallenge, c.Messages.Answer} {
		if id == "" {
			continue
		}
		if err := m.ui.DeleteMessage(c.ChannelID, id); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo borrar el mensaje %s: %v", id, err), "Captcha")
		}
	}
}

// Skip cancels the running challenge of a member and lets them in
func (m *Manager) Skip(guildID, userID, by string) error {
	c, ok := m.Challenge(guildID, userID)
	if !ok {
		return ErrNotRunning
	}
	c.Skip(by)
	return nil
}

// DispatchMessage routes a message to the challenge of its author in that channel
func (m *Manager) DispatchMessage(channelID, userID, content, messageID string) bool {
	m.mu.Lock()
	var target *Challenge
	for _, c := range m.running {
		if c.ChannelID == channelID && c.Member.UserID == userID {
			target = c
			break
		}
	}
	m.mu.Unlock()
	if target == nil {
		return false
	}
	return target.Answer(content, messageID)
}

// DispatchReaction routes a reload reaction
func (m *Manager) DispatchReaction(messageID, userID, emoji string) bool {
	if emoji != ReloadEmoji {
		return false
	}
	m.mu.Lock()
	var targets []*Challenge
	for _, c := range m.running {
		if c.Member.UserID == userID {
			targets = append(targets, c)
		}
	}
	m.mu.Unlock()
	for _, c := range targets {
		if c.Reload(messageID) {
			return true
		}
	}
	return false
}

// DispatchLeave tells the challenge of a member that they left
func (m *Manager) DispatchLeave(guildID, userID string) bool {
	c, ok := m.Challenge(guildID, userID)
	if !ok {
		return false
	}
	return c.Leave()
}
