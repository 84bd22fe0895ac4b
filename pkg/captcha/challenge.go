// Package captcha challenges new members with a code they must type back
// before getting access to the guild.
package captcha

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/google/uuid"
)

// ReloadEmoji is the reaction that asks for a new code
const ReloadEmoji = "🔁"

// Member is the guild member being challenged
type Member struct {
	GuildID   string
	GuildName string
	UserID    string
	Username  string
	AvatarURL string
	IsBot     bool
}

// Mention returns the Discord mention of the member
func (m Member) Mention() string { return "<@" + m.UserID + ">" }

// Messages are the IDs of the messages a challenge created
type Messages struct {
	BotChallenge string
	Logs         string
	Answer       string
}

// Prompt is the challenge message to send
type Prompt struct {
	Content     string
	Title       string
	Author      string
	Description string
	Footer      string
	// Image is a PNG for image captchas, Text the obfuscated code for text captchas
	Image []byte
	Text  string
}

type eventKind int

const (
	eventMessage eventKind = iota
	eventReload
	eventLeave
)

type event struct {
	kind      eventKind
	content   string
	messageID string
}

// Challenge is one member's captcha
type Challenge struct {
	ID        string
	Member    Member
	ChannelID string
	Type      string
	Limit     int
	TryNum    int
	Timeout   time.Duration
	Messages  Messages
	Config    models.CaptchaConfig

	mu        sync.Mutex
	code      string
	running   bool
	events    chan event
	cancelled chan struct{}
	cancel    sync.Once
	skippedBy string
	logText   string
	logf      func(c *Challenge, content string)
	rng       *rand.Rand
}

func newChallenge(member Member, channelID string, cfg models.CaptchaConfig) *Challenge {
	return &Challenge{
		ID:        uuid.NewString(),
		Member:    member,
		ChannelID: channelID,
		Type:      cfg.Type,
		Limit:     cfg.Retries,
		Timeout:   time.Duration(cfg.Timeout) * time.Minute,
		Config:    cfg,
		code:      NewCode(),
		events:    make(chan event, 8),
		cancelled: make(chan struct{}),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Code returns the current code
func (c *Challenge) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

func (c *Challenge) push(e event) bool {
	select {
	case c.events <- e:
		return true
	default:
		return false
	}
}

// Answer feeds a message sent by the member in the challenge channel
func (c *Challenge) Answer(content, messageID string) bool {
	return c.push(event{kind: eventMessage, content: content, messageID: messageID})
}

// Reload feeds a reload reaction on messageID. Reactions on other messages are ignored.
func (c *Challenge) Reload(messageID string) bool {
	c.mu.Lock()
	current := c.Messages.BotChallenge
	c.mu.Unlock()
	if messageID != current {
		return false
	}
	return c.push(event{kind: eventReload})
}

// Leave tells the challenge the member left the guild
func (c *Challenge) Leave() bool {
	return c.push(event{kind: eventLeave})
}

// Skip cancels the challenge on behalf of by
func (c *Challenge) Skip(by string) {
	c.cancel.Do(func() {
		c.mu.Lock()
		c.skippedBy = by
		c.mu.Unlock()
		close(c.cancelled)
	})
}

// SkippedBy returns who skipped the challenge, empty when it was not skipped
func (c *Challenge) SkippedBy() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skippedBy
}

func (c *Challenge) log(content string) {
	if c.logf != nil {
		c.logf(c, content)
	}
}

func (c *Challenge) prompt() (Prompt, error) {
	p := Prompt{
		Content:     c.Member.Mention(),
		Title:       fmt.Sprintf("Sistema de verificación de %s", c.Member.GuildName),
		Author:      fmt.Sprintf("Captcha para %s", c.Member.Username),
		Description: fmt.Sprintf("Escríbeme el código que aparece a continuación. El código tiene %d caracteres.", CodeLength),
		Footer:      fmt.Sprintf("Intentos: %d / Límite: %d", c.TryNum, c.Limit),
	}
	switch c.Type {
	case TypeText:
		p.Text = Obfuscate(c.code)
	default:
		img, err := RenderImage(c.code, c.Type == TypeWheezy, c.rng)
		if err != nil {
			return p, err
		}
		p.Image = img
	}
	return p, nil
}

// send posts the challenge message, replacing the previous one with a new code on reloads
func (c *Challenge) send(ui UI) error {
	c.mu.Lock()
	old := c.Messages.BotChallenge
	if old != "" {
		c.code = NewCode()
	}
	c.mu.Unlock()
	if old != "" {
		_ = ui.DeleteMessage(c.ChannelID, old)
	}

	p, err := c.prompt()
	if err != nil {
		return err
	}
	id, err := ui.SendChallenge(c, p)
	if err != nil {
		return errors.WrapIf(err, "enviar captcha")
	}
	c.mu.Lock()
	c.Messages.BotChallenge = id
	c.mu.Unlock()
	return nil
}

// Try runs one attempt. It returns whether the member answered correctly,
// or ErrTimeout, ErrAskedForReload, ErrLeftServer or ErrSkipped.
func (c *Challenge) Try(ctx context.Context, ui UI) (bool, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return false, ErrChallengeRunning
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	if err := c.send(ui); err != nil {
		return false, err
	}
	c.log("ℹ️ El miembro comenzó el desafío.")

	timer := time.NewTimer(c.Timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.cancelled:
		return false, ErrSkipped
	case <-timer.C:
		return false, ErrTimeout
	case ev := <-c.events:
		switch ev.kind {
		case eventLeave:
			return false, ErrLeftServer
		case eventReload:
			c.log(ReloadEmoji + " El miembro pidió otro captcha.")
			return false, ErrAskedForReload
		}

		c.mu.Lock()
		c.Messages.Answer = ev.messageID
		code := c.code
		c.mu.Unlock()

		ok, err := Verify(code, ev.content)
		switch {
		case errors.Is(err, ErrCopiedCode):
			ui.SendTemporary(c.ChannelID, "❌ **Código inválido. No lo copies y pegues.**", 3*time.Second)
		case !ok:
			ui.SendTemporary(c.ChannelID, "⚠️ Código inválido.", 3*time.Second)
		}
		if !ok {
			c.log("❌ El miembro envió un código inválido.")
			return false, nil
		}
		c.log("✅ El miembro superó el captcha.")
		return true, nil
	}
}
