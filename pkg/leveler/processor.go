package leveler

import (
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// Message is the part of a guild message the XP rules look at
type Message struct {
	GuildID        string
	GuildName      string
	ChannelID      string
	UserID         string
	Username       string
	Content        string
	HasAttachments bool
	IsBot          bool
}

// Result describes what a message earned
type Result struct {
	User      *models.LevelerUser
	Exp       int
	LeveledUp bool
	Level     int
	Credits   int
}

// Event is sent to publishers whenever XP is granted or a level is gained
type Event struct {
	Kind      string    `json:"kind"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Exp       int       `json:"exp"`
	Level     int       `json:"level"`
	TotalExp  int       `json:"total_exp"`
	Timestamp time.Time `json:"timestamp"`
}

// Event kinds
const (
	EventExp     = "exp"
	EventLevelUp = "levelup"
)

// Publisher receives leveler events
type Publisher interface {
	Publish(e Event)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(e Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// eligible reports whether a message earns XP
func eligible(u *models.LevelerUser, msg Message, guild models.LevelerGuild, global models.LevelerGlobal, now float64) bool {
	if msg.IsBot || guild.Disabled {
		return false
	}
	if now-u.ChatBlock < ChatCooldown {
		return false
	}
	if utf8.RuneCountInString(msg.Content) <= global.MessageLength && !msg.HasAttachments {
		return false
	}
	if msg.Content == u.LastMessage {
		return false
	}
	for _, ch := range guild.IgnoredChannels {
		if ch == msg.ChannelID {
			return false
		}
	}
	return true
}

// rollExp picks the XP of one message. Callers hold mu.
func (s *Service) rollExp(global models.LevelerGlobal) int {
	lo, hi := global.XPMin, global.XPMax
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// HandleMessage grants XP for msg when the rules allow it. It returns nil when nothing was granted.
func (s *Service) HandleMessage(msg Message) (*Result, error) {
	if msg.IsBot || msg.GuildID == "" {
		return nil, nil
	}
	guild, err := s.Guild(msg.GuildID)
	if err != nil {
		return nil, err
	}
	if guild.Disabled {
		return nil, nil
	}
	global, err := s.Global()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	u, _, err := s.ensureUser(msg.UserID, msg.Username, msg.GuildID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	now := s.unix()
	if !eligible(u, msg, guild, global, now) {
		s.mu.Unlock()
		return nil, nil
	}

	exp := s.rollExp(global)
	res := s.process(u, msg, exp, now)
	if guild.MsgCredits > 0 {
		u.Credits += guild.MsgCredits
		res.Credits = guild.MsgCredits
	}
	err = s.store.SaveUser(u)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m := metrics.Get()
	m.XPGranted.Add(float64(exp))
	s.publish(Event{
		Kind: EventExp, GuildID: msg.GuildID, UserID: u.UserID, Username: u.Username,
		Exp: exp, Level: res.Level, TotalExp: u.TotalExp, Timestamp: s.now(),
	})
	if res.LeveledUp {
		m.LevelUps.Inc()
		s.publish(Event{
			Kind: EventLevelUp, GuildID: msg.GuildID, UserID: u.UserID, Username: u.Username,
			Exp: exp, Level: res.Level, TotalExp: u.TotalExp, Timestamp: s.now(),
		})
	}
	return res, nil
}

// process adds exp to u in the message's guild
func (s *Service) process(u *models.LevelerUser, msg Message, exp int, now float64) *Result {
	stats := u.Servers[msg.GuildID]
	u.TotalExp += exp
	res := &Result{User: u, Exp: exp}

	required := RequiredExp(stats.Level)
	if stats.CurrentExp+exp >= required {
		stats.Level++
		stats.CurrentExp = stats.CurrentExp + exp - required
		res.LeveledUp = true
	} else {
		stats.CurrentExp += exp
	}
	res.Level = stats.Level
	u.Servers[msg.GuildID] = stats
	u.ChatBlock = now
	u.LastMessage = msg.Content
	return res
}

func (s *Service) publish(e Event) {
	for _, p := range s.publishers {
		p.Publish(e)
	}
}
