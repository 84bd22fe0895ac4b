package leveler

import (
	"math/rand"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// Service applies the leveler rules on top of a Store. Every read-modify-write
// of a user document goes through mu so concurrent messages cannot lose XP.
type Service struct {
	store      Store
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	publishers []Publisher
	defaults   models.LevelerGlobal
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the XP random source
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithPublisher adds a receiver for exp and level-up events
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publishers = append(s.publishers, p) }
}

// WithDefaults sets the XP range and message length used before global settings are saved
func WithDefaults(xpMin, xpMax, messageLength int) Option {
	return func(s *Service) {
		if xpMin > 0 && xpMax >= xpMin {
			s.defaults.XPMin = xpMin
			s.defaults.XPMax = xpMax
		}
		if messageLength >= 0 {
			s.defaults.MessageLength = messageLength
		}
	}
}

// NewService creates a leveler service backed by store
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		defaults: DefaultGlobal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store
func (s *Service) Store() Store { return s.store }

func (s *Service) unix() float64 {
	return float64(s.now().UnixNano()) / 1e9
}

// Global returns the bot wide settings, falling back to defaults
func (s *Service) Global() (models.LevelerGlobal, error) {
	g, err := s.store.Global()
	if err != nil {
		return s.defaultGlobal(), errors.WrapIf(err, "leer ajustes globales")
	}
	if g == nil {
		return s.defaultGlobal(), nil
	}
	if g.Backgrounds.Profile == nil && g.Backgrounds.Rank == nil && g.Backgrounds.Levelup == nil {
		g.Backgrounds = DefaultBackgrounds()
	}
	return *g, nil
}

func (s *Service) defaultGlobal() models.LevelerGlobal {
	g := s.defaults
	g.Backgrounds = DefaultBackgrounds()
	return g
}

// UpdateGlobal loads, mutates and saves the global settings
func (s *Service) UpdateGlobal(fn func(g *models.LevelerGlobal) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.Global()
	if err != nil {
		return err
	}
	if err := fn(&g); err != nil {
		return err
	}
	return s.store.SaveGlobal(&g)
}

// Guild returns the leveler settings of a guild
func (s *Service) Guild(guildID string) (models.LevelerGuild, error) {
	g, err := s.store.Guild(guildID)
	if err != nil {
		return DefaultGuild(guildID), errors.WrapIf(err, "leer ajustes del servidor")
	}
	if g == nil {
		return DefaultGuild(guildID), nil
	}
	return *g, nil
}

// UpdateGuild loads, mutates and saves the settings of a guild
func (s *Service) UpdateGuild(guildID string, fn func(g *models.LevelerGuild) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.Guild(guildID)
	if err != nil {
		return err
	}
	if err := fn(&g); err != nil {
		return err
	}
	g.GuildID = guildID
	return s.store.SaveGuild(&g)
}

// ensureUser returns the stored user, creating it and its stats in guildID.
// Callers hold mu.
func (s *Service) ensureUser(userID, username, guildID string) (*models.LevelerUser, bool, error) {
	u, err := s.store.User(userID)
	if err != nil {
		return nil, false, errors.WrapIf(err, "leer usuario")
	}
	changed := false
	if u == nil {
		g, _ := s.Global()
		u = NewUser(userID, username, g.Backgrounds)
		changed = true
	}
	normalize(u)
	if username != "" && u.Username != username {
		u.Username = username
		changed = true
	}
	if guildID != "" {
		if _, ok := u.Servers[guildID]; !ok {
			u.Servers[guildID] = models.ServerStats{}
			changed = true
		}
	}
	return u, changed, nil
}

// User returns a user document, creating it on first sight. guildID may be empty.
func (s *Service) User(userID, username, guildID string) (*models.LevelerUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, changed, err := s.ensureUser(userID, username, guildID)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.store.SaveUser(u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// UpdateUser loads (creating if needed), mutates and saves a user
func (s *Service) UpdateUser(userID, username, guildID string, fn func(u *models.LevelerUser) error) (*models.LevelerUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, _, err := s.ensureUser(userID, username, guildID)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes every leveler record of a user
func (s *Service) DeleteUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteUser(userID)
}

// SetLevel forces a user's level in a guild and keeps total_exp consistent
func (s *Service) SetLevel(userID, username, guildID string, level int) (*models.LevelerUser, error) {
	if level < 0 {
		return nil, ErrInvalidLevel
	}
	return s.UpdateUser(userID, username, guildID, func(u *models.LevelerUser) error {
		old := u.Servers[guildID]
		u.TotalExp -= ServerExp(old)
		u.TotalExp += LevelExp(level)
		if u.TotalExp < 0 {
			u.TotalExp = 0
		}
		u.Servers[guildID] = models.ServerStats{Level: level}
		return nil
	})
}

// XPBan stops a user from earning experience for d
func (s *Service) XPBan(userID, username string, d time.Duration) (*models.LevelerUser, error) {
	return s.UpdateUser(userID, username, "", func(u *models.LevelerUser) error {
		u.ChatBlock = s.unix() + d.Seconds()
		return nil
	})
}

// ResetRep sets the reputation of every user to zero
func (s *Service) ResetRep() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.store.AllUsers()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range users {
		if u.Rep == 0 {
			continue
		}
		u.Rep = 0
		if err := s.store.SaveUser(u); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
