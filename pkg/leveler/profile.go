package leveler

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// RepCooldownError is returned while the giver still has to wait
type RepCooldownError struct {
	Remaining time.Duration
}

func (e *RepCooldownError) Error() string {
	return "debes esperar " + e.Remaining.Round(time.Second).String() + " para volver a dar reputación"
}

// GiveRep gives one reputation point from giver to receiver
func (s *Service) GiveRep(giverID, giverName, receiverID, receiverName string, receiverIsBot bool) (*models.LevelerUser, error) {
	if giverID == receiverID {
		return nil, ErrSelfRep
	}
	if receiverIsBot {
		return nil, ErrBotRep
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	giver, _, err := s.ensureUser(giverID, giverName, "")
	if err != nil {
		return nil, err
	}
	now := s.unix()
	if delta := now - giver.RepBlock; delta < RepCooldown {
		return nil, &RepCooldownError{Remaining: time.Duration((RepCooldown - delta) * float64(time.Second))}
	}
	receiver, _, err := s.ensureUser(receiverID, receiverName, "")
	if err != nil {
		return nil, err
	}
	receiver.Rep++
	giver.RepBlock = now
	giver.LastRep = now
	if err := s.store.SaveUser(receiver); err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(giver); err != nil {
		return nil, err
	}
	return receiver, nil
}

// RepReady returns how long giverID must still wait, zero when a point can be given
func (s *Service) RepReady(giverID string) (time.Duration, error) {
	u, err := s.store.User(giverID)
	if err != nil || u == nil {
		return 0, err
	}
	delta := s.unix() - u.RepBlock
	if delta >= RepCooldown {
		return 0, nil
	}
	return time.Duration((RepCooldown - delta) * float64(time.Second)), nil
}

// SetTitle changes the profile title, up to 20 characters
func (s *Service) SetTitle(userID, title string) error {
	if utf8.RuneCountInString(title) > 20 {
		return ErrTitleTooLong
	}
	_, err := s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		u.Title = title
		return nil
	})
	return err
}

// SetInfo changes the profile description, up to 150 characters
func (s *Service) SetInfo(userID, info string) error {
	if utf8.RuneCountInString(info) > 150 {
		return ErrInfoTooLong
	}
	_, err := s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		u.Info = info
		return nil
	})
	return err
}

func backgroundsOf(bg *models.Backgrounds, card string) *map[string]string {
	switch card {
	case CardProfile:
		return &bg.Profile
	case CardRank:
		return &bg.Rank
	case CardLevelup:
		return &bg.Levelup
	}
	return nil
}

func setUserBackground(u *models.LevelerUser, card, url string) {
	switch card {
	case CardProfile:
		u.ProfileBackground = url
	case CardRank:
		u.RankBackground = url
	case CardLevelup:
		u.LevelupBackground = url
	}
}

// BackgroundNames lists the backgrounds available for card
func (s *Service) BackgroundNames(card string) ([]string, error) {
	g, err := s.Global()
	if err != nil {
		return nil, err
	}
	m := backgroundsOf(&g.Backgrounds, card)
	if m == nil {
		return nil, ErrUnknownSection
	}
	names := make([]string, 0, len(*m))
	for name := range *m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SetBackground switches a user's card background, charging bg_price credits.
// It returns the price charged.
func (s *Service) SetBackground(userID, card, name string) (int, error) {
	g, err := s.Global()
	if err != nil {
		return 0, err
	}
	m := backgroundsOf(&g.Backgrounds, card)
	if m == nil {
		return 0, ErrUnknownSection
	}
	url, ok := (*m)[name]
	if !ok {
		return 0, ErrUnknownBg
	}
	_, err = s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		if g.BgPrice > 0 {
			if u.Credits < g.BgPrice {
				return ErrNotEnoughCredits
			}
			u.Credits -= g.BgPrice
		}
		setUserBackground(u, card, url)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return g.BgPrice, nil
}

// SetCustomBackground sets any image URL as a user's background, without charge
func (s *Service) SetCustomBackground(userID, card, url string) error {
	if backgroundsOf(&models.Backgrounds{}, card) == nil {
		return ErrUnknownSection
	}
	_, err := s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		setUserBackground(u, card, url)
		return nil
	})
	return err
}

// AddBackground registers a named background for card
func (s *Service) AddBackground(card, name, url string) error {
	return s.UpdateGlobal(func(g *models.LevelerGlobal) error {
		m := backgroundsOf(&g.Backgrounds, card)
		if m == nil {
			return ErrUnknownSection
		}
		if *m == nil {
			*m = map[string]string{}
		}
		(*m)[name] = url
		return nil
	})
}

// DeleteBackground removes a named background. The default one cannot be removed.
func (s *Service) DeleteBackground(card, name string) error {
	return s.UpdateGlobal(func(g *models.LevelerGlobal) error {
		m := backgroundsOf(&g.Backgrounds, card)
		if m == nil {
			return ErrUnknownSection
		}
		if _, ok := (*m)[name]; !ok || name == "default" {
			return ErrUnknownBg
		}
		delete(*m, name)
		return nil
	})
}

// SetXPRange changes the XP granted per message
func (s *Service) SetXPRange(min, max int) error {
	if min < 0 || max < min {
		return ErrBadXPRange
	}
	return s.UpdateGlobal(func(g *models.LevelerGlobal) error {
		g.XPMin, g.XPMax = min, max
		return nil
	})
}
