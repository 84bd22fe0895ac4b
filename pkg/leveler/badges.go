package leveler

import (
	"sort"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// GlobalServer is the server ID under which bot wide badges are stored
const GlobalServer = "global"

// MinBadgeMembers is the human member count a guild needs to define badges
const MinBadgeMembers = 35

// BadgeKey is the key under which a server badge is stored in a user's badges
func BadgeKey(name, serverID string) string {
	return name + "_" + serverID
}

// NewBadge describes a badge being created or updated
type NewBadge struct {
	Name        string
	Description string
	BgImg       string
	Border      string
	Price       int
	ServerID    string
	ServerName  string
	// HumanMembers is the non-bot member count of the guild
	HumanMembers int
	IsOwner      bool
}

// ValidateBadge checks the rules a badge definition must follow
func ValidateBadge(b NewBadge) error {
	if b.ServerID == GlobalServer && !b.IsOwner {
		return ErrBadgeGlobalOwner
	}
	if !b.IsOwner && b.HumanMembers < MinBadgeMembers {
		return ErrBadgeGuildSize
	}
	if strings.Contains(b.Name, ".") {
		return ErrBadgeName
	}
	if b.Price < -1 {
		return ErrBadgePrice
	}
	if len(strings.Split(b.Description, " ")) > 40 {
		return ErrBadgeDescription
	}
	return nil
}

// AddBadge creates or replaces a badge. Replacing updates every holder and keeps their priority.
// It reports whether the badge already existed.
func (s *Service) AddBadge(b NewBadge) (bool, error) {
	if err := ValidateBadge(b); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Badges(b.ServerID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		doc = &models.BadgeDoc{ServerID: b.ServerID, ServerName: b.ServerName, Badges: map[string]models.Badge{}}
	}
	if doc.Badges == nil {
		doc.Badges = map[string]models.Badge{}
	}
	badge := models.Badge{
		BadgeName:   b.Name,
		Description: b.Description,
		Price:       b.Price,
		BgImg:       b.BgImg,
		Border:      b.Border,
		ServerID:    b.ServerID,
		ServerName:  b.ServerName,
	}
	_, existed := doc.Badges[b.Name]
	doc.Badges[b.Name] = badge
	if err := s.store.SaveBadges(doc); err != nil {
		return existed, err
	}
	if !existed {
		return false, nil
	}

	key := BadgeKey(b.Name, b.ServerID)
	return true, s.eachHolder(key, func(u *models.LevelerUser) {
		updated := badge
		updated.PriorityNum = u.Badges[key].PriorityNum
		u.Badges[key] = updated
	})
}

// DeleteBadge removes a badge definition and takes it from every holder
func (s *Service) DeleteBadge(serverID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.store.Badges(serverID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrBadgeNotFound
	}
	if _, ok := doc.Badges[name]; !ok {
		return ErrBadgeNotFound
	}
	delete(doc.Badges, name)
	if err := s.store.SaveBadges(doc); err != nil {
		return err
	}
	key := BadgeKey(name, serverID)
	return s.eachHolder(key, func(u *models.LevelerUser) { delete(u.Badges, key) })
}

// eachHolder applies fn to every user holding key and saves them. Callers hold mu.
func (s *Service) eachHolder(key string, fn func(u *models.LevelerUser)) error {
	users, err := s.store.AllUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		normalize(u)
		if _, ok := u.Badges[key]; !ok {
			continue
		}
		fn(u)
		if err := s.store.SaveUser(u); err != nil {
			return err
		}
	}
	return nil
}

// ServerBadges returns the badges defined for serverID sorted by name
func (s *Service) ServerBadges(serverID string) ([]models.Badge, error) {
	doc, err := s.store.Badges(serverID)
	if err != nil || doc == nil {
		return nil, err
	}
	out := make([]models.Badge, 0, len(doc.Badges))
	for _, b := range doc.Badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeName < out[j].BadgeName })
	return out, nil
}

func (s *Service) serverBadge(serverID, name string) (models.Badge, error) {
	doc, err := s.store.Badges(serverID)
	if err != nil {
		return models.Badge{}, err
	}
	if doc == nil {
		return models.Badge{}, ErrBadgeNotFound
	}
	b, ok := doc.Badges[name]
	if !ok {
		return models.Badge{}, ErrBadgeNotFound
	}
	return b, nil
}

// GiveBadge grants a server badge to a user
func (s *Service) GiveBadge(userID, username, serverID, name string) error {
	badge, err := s.serverBadge(serverID, name)
	if err != nil {
		return err
	}
	key := BadgeKey(name, serverID)
	_, err = s.UpdateUser(userID, username, "", func(u *models.LevelerUser) error {
		if _, ok := u.Badges[key]; ok {
			return ErrBadgeOwned
		}
		u.Badges[key] = badge
		return nil
	})
	return err
}

// TakeBadge removes a badge from a user. Purchasable badges cannot be taken.
func (s *Service) TakeBadge(userID, serverID, name string) error {
	if _, err := s.serverBadge(serverID, name); err != nil {
		return err
	}
	key := BadgeKey(name, serverID)
	_, err := s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		b, ok := u.Badges[key]
		if !ok {
			return ErrBadgeNotOwned
		}
		if b.Price != -1 {
			return ErrBadgePurchasable
		}
		delete(u.Badges, key)
		return nil
	})
	return err
}

// BuyBadge buys a server badge with leveler credits and returns the price paid
func (s *Service) BuyBadge(userID, username, serverID, name string) (int, error) {
	badge, err := s.serverBadge(serverID, name)
	if err != nil {
		return 0, err
	}
	if badge.Price == -1 {
		return 0, ErrBadgeNotForSale
	}
	key := BadgeKey(name, serverID)
	_, err = s.UpdateUser(userID, username, "", func(u *models.LevelerUser) error {
		if _, ok := u.Badges[key]; ok {
			return ErrBadgeOwned
		}
		if u.Credits < badge.Price {
			return ErrNotEnoughCredits
		}
		u.Credits -= badge.Price
		u.Badges[key] = badge
		return nil
	})
	if err != nil {
		return 0, err
	}
	return badge.Price, nil
}

// SetBadgePriority sets the display priority of an owned badge: -1 hides it, 0 keeps it off the profile
func (s *Service) SetBadgePriority(userID, name string, priority int) error {
	if priority < -1 || priority > 5000 {
		return ErrBadgePriority
	}
	_, err := s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		keys := make([]string, 0, len(u.Badges))
		for k := range u.Badges {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b := u.Badges[k]
			if b.BadgeName == name {
				b.PriorityNum = priority
				u.Badges[k] = b
				return nil
			}
		}
		return ErrBadgeNotOwned
	})
	return err
}

// ProfileBadges returns the badges shown on a profile: priority > 0, highest first
func ProfileBadges(u *models.LevelerUser, max int) []models.Badge {
	var out []models.Badge
	for _, b := range u.Badges {
		if b.PriorityNum > 0 {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityNum != out[j].PriorityNum {
			return out[i].PriorityNum > out[j].PriorityNum
		}
		return out[i].BadgeName < out[j].BadgeName
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// LinkBadge awards the badge name when members of serverID reach level
func (s *Service) LinkBadge(serverID, name string, level int) error {
	if _, err := s.serverBadge(serverID, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	links, err := s.store.BadgeLinks(serverID)
	if err != nil {
		return err
	}
	if links == nil {
		links = &models.BadgeLinks{ServerID: serverID}
	}
	if links.Badges == nil {
		links.Badges = map[string]int{}
	}
	links.Badges[name] = level
	return s.store.SaveBadgeLinks(links)
}

// UnlinkBadge removes a badge/level association and returns the level it had
func (s *Service) UnlinkBadge(serverID, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links, err := s.store.BadgeLinks(serverID)
	if err != nil {
		return 0, err
	}
	if links == nil {
		return 0, ErrLinkNotFound
	}
	level, ok := links.Badges[name]
	if !ok {
		return 0, ErrLinkNotFound
	}
	delete(links.Badges, name)
	return level, s.store.SaveBadgeLinks(links)
}

// LinkRole grants role at level, optionally removing removeRole
func (s *Service) LinkRole(serverID, role string, level int, removeRole string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	links, err := s.store.RoleLinks(serverID)
	if err != nil {
		return err
	}
	if links == nil {
		links = &models.RoleLinks{ServerID: serverID}
	}
	if links.Roles == nil {
		links.Roles = map[string]models.RoleLink{}
	}
	links.Roles[role] = models.RoleLink{Level: level, RemoveRole: removeRole}
	return s.store.SaveRoleLinks(links)
}

// UnlinkRole deletes a role/level association
func (s *Service) UnlinkRole(serverID, role string) (models.RoleLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links, err := s.store.RoleLinks(serverID)
	if err != nil {
		return models.RoleLink{}, err
	}
	if links == nil {
		return models.RoleLink{}, ErrLinkNotFound
	}
	link, ok := links.Roles[role]
	if !ok {
		return models.RoleLink{}, ErrLinkNotFound
	}
	delete(links.Roles, role)
	return link, s.store.SaveRoleLinks(links)
}
