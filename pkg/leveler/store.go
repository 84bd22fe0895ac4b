package leveler

import (
	"sync"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// Store persists leveler documents. Lookups return nil, nil when nothing is stored.
type Store interface {
	User(userID string) (*models.LevelerUser, error)
	SaveUser(u *models.LevelerUser) error
	DeleteUser(userID string) error
	ServerUsers(guildID string) ([]*models.LevelerUser, error)
	AllUsers() ([]*models.LevelerUser, error)

	Badges(serverID string) (*models.BadgeDoc, error)
	SaveBadges(doc *models.BadgeDoc) error
	BadgeLinks(serverID string) (*models.BadgeLinks, error)
	SaveBadgeLinks(links *models.BadgeLinks) error
	RoleLinks(serverID string) (*models.RoleLinks, error)
	SaveRoleLinks(links *models.RoleLinks) error

	Guild(guildID string) (*models.LevelerGuild, error)
	SaveGuild(g *models.LevelerGuild) error
	Global() (*models.LevelerGlobal, error)
	SaveGlobal(g *models.LevelerGlobal) error
}

// MemoryStore keeps every document in memory. Used by tests and when no database is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.LevelerUser
	badges     map[string]models.BadgeDoc
	badgeLinks map[string]models.BadgeLinks
	roleLinks  map[string]models.RoleLinks
	guilds     map[string]models.LevelerGuild
	global     *models.LevelerGlobal
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[string]models.LevelerUser{},
		badges:     map[string]models.BadgeDoc{},
		badgeLinks: map[string]models.BadgeLinks{},
		roleLinks:  map[string]models.RoleLinks{},
		guilds:     map[string]models.LevelerGuild{},
	}
}

func copyUser(u models.LevelerUser) *models.LevelerUser {
	out := u
	out.Servers = make(map[string]models.ServerStats, len(u.Servers))
	for k, v := range u.Servers {
		out.Servers[k] = v
	}
	out.Badges = copyBadges(u.Badges)
	out.ActiveBadges = copyBadges(u.ActiveBadges)
	return &out
}

func copyBadges(in map[string]models.Badge) map[string]models.Badge {
	out := make(map[string]models.Badge, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) User(userID string) (*models.LevelerUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (m *MemoryStore) SaveUser(u *models.LevelerUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.UserID] = *copyUser(*u)
	return nil
}

func (m *MemoryStore) DeleteUser(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	return nil
}

func (m *MemoryStore) ServerUsers(guildID string) ([]*models.LevelerUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.LevelerUser
	for _, u := range m.users {
		if _, ok := u.Servers[guildID]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (m *MemoryStore) AllUsers() ([]*models.LevelerUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.LevelerUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (m *MemoryStore) Badges(serverID string) (*models.BadgeDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.badges[serverID]
	if !ok {
		return nil, nil
	}
	doc.Badges = copyBadges(doc.Badges)
	return &doc, nil
}

func (m *MemoryStore) SaveBadges(doc *models.BadgeDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *doc
	saved.Badges = copyBadges(doc.Badges)
	m.badges[doc.ServerID] = saved
	return nil
}

func (m *MemoryStore) BadgeLinks(serverID string) (*models.BadgeLinks, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	links, ok := m.badgeLinks[serverID]
	if !ok {
		return nil, nil
	}
	badges := make(map[string]int, len(links.Badges))
	for k, v := range links.Badges {
		badges[k] = v
	}
	links.Badges = badges
	return &links, nil
}

func (m *MemoryStore) SaveBadgeLinks(links *models.BadgeLinks) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *links
	saved.Badges = make(map[string]int, len(links.Badges))
	for k, v := range links.Badges {
		saved.Badges[k] = v
	}
	m.badgeLinks[links.ServerID] = saved
	return nil
}

func (m *MemoryStore) RoleLinks(serverID string) (*models.RoleLinks, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	links, ok := m.roleLinks[serverID]
	if !ok {
		return nil, nil
	}
	roles := make(map[string]models.RoleLink, len(links.Roles))
	for k, v := range links.Roles {
		roles[k] = v
	}
	links.Roles = roles
	return &links, nil
}

func (m *MemoryStore) SaveRoleLinks(links *models.RoleLinks) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *links
	saved.Roles = make(map[string]models.RoleLink, len(links.Roles))
	for k, v := range links.Roles {
		saved.Roles[k] = v
	}
	m.roleLinks[links.ServerID] = saved
	return nil
}

func (m *MemoryStore) Guild(guildID string) (*models.LevelerGuild, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guilds[guildID]
	if !ok {
		return nil, nil
	}
	g.IgnoredChannels = append([]string(nil), g.IgnoredChannels...)
	return &g, nil
}

func (m *MemoryStore) SaveGuild(g *models.LevelerGuild) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *g
	saved.IgnoredChannels = append([]string(nil), g.IgnoredChannels...)
	m.guilds[g.GuildID] = saved
	return nil
}

func (m *MemoryStore) Global() (*models.LevelerGlobal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.global == nil {
		return nil, nil
	}
	g := *m.global
	return &g, nil
}

func (m *MemoryStore) SaveGlobal(g *models.LevelerGlobal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *g
	m.global = &saved
	return nil
}
