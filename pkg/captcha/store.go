package captcha

import (
	"sync"

	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Store persists guild settings
type Store interface {
	Load(guildID string) (*Settings, error)
	Save(s *Settings) error
	Erase(guildID string) error
}

// DataManagerStore keeps settings in the captcha collection
type DataManagerStore struct {
	dm *database.DataManager[models.CaptchaConfig]
}

// NewDataManagerStore wraps dm
func NewDataManagerStore(dm *database.DataManager[models.CaptchaConfig]) *DataManagerStore {
	return &DataManagerStore{dm: dm}
}

func (d *DataManagerStore) Load(guildID string) (*Settings, error) {
	cfg, err := d.dm.Get(bson.M{"guild_id": guildID})
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return NewSettings(Defaults(guildID)), nil
	}
	return NewSettings(*cfg), nil
}

// Save writes the settings when something changed
func (d *DataManagerStore) Save(s *Settings) error {
	if !s.IsDirty() {
		return nil
	}
	cfg := s.Config()
	if _, err := d.dm.Set(bson.M{"guild_id": cfg.GuildID}, cfg); err != nil {
		return err
	}
	s.dirty = map[string]bool{}
	return nil
}

func (d *DataManagerStore) Erase(guildID string) error {
	return d.dm.Delete(bson.M{"guild_id": guildID})
}

// MemoryStore keeps settings in memory
type MemoryStore struct {
	mu      sync.Mutex
	configs map[string]models.CaptchaConfig
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: map[string]models.CaptchaConfig{}}
}

func (m *MemoryStore) Load(guildID string) (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[guildID]
	if !ok {
		return NewSettings(Defaults(guildID)), nil
	}
	return NewSettings(cfg), nil
}

func (m *MemoryStore) Save(s *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := s.Config()
	m.configs[cfg.GuildID] = cfg
	s.dirty = map[string]bool{}
	return nil
}

func (m *MemoryStore) Erase(guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, guildID)
	return nil
}
