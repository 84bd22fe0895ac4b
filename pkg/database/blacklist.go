package database

import (
	"fmt"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	ErrBlacklistManagerNotInitialized = errors.Sentinel("la blacklist no está disponible sin base de datos")
	ErrBlacklistEntryExists           = errors.Sentinel("la entrada ya está en la blacklist")
	ErrBlacklistEntryNotFound         = errors.Sentinel("la entrada no está en la blacklist")
	ErrBlacklistInvalidType           = errors.Sentinel("tipo de entrada desconocido")
)

// BlacklistCache keeps every blacklist entry in memory so checks never hit the database
type BlacklistCache struct {
	entries     map[string]*models.BlacklistEntry
	mu          sync.RWMutex
	stopRefresh chan struct{}
	refreshing  bool
}

// NewBlacklistCache creates an empty cache
func NewBlacklistCache() *BlacklistCache {
	return &BlacklistCache{
		entries:     make(map[string]*models.BlacklistEntry),
		stopRefresh: make(chan struct{}),
	}
}

var (
	blacklistCache = NewBlacklistCache()
)

// GetBlacklistCache returns the global blacklist cache
func GetBlacklistCache() *BlacklistCache {
	return blacklistCache
}

// Load replaces the cache content
func (c *BlacklistCache) Load(entries []*models.BlacklistEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*models.BlacklistEntry, len(entries))
	for _, e := range entries {
		c.entries[e.ID] = e
	}
}

// Put adds or replaces an entry
func (c *BlacklistCache) Put(entry *models.BlacklistEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.ID] = entry
}

// Remove drops an entry
func (c *BlacklistCache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Get returns the entry for id of any type
func (c *BlacklistCache) Get(id string) (*models.BlacklistEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// Lookup returns the entry for id of the given type
func (c *BlacklistCache) Lookup(id string, t models.BlacklistType) (*models.BlacklistEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || e.Type != t {
		return nil, false
	}
	return e, true
}

// All returns a snapshot of the entries, optionally filtered by type ("" for all)
func (c *BlacklistCache) All(t models.BlacklistType) []*models.BlacklistEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.BlacklistEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if t == "" || e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Size returns the number of cached entries
func (c *BlacklistCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// InitBlacklistCache loads every entry from the database
func InitBlacklistCache() error {
	return RefreshBlacklistCache()
}

// RefreshBlacklistCache reloads the cache from the database
func RefreshBlacklistCache() error {
	if GlobalBlacklistDM == nil {
		return ErrBlacklistManagerNotInitialized
	}
	entries, err := GlobalBlacklistDM.GetAll(bson.M{})
	if err != nil {
		return err
	}
	blacklistCache.Load(entries)
	logger.Info(fmt.Sprintf("Caché de blacklist cargada: %d entradas", len(entries)), "Blacklist")
	return nil
}

// StartBlacklistCacheRefresh refreshes the cache every interval until stopped
func StartBlacklistCacheRefresh(interval time.Duration) {
	c := blacklistCache
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.stopRefresh = make(chan struct{})
	stop := c.stopRefresh
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := RefreshBlacklistCache(); err != nil {
					logger.Warn(fmt.Sprintf("No se pudo refrescar la blacklist: %v", err), "Blacklist")
				}
			case <-stop:
				return
			}
		}
	}()
}

// StopBlacklistCacheRefresh stops the refresh loop
func StopBlacklistCacheRefresh() {
	c := blacklistCache
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshing {
		close(c.stopRefresh)
		c.refreshing = false
	}
}

// AddToBlacklist adds a user or guild to the blacklist
func AddToBlacklist(id string, t models.BlacklistType, reason, createdBy string) (*models.BlacklistEntry, error) {
	if !t.Valid() {
		return nil, errors.WithDetails(ErrBlacklistInvalidType, "type", t)
	}
	if _, exists := blacklistCache.Lookup(id, t); exists {
		return nil, ErrBlacklistEntryExists
	}
	if GlobalBlacklistDM == nil {
		return nil, ErrBlacklistManagerNotInitialized
	}
	entry := &models.BlacklistEntry{
		ID:        id,
		Type:      t,
		Reason:    reason,
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}
	if _, err := GlobalBlacklistDM.Set(bson.M{"_id": id}, entry); err != nil {
		return nil, err
	}
	blacklistCache.Put(entry)
	return entry, nil
}

// RemoveFromBlacklist removes an entry by ID
func RemoveFromBlacklist(id string) error {
	if _, ok := blacklistCache.Get(id); !ok {
		return ErrBlacklistEntryNotFound
	}
	if GlobalBlacklistDM == nil {
		return ErrBlacklistManagerNotInitialized
	}
	if err := GlobalBlacklistDM.Delete(bson.M{"_id": id}); err != nil {
		return err
	}
	blacklistCache.Remove(id)
	return nil
}

// IsUserBlacklisted checks the cache for a user entry
func IsUserBlacklisted(userID string) (bool, *models.BlacklistEntry) {
	e, ok := blacklistCache.Lookup(userID, models.BlacklistTypeUser)
	return ok, e
}

// IsGuildBlacklisted checks the cache for a guild entry
func IsGuildBlacklisted(guildID string) (bool, *models.BlacklistEntry) {
	e, ok := blacklistCache.Lookup(guildID, models.BlacklistTypeGuild)
	return ok, e
}
