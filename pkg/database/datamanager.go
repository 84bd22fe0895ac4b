package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConnected is returned by reads while the database is offline
const ErrNotConnected = errors.Sentinel("la base de datos no está conectada")

// DataManagerOptions contains configuration for a DataManager
type DataManagerOptions struct {
	MaxCacheSize int
}

// global DataManagers for shared collections
var (
	GlobalBlacklistDM      *DataManager[models.BlacklistEntry]
	GlobalCaptchaDM        *DataManager[models.CaptchaConfig]
	GlobalMessagesLogDM    *DataManager[models.MessagesLogConfig]
	GlobalPersonalGuildDM  *DataManager[models.PersonalRolesGuild]
	GlobalPersonalMemberDM *DataManager[models.PersonalRoleMember]
	GlobalSelfRoleDM       *DataManager[models.SelfRoleGuild]
	GlobalGeneralChannelDM *DataManager[models.GeneralChannelGuild]
	GlobalWeatherDM        *DataManager[models.WeatherUnits]
	GlobalCleverbotDM      *DataManager[models.CleverbotGuild]
	GlobalGodvilleDM       *DataManager[models.GodvilleKey]
)

// InitGlobalDataManagers initializes shared DataManager instances
func InitGlobalDataManagers(db *Database) {
	GlobalBlacklistDM = NewDataManager[models.BlacklistEntry]("blacklist", db)
	GlobalCaptchaDM = NewDataManager[models.CaptchaConfig]("captcha", db)
	GlobalMessagesLogDM = NewDataManager[models.MessagesLogConfig]("messageslog", db)
	GlobalPersonalGuildDM = NewDataManager[models.PersonalRolesGuild]("personalroles_guilds", db)
	GlobalPersonalMemberDM = NewDataManager[models.PersonalRoleMember]("personalroles_members", db)
	GlobalSelfRoleDM = NewDataManager[models.SelfRoleGuild]("selfroles", db)
	GlobalGeneralChannelDM = NewDataManager[models.GeneralChannelGuild]("generalchannel", db)
	GlobalWeatherDM = NewDataManager[models.WeatherUnits]("weather_units", db)
	GlobalCleverbotDM = NewDataManager[models.CleverbotGuild]("cleverbot", db)
	GlobalGodvilleDM = NewDataManager[models.GodvilleKey]("godville_keys", db)
}

// DataManager is a typed view of one collection with its own LRU of
// recently read documents. The LRU holds encoded documents, so every Get
// decodes a copy the caller owns. Writes made while offline are queued on the Database.
type DataManager[T any] struct {
	name       string
	dbInstance *Database
	options    DataManagerOptions
	cache      *lru[bson.Raw]
}

// DefaultDataManagerOptions returns default options for DataManager
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
	}
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
	}

	return &DataManager[T]{
		name:       collectionName,
		dbInstance: db,
		options:    dmOptions,
		cache:      newLRU[bson.Raw](dmOptions.MaxCacheSize),
	}
}

// Name returns the collection name
func (dm *DataManager[T]) Name() string {
	return dm.name
}

// col resolves the collection lazily so managers built while offline work after reconnecting
func (dm *DataManager[T]) col() *mongo.Collection {
	if dm.dbInstance == nil || !dm.dbInstance.Connected() {
		return nil
	}
	return dm.dbInstance.GetCollection(dm.name)
}

// enqueue stores a write for replay once the database is back
func (dm *DataManager[T]) enqueue(op WriteOp, query bson.M, data interface{}) {
	if dm.dbInstance == nil {
		return
	}
	dm.dbInstance.AddToWriteQueue(QueuedOperation{
		CollectionName: dm.name,
		Query:          query,
		Op:             op,
		Data:           data,
	})
}

// generateCacheKey renders query with sorted keys so equal queries share an entry
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, query[k])
	}
	return dm.name + ":{" + strings.Join(parts, ",") + "}"
}

// remember caches an encoded snapshot of doc
func (dm *DataManager[T]) remember(key string, doc *T) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		dm.cache.remove(key)
		return
	}
	r := bson.Raw(raw)
	dm.cache.put(key, &r)
}

// recall decodes a fresh copy of the cached document
func (dm *DataManager[T]) recall(key string) (*T, bool) {
	raw, ok := dm.cache.get(key)
	if !ok {
		return nil, false
	}
	var doc T
	if err := bson.Unmarshal(*raw, &doc); err != nil {
		dm.cache.remove(key)
		return nil, false
	}
	return &doc, true
}

// Get returns the document matching query, or nil when there is none
func (dm *DataManager[T]) Get(query bson.M) (*T, error) {
	cacheKey := dm.generateCacheKey(query)
	if doc, ok := dm.recall(cacheKey); ok {
		return doc, nil
	}

	col := dm.col()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result T
	err := col.FindOne(ctx, query).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Warn(fmt.Sprintf("Fallo al leer de la DB (%s): %v", dm.name, err), "DataManager")
		dm.dbInstance.noteFailure(err)
		return nil, errors.WrapIfWithDetails(err, "leer documento", "collection", dm.name)
	}

	dm.remember(cacheKey, &result)
	return &result, nil
}

// GetAll retrieves all documents matching a query from the database
func (dm *DataManager[T]) GetAll(query bson.M) ([]*T, error) {
	return dm.Find(query, nil, 0)
}

// Find retrieves documents matching query, optionally sorted and limited
func (dm *DataManager[T]) Find(query bson.M, sort bson.D, limit int64) ([]*T, error) {
	col := dm.col()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetAllowDiskUse(true)
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		dm.dbInstance.noteFailure(err)
		return nil, errors.WrapIfWithDetails(err, "buscar documentos", "collection", dm.name)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			logger.Warn(fmt.Sprintf("Documento ilegible en '%s': %v", dm.name, err), "DataManager")
			continue
		}
		results = append(results, &doc)
	}

	return results, cursor.Err()
}

// Count returns the number of documents matching query
func (dm *DataManager[T]) Count(query bson.M) (int64, error) {
	col := dm.col()
	if col == nil {
		return 0, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return col.CountDocuments(ctx, query)
}

// Set updates or inserts a document in the database and cache
func (dm *DataManager[T]) Set(query bson.M, data interface{}) (*T, error) {
	cacheKey := dm.generateCacheKey(query)

	col := dm.col()
	if col == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando escritura para '%s'", dm.name), "DataManager")
		// full documents stay readable from the cache until the queue is replayed
		var doc *T
		switch v := data.(type) {
		case *T:
			doc = v
		case T:
			doc = &v
		}
		if doc == nil {
			dm.enqueue(OpSet, query, data)
			dm.cache.remove(cacheKey)
			return nil, nil
		}
		dm.remember(cacheKey, doc)
		snapshot, ok := dm.recall(cacheKey)
		if !ok {
			dm.enqueue(OpSet, query, data)
			return doc, nil
		}
		dm.enqueue(OpSet, query, snapshot)
		return doc, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	err := col.FindOneAndUpdate(ctx, query, bson.M{"$set": data}, opts).Decode(&result)
	if err != nil {
		logger.Error(fmt.Sprintf("Error en 'set' sobre '%s': %v. Encolando por seguridad.", dm.name, err), "DataManager")
		dm.enqueue(OpSet, query, data)
		dm.cache.remove(cacheKey)
		dm.dbInstance.noteFailure(err)
		return nil, errors.WrapIfWithDetails(err, "guardar documento", "collection", dm.name)
	}

	dm.remember(cacheKey, &result)
	return &result, nil
}

// Delete removes a document from the database and cache
func (dm *DataManager[T]) Delete(query bson.M) error {
	dm.cache.remove(dm.generateCacheKey(query))

	col := dm.col()
	if col == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando eliminación para '%s'", dm.name), "DataManager")
		dm.enqueue(OpDelete, query, nil)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := col.DeleteOne(ctx, query)
	if err != nil {
		logger.Error(fmt.Sprintf("Error en 'delete' sobre '%s': %v. Encolando por seguridad.", dm.name, err), "DataManager")
		dm.enqueue(OpDelete, query, nil)
		dm.dbInstance.noteFailure(err)
		return errors.WrapIfWithDetails(err, "eliminar documento", "collection", dm.name)
	}

	return nil
}

// ClearCache drops every cached document of this collection
func (dm *DataManager[T]) ClearCache() {
	dm.cache.clear()
}

// CacheSize returns how many documents are cached
func (dm *DataManager[T]) CacheSize() int {
	return dm.cache.len()
}
