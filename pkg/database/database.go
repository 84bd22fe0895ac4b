// Package database provides the MongoDB connection, the cached DataManager
// and the stores used by the cogs (leveler documents, guild settings, blacklist).
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// WriteOp is the kind of a queued write
type WriteOp int

const (
	OpSet WriteOp = iota
	OpDelete
)

// maxQueuedWrites bounds the offline queue; the oldest writes are dropped first
const maxQueuedWrites = 10000

// QueuedOperation is a write made while the database was unreachable
type QueuedOperation struct {
	CollectionName string
	Query          bson.M
	Op             WriteOp
	Data           interface{}
}

func (op QueuedOperation) model() mongo.WriteModel {
	if op.Op == OpDelete {
		return mongo.NewDeleteOneModel().SetFilter(op.Query)
	}
	return mongo.NewUpdateOneModel().SetFilter(op.Query).SetUpdate(bson.M{"$set": op.Data}).SetUpsert(true)
}

// Database manages the MongoDB connection. While it is offline, writes
// are queued and a backoff loop keeps reconnecting.
type Database struct {
	client      *mongo.Client
	db          *mongo.Database
	IsConnected bool
	mongoURL    string
	dbName      string
	reconnect   context.CancelFunc
	mu          sync.RWMutex
	collections map[string]*mongo.Collection

	queueMu    sync.Mutex
	writeQueue []QueuedOperation
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init connects the global database. On failure the returned Database is
// still usable and reconnects in the background.
func Init(mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase()
		err = database.Connect(mongoURL, dbName)
	})
	return database, err
}

// Get returns the global database instance
func Get() *Database {
	return database
}

// NewDatabase creates a disconnected Database
func NewDatabase() *Database {
	return &Database{collections: make(map[string]*mongo.Collection)}
}

func dial(mongoURL string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, errors.WrapIf(err, "conectar")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.WrapIf(err, "ping")
	}
	return client, nil
}

// Connect establishes a connection to MongoDB
func (d *Database) Connect(mongoURL, dbName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.IsConnected {
		return nil
	}
	d.mongoURL, d.dbName = mongoURL, dbName

	logger.System("Intentando conectar a la base de datos...", "DB")
	client, err := dial(mongoURL)
	if err != nil {
		logger.Critical(fmt.Sprintf("Fallo al conectar con la base de datos: %v", err), "DB")
		d.startReconnect()
		return err
	}
	d.attach(client)
	return nil
}

// attach switches to client. Callers hold d.mu.
func (d *Database) attach(client *mongo.Client) {
	d.client = client
	d.db = client.Database(d.dbName)
	d.IsConnected = true
	// collections resolved while offline pointed at nothing
	d.collections = make(map[string]*mongo.Collection)
	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	go d.syncOfflineWrites()
}

// noteFailure goes offline when err means the server is unreachable
func (d *Database) noteFailure(err error) {
	if d == nil || err == nil {
		return
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		d.MarkDisconnected()
	}
}

// MarkDisconnected switches to offline mode and starts reconnecting.
// Queued writes are replayed on reconnect.
func (d *Database) MarkDisconnected() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.IsConnected {
		return
	}
	d.IsConnected = false
	logger.Warn("Se perdió la conexión con la base de datos. Activando modo offline.", "DB")
	d.startReconnect()
}

// startReconnect launches the reconnect loop once. Callers hold d.mu.
func (d *Database) startReconnect() {
	if d.reconnect != nil || d.mongoURL == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.reconnect = cancel

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.MaxInterval = 2 * time.Minute
	b.MaxElapsedTime = 0

	go func() {
		var client *mongo.Client
		err := backoff.RetryNotify(func() error {
			var err error
			client, err = dial(d.mongoURL)
			return err
		}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
			logger.Info(fmt.Sprintf("Reintentando la conexión a la base de datos en %s", next.Round(time.Second)), "DB")
		})

		d.mu.Lock()
		defer d.mu.Unlock()
		d.reconnect = nil
		if err != nil {
			return
		}
		if d.client != nil {
			_ = d.client.Disconnect(context.Background())
		}
		d.attach(client)
	}()
}

// Connected reports whether the database is reachable
func (d *Database) Connected() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.IsConnected
}

// Disconnect stops reconnecting and closes the connection
func (d *Database) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reconnect != nil {
		d.reconnect()
		d.reconnect = nil
	}
	if d.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.client.Disconnect(ctx); err != nil {
		return errors.WrapIf(err, "desconectar")
	}
	d.IsConnected = false
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}

// Ping measures the database response time
func (d *Database) Ping() (time.Duration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.IsConnected || d.client == nil {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	err := d.client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// GetStatus returns the status line shown by /cogs status and the web API
func (d *Database) GetStatus() (string, bool) {
	if _, err := d.pingIfConnected(); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

func (d *Database) pingIfConnected() (time.Duration, error) {
	if d == nil {
		return 0, ErrNotConnected
	}
	return d.Ping()
}

// GetCollection returns a MongoDB collection, nil while offline
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	if col, ok := d.collections[name]; ok {
		return col
	}
	if d.db == nil {
		return nil
	}
	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

// AddToWriteQueue adds an operation to the offline write queue
func (d *Database) AddToWriteQueue(op QueuedOperation) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	d.writeQueue = append(d.writeQueue, op)
	if over := len(d.writeQueue) - maxQueuedWrites; over > 0 {
		logger.Warn(fmt.Sprintf("Cola offline llena, se descartan %d escrituras antiguas", over), "DB-Sync")
		d.writeQueue = append([]QueuedOperation(nil), d.writeQueue[over:]...)
	}
}

// groupWrites splits ops per collection keeping their order
func groupWrites(ops []QueuedOperation) (map[string][]QueuedOperation, []string) {
	groups := make(map[string][]QueuedOperation)
	var order []string
	for _, op := range ops {
		if _, ok := groups[op.CollectionName]; !ok {
			order = append(order, op.CollectionName)
		}
		groups[op.CollectionName] = append(groups[op.CollectionName], op)
	}
	return groups, order
}

// appliedBefore is how many writes of an ordered bulk write succeeded before err
func appliedBefore(err error) int {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		return bwe.WriteErrors[0].Index
	}
	return 0
}

// syncOfflineWrites replays the queue with one ordered bulk write per collection
func (d *Database) syncOfflineWrites() {
	d.queueMu.Lock()
	ops := d.writeQueue
	d.writeQueue = nil
	d.queueMu.Unlock()
	if len(ops) == 0 {
		return
	}

	logger.System(fmt.Sprintf("Sincronizando %d operaciones pendientes con la DB...", len(ops)), "DB-Sync")
	groups, order := groupWrites(ops)
	var failed []QueuedOperation
	for _, name := range order {
		batch := groups[name]
		col := d.GetCollection(name)
		if col == nil {
			failed = append(failed, batch...)
			continue
		}
		writes := make([]mongo.WriteModel, len(batch))
		for i, op := range batch {
			writes[i] = op.model()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, err := col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
		cancel()
		if err != nil {
			logger.Error(fmt.Sprintf("Error al sincronizar '%s': %v", name, err), "DB-Sync")
			failed = append(failed, batch[appliedBefore(err):]...)
			d.noteFailure(err)
		}
	}

	if len(failed) == 0 {
		logger.Success("Sincronización completada exitosamente.", "DB-Sync")
		return
	}
	d.queueMu.Lock()
	d.writeQueue = append(failed, d.writeQueue...)
	d.queueMu.Unlock()
	logger.Warn(fmt.Sprintf("%d operaciones no pudieron sincronizarse y se reintentarán.", len(failed)), "DB-Sync")
}

// PendingWrites returns how many offline writes are queued
func (d *Database) PendingWrites() int {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return len(d.writeQueue)
}
