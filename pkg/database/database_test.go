package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestGroupWritesKeepsOrder(t *testing.T) {
	ops := []QueuedOperation{
		{CollectionName: "users", Query: bson.M{"_id": "1"}},
		{CollectionName: "captcha", Query: bson.M{"guild_id": "g"}},
		{CollectionName: "users", Query: bson.M{"_id": "2"}, Op: OpDelete},
	}
	groups, order := groupWrites(ops)
	assert.Equal(t, []string{"users", "captcha"}, order)
	require.Len(t, groups["users"], 2)
	assert.Equal(t, "2", groups["users"][1].Query["_id"])
}

func TestQueuedOperationModel(t *testing.T) {
	set := QueuedOperation{Query: bson.M{"_id": "1"}, Data: bson.M{"rep": 3}}.model()
	assert.IsType(t, &mongo.UpdateOneModel{}, set)
	assert.True(t, *set.(*mongo.UpdateOneModel).Upsert)

	del := QueuedOperation{Query: bson.M{"_id": "1"}, Op: OpDelete}.model()
	assert.IsType(t, &mongo.DeleteOneModel{}, del)
}

func TestWriteQueueIsBounded(t *testing.T) {
	db := NewDatabase()
	for i := 0; i < maxQueuedWrites+5; i++ {
		db.AddToWriteQueue(QueuedOperation{CollectionName: "c", Query: bson.M{"n": i}})
	}
	assert.Equal(t, maxQueuedWrites, db.PendingWrites())
	assert.Equal(t, 5, db.writeQueue[0].Query["n"])
}

func TestAppliedBefore(t *testing.T) {
	err := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Index: 3}}}}
	assert.Equal(t, 3, appliedBefore(err))
	assert.Equal(t, 0, appliedBefore(ErrNotConnected))
}

func TestStatusWithoutDatabase(t *testing.T) {
	var db *Database
	status, ok := db.GetStatus()
	assert.False(t, ok)
	assert.Equal(t, "🔴 | Desconectado", status)
	assert.False(t, db.Connected())

	_, err := NewDatabase().Ping()
	assert.Equal(t, ErrNotConnected, err)
}

func TestLRUEvictsOldest(t *testing.T) {
	c := newLRU[int](2)
	one, two, three := 1, 2, 3
	c.put("a", &one)
	c.put("b", &two)
	_, _ = c.get("a")
	c.put("c", &three)

	_, ok := c.get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 1, *v)
	assert.Equal(t, 2, c.len())

	c.clear()
	assert.Zero(t, c.len())
}
