package database

import (
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGenerateCacheKeyIsDeterministic(t *testing.T) {
	dm := NewDataManager[models.SelfRoleGuild]("selfroles", NewDatabase())

	a := dm.generateCacheKey(bson.M{"guild_id": "1", "user_id": "2"})
	b := dm.generateCacheKey(bson.M{"user_id": "2", "guild_id": "1"})
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if want := "selfroles:{guild_id=1,user_id=2}"; a != want {
		t.Errorf("generateCacheKey() = %v, want %v", a, want)
	}
}

func TestOfflineSetIsQueuedAndReadable(t *testing.T) {
	db := NewDatabase()
	dm := NewDataManager[models.SelfRoleGuild]("selfroles_offline", db)
	defer dm.ClearCache()

	doc := &models.SelfRoleGuild{GuildID: "10", Roles: []string{"r1"}}
	if _, err := dm.Set(bson.M{"guild_id": "10"}, doc); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := db.PendingWrites(); got != 1 {
		t.Errorf("PendingWrites() = %v, want %v", got, 1)
	}

	got, err := dm.Get(bson.M{"guild_id": "10"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || len(got.Roles) != 1 || got.Roles[0] != "r1" {
		t.Errorf("Get() = %+v, want cached document", got)
	}

	if err := dm.Delete(bson.M{"guild_id": "10"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := db.PendingWrites(); got != 2 {
		t.Errorf("PendingWrites() = %v, want %v", got, 2)
	}
	if _, err := dm.Get(bson.M{"guild_id": "10"}); err != ErrNotConnected {
		t.Errorf("Get() after delete error = %v, want %v", err, ErrNotConnected)
	}
}

func TestOfflineFindFails(t *testing.T) {
	dm := NewDataManager[models.SelfRoleGuild]("selfroles", NewDatabase())
	if _, err := dm.Find(bson.M{}, nil, 0); err != ErrNotConnected {
		t.Errorf("Find() error = %v, want %v", err, ErrNotConnected)
	}
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	db := NewDatabase()
	dm := NewDataManager[models.LevelerUser]("users_copies", db)
	defer dm.ClearCache()

	doc := &models.LevelerUser{
		UserID:  "u1",
		Servers: map[string]models.ServerStats{"g1": {Level: 1, CurrentExp: 5}},
	}
	if _, err := dm.Set(bson.M{"user_id": "u1"}, doc); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	doc.Servers["g1"] = models.ServerStats{Level: 7}

	a, err := dm.Get(bson.M{"user_id": "u1"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, err := dm.Get(bson.M{"user_id": "u1"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a == b {
		t.Fatal("Get() returned the same pointer twice")
	}

	a.Servers["g1"] = models.ServerStats{Level: 9}
	if got := b.Servers["g1"].Level; got != 1 {
		t.Errorf("b.Servers[g1].Level = %v, want %v", got, 1)
	}
	c, _ := dm.Get(bson.M{"user_id": "u1"})
	if got := c.Servers["g1"].Level; got != 1 {
		t.Errorf("cached Servers[g1].Level = %v, want %v", got, 1)
	}

	queued := db.writeQueue[0].Data.(*models.LevelerUser)
	if got := queued.Servers["g1"].Level; got != 1 {
		t.Errorf("queued Servers[g1].Level = %v, want %v", got, 1)
	}
}
