package models

import "time"

// BlacklistType says whether an entry blocks a user or a whole guild
type BlacklistType string

const (
	BlacklistTypeUser  BlacklistType = "user"
	BlacklistTypeGuild BlacklistType = "guild"
)

// Valid reports whether t is one of the known kinds
func (t BlacklistType) Valid() bool {
	return t == BlacklistTypeUser || t == BlacklistTypeGuild
}

// Label is the name shown in embeds
func (t BlacklistType) Label() string {
	if t == BlacklistTypeUser {
		return "👤 Usuario"
	}
	return "🏰 Servidor"
}

// BlacklistEntry is a user or guild refused by every command.
// ID is the Discord snowflake and doubles as the document key.
type BlacklistEntry struct {
	ID        string        `bson:"_id" json:"id"`
	Type      BlacklistType `bson:"type" json:"type"`
	Reason    string        `bson:"reason" json:"reason"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	CreatedBy string        `bson:"created_by" json:"created_by"`
}
