package models

// CaptchaConfig is the per guild CAPTCHA configuration
type CaptchaConfig struct {
	GuildID                string   `bson:"guild_id" json:"guild_id"`
	Channel                string   `bson:"channel" json:"channel"`
	LogsChannel            string   `bson:"logs_channel" json:"logs_channel"`
	Enabled                bool     `bson:"enabled" json:"enabled"`
	AutoRoles              []string `bson:"auto_roles" json:"auto_roles"`
	TempRole               string   `bson:"temp_role" json:"temp_role"`
	Type                   string   `bson:"type" json:"type"`
	Timeout                int      `bson:"timeout" json:"timeout"`
	Retries                int      `bson:"retries" json:"retries"`
	SimultaneousChallenges int      `bson:"simultaneous_challenges" json:"simultaneous_challenges"`
}

// MessagesLogConfig controls deleted/edited message logging
type MessagesLogConfig struct {
	GuildID           string   `bson:"guild_id"`
	Channel           string   `bson:"channel"`
	Deletion          bool     `bson:"deletion"`
	Editing           bool     `bson:"editing"`
	IgnoredChannels   []string `bson:"ignored_channels"`
	IgnoredUsers      []string `bson:"ignored_users"`
	IgnoredCategories []string `bson:"ignored_categories"`
}

// PersonalRolesGuild is the guild side of personal roles
type PersonalRolesGuild struct {
	GuildID         string   `bson:"guild_id"`
	Blacklist       []string `bson:"blacklist"`
	RolePersistence bool     `bson:"role_persistence"`
}

// PersonalRoleMember binds one member to their personal role
type PersonalRoleMember struct {
	GuildID string   `bson:"guild_id"`
	UserID  string   `bson:"user_id"`
	Role    string   `bson:"role"`
	// Limit is how many friends may share the role, 0 disables sharing
	Limit   int      `bson:"limit"`
	Friends []string `bson:"friends"`
}

// SelfRoleGuild lists roles members may toggle themselves
type SelfRoleGuild struct {
	GuildID string   `bson:"guild_id"`
	Roles   []string `bson:"roles"`
}

// GeneralChannelGuild is the channel managed by the general channel commands
type GeneralChannelGuild struct {
	GuildID string `bson:"guild_id"`
	Channel string `bson:"channel"`
}

// WeatherUnits is a guild or user preference for weather units
type WeatherUnits struct {
	Scope string `bson:"scope"` // "guild" or "user"
	ID    string `bson:"id"`
	Units string `bson:"units"`
}

// CleverbotGuild toggles mention replies
type CleverbotGuild struct {
	GuildID string `bson:"guild_id"`
	Enabled bool   `bson:"enabled"`
}

// GodvilleKey is a user's API key for one Godville server
type GodvilleKey struct {
	UserID string `bson:"user_id"`
	Server string `bson:"server"` // "ru" or "en"
	Key    string `bson:"key"`
}
