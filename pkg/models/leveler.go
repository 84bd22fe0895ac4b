package models

// ServerStats is a user's progress in one guild
type ServerStats struct {
	Level      int `bson:"level" json:"level"`
	CurrentExp int `bson:"current_exp" json:"current_exp"`
}

// Badge is a purchasable or awarded profile badge
type Badge struct {
	BadgeName   string `bson:"badge_name" json:"badge_name"`
	Description string `bson:"description" json:"description"`
	Price       int    `bson:"price" json:"price"`
	PriorityNum int    `bson:"priority_num" json:"priority_num"`
	BgImg       string `bson:"bg_img" json:"bg_img"`
	Border      string `bson:"border_color" json:"border_color"`
	ServerID    string `bson:"server_id" json:"server_id"`
	ServerName  string `bson:"server_name" json:"server_name"`
}

// LevelerUser is the global leveler document for one Discord user
type LevelerUser struct {
	UserID            string                 `bson:"user_id" json:"user_id"`
	Username          string                 `bson:"username" json:"username"`
	Servers           map[string]ServerStats `bson:"servers" json:"servers"`
	TotalExp          int                    `bson:"total_exp" json:"total_exp"`
	ProfileBackground string                 `bson:"profile_background" json:"profile_background"`
	RankBackground    string                 `bson:"rank_background" json:"rank_background"`
	LevelupBackground string                 `bson:"levelup_background" json:"levelup_background"`
	Title             string                 `bson:"title" json:"title"`
	Info              string                 `bson:"info" json:"info"`
	Rep               int                    `bson:"rep" json:"rep"`
	Badges            map[string]Badge       `bson:"badges" json:"badges"`
	ActiveBadges      map[string]Badge       `bson:"active_badges" json:"active_badges"`
	ProfileColors     CardColors             `bson:"profile_colors" json:"profile_colors"`
	RankColors        CardColors             `bson:"rank_colors" json:"rank_colors"`
	LevelupColors     CardColors             `bson:"levelup_colors" json:"levelup_colors"`
	RepBlock          float64                `bson:"rep_block" json:"rep_block"`
	ChatBlock         float64                `bson:"chat_block" json:"chat_block"`
	LastRep           float64                `bson:"lastrep" json:"lastrep"`
	LastMessage       string                 `bson:"last_message" json:"-"`
	Credits           int                    `bson:"credits" json:"credits"`
}

// CardColors holds the per-section colors of a card, as hex strings.
// Empty means the card default.
type CardColors struct {
	Rep      string `bson:"rep_color,omitempty" json:"rep_color,omitempty"`
	BadgeCol string `bson:"badge_col_color,omitempty" json:"badge_col_color,omitempty"`
	Info     string `bson:"info_color,omitempty" json:"info_color,omitempty"`
	Exp      string `bson:"exp_color,omitempty" json:"exp_color,omitempty"`
	Level    string `bson:"level_color,omitempty" json:"level_color,omitempty"`
}

// BadgeDoc stores the badges defined for a server, or "global"
type BadgeDoc struct {
	ServerID   string           `bson:"server_id"`
	ServerName string           `bson:"server_name"`
	Badges     map[string]Badge `bson:"badges"`
}

// BadgeLinks maps badge names to the level that awards them
type BadgeLinks struct {
	ServerID   string         `bson:"server_id"`
	ServerName string         `bson:"server_name"`
	Badges     map[string]int `bson:"badges"`
}

// RoleLink is the level at which a role is granted, and an optional role removed
type RoleLink struct {
	Level      int    `bson:"level"`
	RemoveRole string `bson:"remove_role"`
}

// RoleLinks maps role names to their link
type RoleLinks struct {
	ServerID   string              `bson:"server_id"`
	ServerName string              `bson:"server_name"`
	Roles      map[string]RoleLink `bson:"roles"`
}

// LevelerGuild holds per guild leveler settings
type LevelerGuild struct {
	GuildID           string   `bson:"guild_id"`
	Disabled          bool     `bson:"disabled"`
	LvlMsg            bool     `bson:"lvl_msg"`
	TextOnly          bool     `bson:"text_only"`
	PrivateLvlMessage bool     `bson:"private_lvl_message"`
	LvlMsgLock        string   `bson:"lvl_msg_lock"`
	MsgCredits        int      `bson:"msg_credits"`
	IgnoredChannels   []string `bson:"ignored_channels"`
}

// Backgrounds are the named background image URLs per card kind
type Backgrounds struct {
	Profile map[string]string `bson:"profile"`
	Rank    map[string]string `bson:"rank"`
	Levelup map[string]string `bson:"levelup"`
}

// LevelerGlobal holds bot wide leveler settings
type LevelerGlobal struct {
	Key            string      `bson:"key"`
	BgPrice        int         `bson:"bg_price"`
	BadgeType      string      `bson:"badge_type"`
	XPMin          int         `bson:"xp_min"`
	XPMax          int         `bson:"xp_max"`
	MessageLength  int         `bson:"message_length"`
	Mention        bool        `bson:"mention"`
	AllowGlobalTop bool        `bson:"allow_global_top"`
	GlobalLevels   bool        `bson:"global_levels"`
	RepRotation    bool        `bson:"rep_rotation"`
	Backgrounds    Backgrounds `bson:"backgrounds"`
}
