package leveler

import "github.com/PancyStudios/CogsBotGo/pkg/models"

// DefaultInfo is the profile text of new users
const DefaultInfo = "I am a mysterious person."

// Badge display styles
const (
	BadgeCircles = "circles"
	BadgeBars    = "bars"
	BadgeSquares = "squares"
	BadgeTags    = "tags"
)

// DefaultBackgrounds are the backgrounds shipped with the bot
func DefaultBackgrounds() models.Backgrounds {
	return models.Backgrounds{
		Profile: map[string]string{
			"alice":         "http://i.imgur.com/MUSuMao.png",
			"abstract":      "http://i.imgur.com/70ZH6LX.png",
			"bluestairs":    "http://i.imgur.com/EjuvxjT.png",
			"lamp":          "http://i.imgur.com/0nQSmKX.jpg",
			"coastline":     "http://i.imgur.com/XzUtY47.jpg",
			"redblack":      "http://i.imgur.com/74J2zZn.jpg",
			"default":       "http://i.imgur.com/8T1FUP5.jpg",
			"iceberg":       "http://i.imgur.com/8KowiMh.png",
			"miraiglasses":  "http://i.imgur.com/2Ak5VG3.png",
			"miraikuriyama": "http://i.imgur.com/jQ4s4jj.png",
			"mountaindawn":  "http://i.imgur.com/kJ1yYY6.jpg",
			"waterlilies":   "http://i.imgur.com/qwdcJjI.jpg",
		},
		Rank: map[string]string{
			"aurora":   "http://i.imgur.com/gVSbmYj.jpg",
			"default":  "http://i.imgur.com/SorwIrc.jpg",
			"nebula":   "http://i.imgur.com/V5zSCmO.jpg",
			"mountain": "http://i.imgur.com/qYqEUYp.jpg",
			"city":     "http://i.imgur.com/yr2cUM9.jpg",
		},
		Levelup: map[string]string{
			"default": "http://i.imgur.com/eEFfKqa.jpg",
		},
	}
}

// DefaultGlobal returns the bot wide settings used before anything is stored
func DefaultGlobal() models.LevelerGlobal {
	return models.LevelerGlobal{
		Key:           "global",
		BgPrice:       0,
		BadgeType:     BadgeCircles,
		XPMin:         15,
		XPMax:         20,
		MessageLength: 10,
		Mention:       true,
		Backgrounds:   DefaultBackgrounds(),
	}
}

// DefaultGuild returns the settings of a guild that never configured the leveler
func DefaultGuild(guildID string) models.LevelerGuild {
	return models.LevelerGuild{GuildID: guildID}
}

// NewUser builds the document of a user seen for the first time
func NewUser(userID, username string, bg models.Backgrounds) *models.LevelerUser {
	return &models.LevelerUser{
		UserID:            userID,
		Username:          username,
		Servers:           map[string]models.ServerStats{},
		ProfileBackground: bg.Profile["default"],
		RankBackground:    bg.Rank["default"],
		LevelupBackground: bg.Levelup["default"],
		Info:              DefaultInfo,
		Badges:            map[string]models.Badge{},
		ActiveBadges:      map[string]models.Badge{},
	}
}

// normalize fills the maps of documents stored by older versions
func normalize(u *models.LevelerUser) {
	if u.Servers == nil {
		u.Servers = map[string]models.ServerStats{}
	}
	if u.Badges == nil {
		u.Badges = map[string]models.Badge{}
	}
	if u.ActiveBadges == nil {
		u.ActiveBadges = map[string]models.Badge{}
	}
}
