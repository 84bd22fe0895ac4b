package leveler

import (
	"fmt"
	"sort"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// LevelUpPlan lists what the Discord layer must do after a level-up
type LevelUpPlan struct {
	GuildID string
	UserID  string
	Level   int

	// ChannelID is the announcement channel. Empty means the message channel.
	ChannelID string
	Private   bool
	// Name is the mention of the user, or "You" in private announcements
	Name             string
	ServerIdentifier string

	Announce bool
	TextOnly bool
	Mention  bool

	AddRoles      []string
	RemoveRoles   []string
	GrantedBadges []string
}

// Text returns the announcement used by text-only guilds
func (p *LevelUpPlan) Text() string {
	return fmt.Sprintf("%s just gained a level%s! (LEVEL %d)", p.Name, p.ServerIdentifier, p.Level)
}

// Caption returns the message sent along the level-up card
func (p *LevelUpPlan) Caption() string {
	return fmt.Sprintf("%s just gained a level%s!", p.Name, p.ServerIdentifier)
}

// LevelUp builds the plan for a user reaching level in msg's guild and grants linked badges
func (s *Service) LevelUp(msg Message, level int, mention string) (*LevelUpPlan, error) {
	guild, err := s.Guild(msg.GuildID)
	if err != nil {
		return nil, err
	}
	global, err := s.Global()
	if err != nil {
		return nil, err
	}

	plan := &LevelUpPlan{
		GuildID:   msg.GuildID,
		UserID:    msg.UserID,
		Level:     level,
		ChannelID: guild.LvlMsgLock,
		Name:      mention,
		Announce:  guild.LvlMsg,
		TextOnly:  guild.TextOnly,
		Mention:   global.Mention,
	}
	if guild.PrivateLvlMessage {
		plan.Private = true
		plan.ChannelID = ""
		plan.ServerIdentifier = " on " + msg.GuildName
		plan.Name = "You"
	}

	roles, err := s.store.RoleLinks(msg.GuildID)
	if err != nil {
		return nil, err
	}
	if roles != nil {
		names := make([]string, 0, len(roles.Roles))
		for name := range roles.Roles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			link := roles.Roles[name]
			if link.Level != level {
				continue
			}
			plan.AddRoles = append(plan.AddRoles, name)
			if link.RemoveRole != "" {
				plan.RemoveRoles = append(plan.RemoveRoles, link.RemoveRole)
			}
		}
	}

	granted, err := s.grantLinkedBadges(msg, level)
	if err != nil {
		return plan, err
	}
	plan.GrantedBadges = granted
	return plan, nil
}

// grantLinkedBadges copies every server badge linked to level into the user's badges
func (s *Service) grantLinkedBadges(msg Message, level int) ([]string, error) {
	links, err := s.store.BadgeLinks(msg.GuildID)
	if err != nil || links == nil {
		return nil, err
	}
	var names []string
	for name, lvl := range links.Badges {
		if lvl == level {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)
	doc, err := s.store.Badges(msg.GuildID)
	if err != nil || doc == nil {
		return nil, err
	}

	var granted []string
	_, err = s.UpdateUser(msg.UserID, msg.Username, msg.GuildID, func(u *models.LevelerUser) error {
		for _, name := range names {
			badge, ok := doc.Badges[name]
			if !ok {
				continue
			}
			key := BadgeKey(name, msg.GuildID)
			u.Badges[key] = badge
			granted = append(granted, key)
		}
		return nil
	})
	return granted, err
}
