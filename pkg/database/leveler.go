package database

import (
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// LevelerStore keeps leveler documents in the users, badges, badgelinks,
// rolelinks, leveler_guilds and leveler_global collections.
type LevelerStore struct {
	users      *DataManager[models.LevelerUser]
	badges     *DataManager[models.BadgeDoc]
	badgeLinks *DataManager[models.BadgeLinks]
	roleLinks  *DataManager[models.RoleLinks]
	guilds     *DataManager[models.LevelerGuild]
	global     *DataManager[models.LevelerGlobal]
}

// NewLevelerStore creates the leveler store on db
func NewLevelerStore(db *Database) *LevelerStore {
	return &LevelerStore{
		users:      NewDataManager[models.LevelerUser]("users", db, DataManagerOptions{MaxCacheSize: 5000}),
		badges:     NewDataManager[models.BadgeDoc]("badges", db),
		badgeLinks: NewDataManager[models.BadgeLinks]("badgelinks", db),
		roleLinks:  NewDataManager[models.RoleLinks]("rolelinks", db),
		guilds:     NewDataManager[models.LevelerGuild]("leveler_guilds", db),
		global:     NewDataManager[models.LevelerGlobal]("leveler_global", db),
	}
}

func (s *LevelerStore) User(userID string) (*models.LevelerUser, error) {
	return s.users.Get(bson.M{"user_id": userID})
}

func (s *LevelerStore) SaveUser(u *models.LevelerUser) error {
	_, err := s.users.Set(bson.M{"user_id": u.UserID}, u)
	return err
}

func (s *LevelerStore) DeleteUser(userID string) error {
	return s.users.Delete(bson.M{"user_id": userID})
}

// ServerUsers returns every user with stats in guildID. Ranking is done by the caller.
func (s *LevelerStore) ServerUsers(guildID string) ([]*models.LevelerUser, error) {
	return s.users.Find(bson.M{"servers." + guildID: bson.M{"$exists": true}}, nil, 0)
}

func (s *LevelerStore) AllUsers() ([]*models.LevelerUser, error) {
	return s.users.Find(bson.M{}, bson.D{{Key: "total_exp", Value: -1}}, 0)
}

func (s *LevelerStore) Badges(serverID string) (*models.BadgeDoc, error) {
	return s.badges.Get(bson.M{"server_id": serverID})
}

func (s *LevelerStore) SaveBadges(doc *models.BadgeDoc) error {
	_, err := s.badges.Set(bson.M{"server_id": doc.ServerID}, doc)
	return err
}

func (s *LevelerStore) BadgeLinks(serverID string) (*models.BadgeLinks, error) {
	return s.badgeLinks.Get(bson.M{"server_id": serverID})
}

func (s *LevelerStore) SaveBadgeLinks(links *models.BadgeLinks) error {
	_, err := s.badgeLinks.Set(bson.M{"server_id": links.ServerID}, links)
	return err
}

func (s *LevelerStore) RoleLinks(serverID string) (*models.RoleLinks, error) {
	return s.roleLinks.Get(bson.M{"server_id": serverID})
}

func (s *LevelerStore) SaveRoleLinks(links *models.RoleLinks) error {
	_, err := s.roleLinks.Set(bson.M{"server_id": links.ServerID}, links)
	return err
}

func (s *LevelerStore) Guild(guildID string) (*models.LevelerGuild, error) {
	return s.guilds.Get(bson.M{"guild_id": guildID})
}

func (s *LevelerStore) SaveGuild(g *models.LevelerGuild) error {
	_, err := s.guilds.Set(bson.M{"guild_id": g.GuildID}, g)
	return err
}

func (s *LevelerStore) Global() (*models.LevelerGlobal, error) {
	return s.global.Get(bson.M{"key": "global"})
}

func (s *LevelerStore) SaveGlobal(g *models.LevelerGlobal) error {
	g.Key = "global"
	_, err := s.global.Set(bson.M{"key": "global"}, g)
	return err
}
