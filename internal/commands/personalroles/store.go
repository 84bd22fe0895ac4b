package personalroles

import (
	"slices"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/text/cases"
)

const (
	errNoRole       = errors.Sentinel("no tienes un rol personal asignado")
	errBlocked      = errors.Sentinel("ese nombre de rol está bloqueado")
	errBlockedDup   = errors.Sentinel("ese nombre ya está bloqueado")
	errNotBlocked   = errors.Sentinel("ese nombre no está bloqueado")
	errNoSharing    = errors.Sentinel("no puedes compartir tu rol personal")
	errFull         = errors.Sentinel("tu rol ya tiene el máximo de amigos")
	errAlreadyHas   = errors.Sentinel("ese miembro ya tiene tu rol")
	errDoesNotHave  = errors.Sentinel("ese miembro no tiene tu rol")
	errNoRoleIcons  = errors.Sentinel("este servidor no puede usar iconos de rol")
	errRoleTooHigh  = errors.Sentinel("no puedo editar ese rol, tiene que estar por debajo del mío")
	errOwnRoleFirst = errors.Sentinel("no puedes añadirte como amigo de tu propio rol")
)

// Limits of the friends count a member may be given
const (
	MinLimit = 1
	MaxLimit = 30
)

var folder = cases.Fold()

// Fold normalizes a role name for blocklist comparisons
func Fold(name string) string {
	return folder.String(name)
}

func memberQuery(guildID, userID string) bson.M {
	return bson.M{"guild_id": guildID, "user_id": userID}
}

func guildQuery(guildID string) bson.M {
	return bson.M{"guild_id": guildID}
}

// LoadGuild returns the guild settings, with persistence on by default
func LoadGuild(guildID string) (*models.PersonalRolesGuild, error) {
	cfg, err := database.GlobalPersonalGuildDM.Get(guildQuery(guildID))
	if err != nil {
		return nil, errors.WrapIf(err, "leer roles personales del servidor")
	}
	if cfg == nil {
		return &models.PersonalRolesGuild{GuildID: guildID, RolePersistence: true}, nil
	}
	return cfg, nil
}

func saveGuild(cfg *models.PersonalRolesGuild) error {
	_, err := database.GlobalPersonalGuildDM.Set(guildQuery(cfg.GuildID), cfg)
	return errors.WrapIf(err, "guardar roles personales del servidor")
}

// LoadMember returns the member record, nil when the member has none
func LoadMember(guildID, userID string) (*models.PersonalRoleMember, error) {
	m, err := database.GlobalPersonalMemberDM.Get(memberQuery(guildID, userID))
	return m, errors.WrapIf(err, "leer rol personal")
}

func saveMember(m *models.PersonalRoleMember) error {
	_, err := database.GlobalPersonalMemberDM.Set(memberQuery(m.GuildID, m.UserID), m)
	return errors.WrapIf(err, "guardar rol personal")
}

// editable returns the record of the role userID may edit: their own, or
// the one of a member that listed them as a friend
func editable(guildID, userID string) (*models.PersonalRoleMember, error) {
	own, err := LoadMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	if own != nil && own.Role != "" {
		return own, nil
	}
	shared, err := database.GlobalPersonalMemberDM.Find(bson.M{"guild_id": guildID, "friends": userID}, nil, 1)
	if err != nil {
		return nil, errors.WrapIf(err, "buscar rol compartido")
	}
	if len(shared) == 0 || shared[0].Role == "" {
		return nil, errNoRole
	}
	return shared[0], nil
}

// Block adds a folded name to the blocklist
func Block(cfg *models.PersonalRolesGuild, name string) (string, error) {
	name = Fold(name)
	if slices.Contains(cfg.Blacklist, name) {
		return name, errBlockedDup
	}
	cfg.Blacklist = append(slices.Clone(cfg.Blacklist), name)
	return name, nil
}

// Unblock removes a folded name from the blocklist
func Unblock(cfg *models.PersonalRolesGuild, name string) (string, error) {
	name = Fold(name)
	i := slices.Index(cfg.Blacklist, name)
	if i < 0 {
		return name, errNotBlocked
	}
	cfg.Blacklist = slices.Delete(slices.Clone(cfg.Blacklist), i, i+1)
	return name, nil
}

// CheckName cuts name to 100 runes and rejects blocklisted names
func CheckName(cfg *models.PersonalRolesGuild, name string) (string, error) {
	r := []rune(name)
	if len(r) > 100 {
		name = string(r[:100])
	}
	if slices.Contains(cfg.Blacklist, Fold(name)) {
		return "", errBlocked
	}
	return name, nil
}

// AddFriend records friendID as sharing the role
func AddFriend(m *models.PersonalRoleMember, friendID string) error {
	switch {
	case friendID == m.UserID:
		return errOwnRoleFirst
	case m.Limit < MinLimit:
		return errNoSharing
	case slices.Contains(m.Friends, friendID):
		return errAlreadyHas
	case len(m.Friends) >= m.Limit:
		return errFull
	}
	m.Friends = append(slices.Clone(m.Friends), friendID)
	return nil
}

// RemoveFriend forgets friendID
func RemoveFriend(m *models.PersonalRoleMember, friendID string) error {
	i := slices.Index(m.Friends, friendID)
	if i < 0 {
		return errDoesNotHave
	}
	m.Friends = slices.Delete(slices.Clone(m.Friends), i, i+1)
	return nil
}
