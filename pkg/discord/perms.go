package discord

import (
	"emperror.dev/errors"
	"github.com/bwmarrin/discordgo"
)

// MemberRank is what a member can do in a guild
type MemberRank struct {
	Permissions int64
	// TopRole is the position of the member's highest role
	TopRole int
	IsOwner bool
}

// Can reports whether the member has every bit of perm
func (r MemberRank) Can(perm int64) bool {
	if r.IsOwner || r.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return r.Permissions&perm == perm
}

// Above reports whether the member can manage a role at position
func (r MemberRank) Above(position int) bool {
	return r.IsOwner || r.TopRole > position
}

// GuildRank computes the guild level permissions and top role of a member
// from the state cache, falling back to REST.
func GuildRank(s *discordgo.Session, guildID, userID string) (MemberRank, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		if guild, err = s.Guild(guildID); err != nil {
			return MemberRank{}, errors.WrapIf(err, "obtener servidor")
		}
	}
	member, err := s.State.Member(guildID, userID)
	if err != nil {
		if member, err = s.GuildMember(guildID, userID); err != nil {
			return MemberRank{}, errors.WrapIf(err, "obtener miembro")
		}
	}
	return RankOf(guild, member), nil
}

// RankOf computes a member rank from already fetched data
func RankOf(guild *discordgo.Guild, member *discordgo.Member) MemberRank {
	rank := MemberRank{IsOwner: member.User != nil && guild.OwnerID == member.User.ID}
	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			rank.Permissions |= role.Permissions
			continue
		}
		if !held[role.ID] {
			continue
		}
		rank.Permissions |= role.Permissions
		if role.Position > rank.TopRole {
			rank.TopRole = role.Position
		}
	}
	return rank
}

// RolePositions maps role IDs to their position
func RolePositions(guild *discordgo.Guild) map[string]int {
	out := make(map[string]int, len(guild.Roles))
	for _, r := range guild.Roles {
		out[r.ID] = r.Position
	}
	return out
}

// FindRole looks a guild role up by ID
func FindRole(guild *discordgo.Guild, roleID string) *discordgo.Role {
	for _, r := range guild.Roles {
		if r.ID == roleID {
			return r
		}
	}
	return nil
}

// FindRoleByName looks a guild role up by its exact name
func FindRoleByName(guild *discordgo.Guild, name string) *discordgo.Role {
	for _, r := range guild.Roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// AllMembers lists every member of a guild through REST, 1000 at a time
func AllMembers(s *discordgo.Session, guildID string) ([]*discordgo.Member, error) {
	var (
		out   []*discordgo.Member
		after string
	)
	for {
		page, err := s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return out, errors.WrapIf(err, "listar miembros")
		}
		out = append(out, page...)
		if len(page) < 1000 {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}
