package leveler

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// Board kinds shown in the leaderboard header
const (
	BoardPoints = "Points"
	BoardRep    = "Rep"
)

// Entry is one row of a leaderboard
type Entry struct {
	Pos    int
	UserID string
	Name   string
	Value  int
	Level  int
}

// Board is a ranked leaderboard plus the caller's own row
type Board struct {
	Title   string
	Kind    string
	IsLevel bool
	Entries []Entry
	Self    *Entry
}

// Shorten cuts s to max runes with a trailing ellipsis
func Shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func displayName(u *models.LevelerUser) string {
	if u.Username != "" {
		return u.Username
	}
	return u.UserID
}

// sortServer orders users by level then current exp in guildID, highest first
func sortServer(users []*models.LevelerUser, guildID string) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i].Servers[guildID], users[j].Servers[guildID]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.CurrentExp > b.CurrentExp
	})
}

func sortRep(users []*models.LevelerUser) {
	sort.SliceStable(users, func(i, j int) bool { return users[i].Rep > users[j].Rep })
}

func sortTotal(users []*models.LevelerUser) {
	sort.SliceStable(users, func(i, j int) bool { return users[i].TotalExp > users[j].TotalExp })
}

func position(users []*models.LevelerUser, userID string) int {
	for i, u := range users {
		if u.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// ServerRank is the 1-based position of userID by level in guildID, 0 when unranked
func (s *Service) ServerRank(userID, guildID string) (int, error) {
	users, err := s.store.ServerUsers(guildID)
	if err != nil {
		return 0, err
	}
	sortServer(users, guildID)
	return position(users, userID), nil
}

// ServerRepRank is the position of userID by reputation among guildID members
func (s *Service) ServerRepRank(userID, guildID string) (int, error) {
	users, err := s.store.ServerUsers(guildID)
	if err != nil {
		return 0, err
	}
	sortRep(users)
	return position(users, userID), nil
}

// GlobalRank is the position of userID by total experience
func (s *Service) GlobalRank(userID string) (int, error) {
	users, err := s.store.AllUsers()
	if err != nil {
		return 0, err
	}
	sortTotal(users)
	return position(users, userID), nil
}

// GlobalRepRank is the position of userID by reputation among every user
func (s *Service) GlobalRepRank(userID string) (int, error) {
	users, err := s.store.AllUsers()
	if err != nil {
		return 0, err
	}
	sortRep(users)
	return position(users, userID), nil
}

// BoardQuery selects a leaderboard
type BoardQuery struct {
	GuildID   string
	GuildName string
	BotName   string
	UserID    string
	Global    bool
	Rep       bool
}

// Leaderboard builds the board selected by q
func (s *Service) Leaderboard(q BoardQuery) (*Board, error) {
	var (
		users []*models.LevelerUser
		err   error
	)
	if q.Global {
		users, err = s.store.AllUsers()
	} else {
		users, err = s.store.ServerUsers(q.GuildID)
	}
	if err != nil {
		return nil, err
	}

	b := &Board{Kind: BoardPoints}
	value := func(u *models.LevelerUser) (int, int) { return u.Rep, 0 }
	switch {
	case q.Global && q.Rep:
		b.Title = fmt.Sprintf("Global Rep Leaderboard for %s", q.BotName)
		b.Kind = BoardRep
		sortRep(users)
	case q.Global:
		b.Title = fmt.Sprintf("Global Exp Leaderboard for %s", q.BotName)
		global, _ := s.Global()
		b.IsLevel = global.GlobalLevels
		sortTotal(users)
		value = func(u *models.LevelerUser) (int, int) { return u.TotalExp, FindLevel(u.TotalExp) }
	case q.Rep:
		b.Title = fmt.Sprintf("Rep Leaderboard for %s", q.GuildName)
		b.Kind = BoardRep
		sortRep(users)
	default:
		b.Title = fmt.Sprintf("Exp Leaderboard for %s", q.GuildName)
		b.IsLevel = true
		sortServer(users, q.GuildID)
		value = func(u *models.LevelerUser) (int, int) {
			stats := u.Servers[q.GuildID]
			return ServerExp(stats), stats.Level
		}
	}

	b.Entries = make([]Entry, 0, len(users))
	for i, u := range users {
		v, lvl := value(u)
		e := Entry{Pos: i + 1, UserID: u.UserID, Name: Shorten(displayName(u), 20), Value: v, Level: lvl}
		b.Entries = append(b.Entries, e)
		if u.UserID == q.UserID {
			self := e
			b.Self = &self
		}
	}
	return b, nil
}

// Pages renders the board as code block tables of perPage rows each
func (b *Board) Pages(perPage int) []string {
	if perPage <= 0 {
		perPage = 10
	}
	if len(b.Entries) == 0 {
		return []string{"```\nSin datos todavía.\n```"}
	}

	var pages []string
	for start := 0; start < len(b.Entries); start += perPage {
		end := start + perPage
		if end > len(b.Entries) {
			end = len(b.Entries)
		}
		var sb strings.Builder
		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		if b.IsLevel {
			fmt.Fprintf(tw, "#\tLevel\t%s\tName\n", b.Kind)
		} else {
			fmt.Fprintf(tw, "#\t%s\tName\n", b.Kind)
		}
		for _, e := range b.Entries[start:end] {
			if b.IsLevel {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", e.Pos, e.Level, e.Value, e.Name)
			} else {
				fmt.Fprintf(tw, "%d\t%d\t%s\n", e.Pos, e.Value, e.Name)
			}
		}
		_ = tw.Flush()
		pages = append(pages, "```\n"+sb.String()+"```")
	}
	return pages
}

// Footer describes the caller's position, or is empty when they are not ranked
func (b *Board) Footer() string {
	if b.Self == nil {
		return ""
	}
	if b.IsLevel {
		return fmt.Sprintf("Tu posición: %d | %s: %d | Nivel: %d", b.Self.Pos, b.Kind, b.Self.Value, b.Self.Level)
	}
	return fmt.Sprintf("Tu posición: %d | %s: %d", b.Self.Pos, b.Kind, b.Self.Value)
}
