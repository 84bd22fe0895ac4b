package steam

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"emperror.dev/errors"
)

// ErrInvalidSteamID is returned for malformed SteamIDs
const ErrInvalidSteamID = errors.Sentinel("SteamID incorrecto")

// accountTypes are the SteamID3 letters indexed by account type
var accountTypes = []string{"I", "U", "M", "G", "A", "P", "C", "g", "T", "", "a"}

var steam2Re = regexp.MustCompile(`^STEAM_([0-5]):([01]):(\d+)$`)

// ID is a 64 bit SteamID
type ID uint64

// ParseSteam2 converts a STEAM_X:Y:Z identifier to its 64 bit form.
// Universe 0 is read as the public universe.
func ParseSteam2(s string) (ID, error) {
	m := steam2Re.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, errors.WithStack(ErrInvalidSteamID)
	}
	universe, _ := strconv.ParseUint(m[1], 10, 8)
	if universe == 0 {
		universe = 1
	}
	part, _ := strconv.ParseUint(m[2], 10, 1)
	account, err := strconv.ParseUint(m[3], 10, 31)
	if err != nil {
		return 0, errors.WithStack(ErrInvalidSteamID)
	}
	// individual account, desktop instance
	return ID(universe<<56 | 1<<52 | 1<<32 | (account<<1 | part)), nil
}

// ParseID64 parses a decimal 64 bit SteamID
func ParseID64(s string) (ID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.WithStack(ErrInvalidSteamID)
	}
	return ID(n), nil
}

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Universe is the top 8 bits
func (id ID) Universe() int { return int(uint64(id) >> 56) }

// Type is the account type
func (id ID) Type() int { return int(uint64(id) >> 52 & 0xF) }

// Instance is the 20 bit instance
func (id ID) Instance() int { return int(uint64(id) >> 32 & 0xFFFFF) }

// AccountID is the low 32 bits
func (id ID) AccountID() uint32 { return uint32(id) }

// Steam2 formats the id as STEAM_X:Y:Z
func (id ID) Steam2() string {
	return fmt.Sprintf("STEAM_%d:%d:%d", id.Universe(), id.AccountID()&1, id.AccountID()>>1)
}

// Steam3 formats the id as [T:U:A]
func (id ID) Steam3() string {
	letter := ""
	if t := id.Type(); t < len(accountTypes) {
		letter = accountTypes[t]
	}
	return fmt.Sprintf("[%s:%d:%d]", letter, id.Universe(), id.AccountID())
}

// ProfileArg strips profile URLs to their last path element
func ProfileArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "http") {
		arg = strings.TrimRight(arg, "/")
		if i := strings.LastIndex(arg, "/"); i >= 0 {
			arg = arg[i+1:]
		}
	}
	return arg
}
