package captcha

import (
	"sort"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/goccy/go-json"
)

// Captcha types
const (
	TypeText   = "text"
	TypeWheezy = "wheezy"
	TypeImage  = "image"
)

// ChannelDM sends challenges in direct messages
const ChannelDM = "dm"

// Default guild values
const (
	DefaultTimeout      = 5
	DefaultRetries      = 3
	DefaultSimultaneous = 5
)

// Defaults returns the configuration of a guild that never set the captcha up
func Defaults(guildID string) models.CaptchaConfig {
	return models.CaptchaConfig{
		GuildID:                guildID,
		Type:                   TypeImage,
		Timeout:                DefaultTimeout,
		Retries:                DefaultRetries,
		SimultaneousChallenges: DefaultSimultaneous,
	}
}

// Settings wraps a guild configuration and remembers which fields changed
type Settings struct {
	cfg   models.CaptchaConfig
	dirty map[string]bool
}

// NewSettings wraps cfg, filling zero values with defaults
func NewSettings(cfg models.CaptchaConfig) *Settings {
	def := Defaults(cfg.GuildID)
	if cfg.Type == "" {
		cfg.Type = def.Type
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = def.Retries
	}
	if cfg.SimultaneousChallenges == 0 {
		cfg.SimultaneousChallenges = def.SimultaneousChallenges
	}
	return &Settings{cfg: cfg, dirty: map[string]bool{}}
}

// Config returns a copy of the wrapped configuration
func (s *Settings) Config() models.CaptchaConfig {
	c := s.cfg
	c.AutoRoles = append([]string(nil), s.cfg.AutoRoles...)
	return c
}

// Dirty lists the changed fields, sorted
func (s *Settings) Dirty() []string {
	out := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsDirty reports whether anything changed since the settings were loaded
func (s *Settings) IsDirty() bool { return len(s.dirty) > 0 }

func (s *Settings) mark(field string) { s.dirty[field] = true }

// SetChannel sets the verification channel, a channel ID or ChannelDM
func (s *Settings) SetChannel(channel string) {
	s.cfg.Channel = channel
	s.mark("channel")
}

// SetLogsChannel sets the channel receiving challenge logs
func (s *Settings) SetLogsChannel(channel string) {
	s.cfg.LogsChannel = channel
	s.mark("logs_channel")
}

func (s *Settings) SetEnabled(enabled bool) {
	s.cfg.Enabled = enabled
	s.mark("enabled")
}

func (s *Settings) SetType(t string) error {
	switch t {
	case TypeText, TypeWheezy, TypeImage:
	default:
		return ErrInvalidType
	}
	s.cfg.Type = t
	s.mark("type")
	return nil
}

// SetTimeout sets the answer timeout in minutes
func (s *Settings) SetTimeout(minutes int) error {
	if minutes < 1 || minutes > 15 {
		return ErrInvalidTimeout
	}
	s.cfg.Timeout = minutes
	s.mark("timeout")
	return nil
}

func (s *Settings) SetRetries(n int) error {
	if n < 1 || n > 10 {
		return ErrInvalidRetries
	}
	s.cfg.Retries = n
	s.mark("retries")
	return nil
}

func (s *Settings) SetSimultaneous(n int) error {
	if n < 1 || n > 10 {
		return ErrInvalidParallel
	}
	s.cfg.SimultaneousChallenges = n
	s.mark("simultaneous_challenges")
	return nil
}

// SetTempRole sets the role held during the challenge. Empty clears it.
func (s *Settings) SetTempRole(roleID string) {
	s.cfg.TempRole = roleID
	s.mark("temp_role")
}

// AddAutoRole adds a role granted after passing. It reports false when already present.
func (s *Settings) AddAutoRole(roleID string) bool {
	for _, r := range s.cfg.AutoRoles {
		if r == roleID {
			return false
		}
	}
	s.cfg.AutoRoles = append(s.cfg.AutoRoles, roleID)
	s.mark("auto_roles")
	return true
}

// RemoveAutoRole removes a role granted after passing. It reports false when absent.
func (s *Settings) RemoveAutoRole(roleID string) bool {
	for i, r := range s.cfg.AutoRoles {
		if r == roleID {
			s.cfg.AutoRoles = append(s.cfg.AutoRoles[:i], s.cfg.AutoRoles[i+1:]...)
			s.mark("auto_roles")
			return true
		}
	}
	return false
}

// Export returns the configuration as indented JSON
func (s *Settings) Export() ([]byte, error) {
	return json.MarshalIndent(s.cfg, "", "  ")
}

// BotState is what the bot can do in a guild, used to validate the settings
type BotState struct {
	ManageRoles bool
	KickMembers bool
	// TopRole is the position of the bot's highest role
	TopRole int
	// RolePositions maps role IDs to their position
	RolePositions map[string]int
}

// Problems lists why the captcha cannot be enabled; empty means it can
func (s *Settings) Problems(bot BotState) []string {
	var out []string
	if s.cfg.Channel == "" {
		out = append(out, "No hay canal de verificación configurado.")
	}
	if s.cfg.LogsChannel == "" {
		out = append(out, "No hay canal de registros configurado.")
	}
	if !bot.ManageRoles {
		out = append(out, "Me falta el permiso Gestionar roles.")
	}
	if !bot.KickMembers {
		out = append(out, "Me falta el permiso Expulsar miembros.")
	}
	if s.cfg.TempRole != "" {
		if pos, ok := bot.RolePositions[s.cfg.TempRole]; !ok {
			out = append(out, "El rol temporal ya no existe.")
		} else if pos >= bot.TopRole {
			out = append(out, "El rol temporal está por encima de mi rol más alto.")
		}
	}
	for _, r := range s.cfg.AutoRoles {
		pos, ok := bot.RolePositions[r]
		if !ok {
			out = append(out, "Un rol automático ya no existe: "+r)
		} else if pos >= bot.TopRole {
			out = append(out, "Un rol automático está por encima de mi rol más alto: <@&"+r+">")
		}
	}
	return out
}

// CanBeEnabled reports whether the captcha can run with the current settings
func (s *Settings) CanBeEnabled(bot BotState) bool {
	return len(s.Problems(bot)) == 0
}
