package admin

import (
	"net/url"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPruneDays(t *testing.T) {
	tests := []struct{ in, want int }{{0, 1}, {-3, 1}, {7, 7}, {30, 30}, {45, 30}}
	for _, tt := range tests {
		if got := ClampPruneDays(tt.in); got != tt.want {
			t.Errorf("ClampPruneDays(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInviteURL(t *testing.T) {
	u, err := url.Parse(InviteURL("123", discordgo.PermissionSendMessages))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "123", q.Get("client_id"))
	assert.Equal(t, "bot applications.commands", q.Get("scope"))
	assert.Equal(t, "2048", q.Get("permissions"))
}

func TestCooldown(t *testing.T) {
	c := &Cog{cooldowns: cache.New(nickCooldown, time.Minute)}
	assert.Zero(t, c.cooldown("nick:g1"))
	assert.Greater(t, c.cooldown("nick:g1"), time.Duration(0))
	assert.Zero(t, c.cooldown("nick:g2"))
}

func TestEmojiNames(t *testing.T) {
	for name, want := range map[string]bool{"pepe_2": true, "a": false, "con espacio": false, "ñu": false} {
		if got := emojiNameRe.MatchString(name); got != want {
			t.Errorf("emojiNameRe.MatchString(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMessageLink(t *testing.T) {
	m := messageLinkRe.FindStringSubmatch("mira https://discord.com/channels/1/2/3")
	require.NotNil(t, m)
	assert.Equal(t, []string{"1", "2", "3"}, m[1:])
}

func TestFreeEmojiSlots(t *testing.T) {
	guild := &discordgo.Guild{
		PremiumTier: discordgo.PremiumTier1,
		Emojis: []*discordgo.Emoji{
			{Name: "a"}, {Name: "b"}, {Name: "c", Animated: true},
		},
	}
	static, animated := FreeEmojiSlots(guild)
	if static != 98 || animated != 99 {
		t.Errorf("FreeEmojiSlots() = %d, %d, want 98, 99", static, animated)
	}
	if got := EmojiLimit(discordgo.PremiumTierNone); got != 50 {
		t.Errorf("EmojiLimit(none) = %d, want 50", got)
	}
}
