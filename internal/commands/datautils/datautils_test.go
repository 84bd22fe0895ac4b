package datautils

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwemojiURL(t *testing.T) {
	tests := []struct {
		emoji string
		want  string
	}{
		{"\U0001F600", TwemojiBase + "/1f600.png"},
		{"\u2764\uFE0F", TwemojiBase + "/2764.png"},
		{"\U0001F469\u200D\u2764\uFE0F\u200D\U0001F468", TwemojiBase + "/1f469-200d-2764-fe0f-200d-1f468.png"},
	}
	for _, tt := range tests {
		if got := TwemojiURL(tt.emoji); got != tt.want {
			t.Errorf("TwemojiURL(%q) = %v, want %v", tt.emoji, got, tt.want)
		}
	}
}

func TestEmojiEmbedCustom(t *testing.T) {
	embed, ok := EmojiEmbed("<a:baile:222>")
	require.True(t, ok)
	assert.Equal(t, "baile", embed.Title)
	assert.Equal(t, "https://cdn.discordapp.com/emojis/222.gif", embed.Image.URL)

	_, ok = EmojiEmbed("texto")
	assert.False(t, ok)
}

func TestChannelTree(t *testing.T) {
	channels := []*discordgo.Channel{
		{ID: "c2", Name: "voz", Type: discordgo.ChannelTypeGuildVoice, ParentID: "cat", Position: 2},
		{ID: "cat", Name: "General", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "c1", Name: "chat", Type: discordgo.ChannelTypeGuildText, ParentID: "cat", Position: 1},
		{ID: "c0", Name: "reglas", Type: discordgo.ChannelTypeGuildText},
	}
	want := []string{"# reglas", "📁 **General**", "    # chat", "    🔊 voz"}
	if diff := cmp.Diff(want, ChannelTree(channels)); diff != "" {
		t.Errorf("ChannelTree() mismatch (-want +got):\n%s", diff)
	}
	counts := CountChannels(channels)
	assert.Equal(t, ChannelCounts{Text: 2, Voice: 1, Category: 1}, counts)
}

func TestPermissionList(t *testing.T) {
	got := PermissionList(discordgo.PermissionSendMessages | discordgo.PermissionKickMembers)
	assert.Equal(t, []string{"Expulsar miembros", "Enviar mensajes"}, got)
	assert.Empty(t, PermissionList(0))
}

func TestRoleHolders(t *testing.T) {
	members := []*discordgo.Member{
		{User: &discordgo.User{ID: "1"}, Roles: []string{"a", "b"}},
		{User: &discordgo.User{ID: "2"}, Roles: []string{"c"}},
	}
	holders := RoleHolders(members, "b")
	require.Len(t, holders, 1)
	assert.Equal(t, "1", holders[0].User.ID)
	assert.Equal(t, "Desconocido", RoleEmbed(&discordgo.Role{ID: "b", Name: "B"}, -1).Fields[3].Value)
}

func TestActivityLine(t *testing.T) {
	got := ActivityLine(&discordgo.Activity{Type: discordgo.ActivityTypeGame, Name: "Minecraft", Details: "Survival"})
	assert.Equal(t, "**Jugando a** Minecraft (Survival)", got)
	custom := ActivityLine(&discordgo.Activity{Type: discordgo.ActivityTypeCustom, State: "hola"})
	assert.Equal(t, "**Estado personalizado**: hola", custom)
}
