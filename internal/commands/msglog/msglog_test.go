package msglog

import (
	"strings"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkip(t *testing.T) {
	cfg := Defaults("g")
	cfg.Channel = "log"
	cfg.IgnoredChannels = []string{"quiet"}
	cfg.IgnoredUsers = []string{"shy"}
	cfg.IgnoredCategories = []string{"cat"}

	msg := Logged{ChannelID: "general", AuthorID: "u", Content: "hola"}
	edit := msg
	edit.After = "adiós"

	tests := []struct {
		name    string
		cfg     *models.MessagesLogConfig
		kind    Kind
		m       Logged
		logNSFW bool
		want    bool
	}{
		{"deleted", cfg, Deleted, msg, false, false},
		{"edited", cfg, Edited, edit, false, false},
		{"no channel", Defaults("g"), Deleted, msg, false, true},
		{"ignored channel", cfg, Deleted, Logged{ChannelID: "quiet", AuthorID: "u", Content: "x"}, false, true},
		{"ignored user", cfg, Deleted, Logged{ChannelID: "general", AuthorID: "shy", Content: "x"}, false, true},
		{"ignored category", cfg, Deleted, Logged{ChannelID: "general", CategoryID: "cat", AuthorID: "u", Content: "x"}, false, true},
		{"empty", cfg, Deleted, Logged{ChannelID: "general", AuthorID: "u"}, false, true},
		{"bot", cfg, Deleted, Logged{ChannelID: "general", AuthorID: "u", AuthorBot: true, Content: "x"}, false, true},
		{"unchanged edit", cfg, Edited, Logged{ChannelID: "general", AuthorID: "u", Content: "x", After: "x"}, false, true},
		{"edit to empty", cfg, Edited, Logged{ChannelID: "general", AuthorID: "u", Content: "x"}, false, true},
		{"nsfw to sfw", cfg, Deleted, Logged{ChannelID: "general", AuthorID: "u", Content: "x", NSFW: true}, false, true},
		{"nsfw to nsfw", cfg, Deleted, Logged{ChannelID: "general", AuthorID: "u", Content: "x", NSFW: true}, true, false},
	}
	for _, tt := range tests {
		if got := Skip(tt.cfg, tt.kind, tt.m, tt.logNSFW); got != tt.want {
			t.Errorf("Skip(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSkipDisabledKind(t *testing.T) {
	cfg := Defaults("g")
	cfg.Channel = "log"
	cfg.Editing = false
	assert.True(t, Skip(cfg, Edited, Logged{Content: "a", After: "b"}, false))
	assert.False(t, Skip(cfg, Deleted, Logged{Content: "a"}, false))
}

func TestToggle(t *testing.T) {
	orig := []string{"a", "b"}
	list, added := toggle(orig, "c")
	assert.True(t, added)
	assert.Equal(t, []string{"a", "b", "c"}, list)

	list, added = toggle(list, "a")
	assert.False(t, added)
	assert.Equal(t, []string{"b", "c"}, list)
	assert.Equal(t, []string{"a", "b"}, orig)
}

func TestDeletedEmbed(t *testing.T) {
	msg := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   "secreto",
		Author:    &discordgo.User{ID: "u1", Username: "ana"},
		Attachments: []*discordgo.MessageAttachment{
			{Filename: "a.png", URL: "https://cdn/a.png"},
		},
	}
	embed := DeletedEmbed(msg, 0xff0000)
	assert.Equal(t, "secreto", embed.Description)
	assert.Equal(t, "ana", embed.Author.Name)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "[a.png](https://cdn/a.png)", embed.Fields[0].Value)
	assert.Equal(t, "<#c1>", embed.Fields[1].Value)
	assert.Contains(t, embed.Footer.Text, "m1")
}

func TestEditedEmbedLinksMessage(t *testing.T) {
	embed := EditedEmbed(&discordgo.Message{ID: "m", ChannelID: "c", Content: "x"}, "g", 0)
	require.NotEmpty(t, embed.Fields)
	assert.True(t, strings.Contains(embed.Fields[0].Value, "https://discord.com/channels/g/c/m"))
}

func TestIgnoredPages(t *testing.T) {
	assert.Empty(t, IgnoredPages(Defaults("g")))

	cfg := Defaults("g")
	cfg.IgnoredUsers = []string{"u"}
	cfg.IgnoredCategories = []string{"k"}
	pages := IgnoredPages(cfg)
	require.Len(t, pages, 2)
	assert.Equal(t, "Usuarios ignorados", pages[0].Title)
	assert.Equal(t, "<#k>", pages[1].Description)
}
