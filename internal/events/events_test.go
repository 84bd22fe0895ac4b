package events

import (
	"testing"
	"time"

	"emperror.dev/errors"
	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	topic string
	data  interface{}
}

func recorder(out *[]recorded) Sink {
	return func(topic string, data interface{}) {
		*out = append(*out, recorded{topic, data})
	}
}

func TestLevelerPublisher(t *testing.T) {
	var a, b []recorded
	pub := LevelerPublisher(recorder(&a), nil, recorder(&b))
	pub.Publish(lvl.Event{Kind: lvl.EventLevelUp, UserID: "u1", Level: 3})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, "leveler/levelup", a[0].topic)
	assert.Equal(t, 3, a[0].data.(lvl.Event).Level)
}

func TestCaptchaHook(t *testing.T) {
	var got []recorded
	hook := CaptchaHook(recorder(&got))
	hook(&cpt.Challenge{Member: cpt.Member{GuildID: "g", UserID: "u"}, TryNum: 2}, cpt.Outcome("passed"))

	require.Len(t, got, 1)
	assert.Equal(t, "captcha/passed", got[0].topic)
	ev := got[0].data.(CaptchaEvent)
	assert.Equal(t, "g", ev.GuildID)
	assert.Equal(t, "u", ev.UserID)
	assert.Equal(t, 2, ev.Tries)
}

func TestMQTTSinkNil(t *testing.T) {
	assert.Nil(t, MQTTSink(nil))
}

func TestLevelerProfile(t *testing.T) {
	store := lvl.NewMemoryStore()
	require.NoError(t, store.SaveUser(&models.LevelerUser{
		UserID:   "u1",
		Username: "alice",
		TotalExp: 500,
		Rep:      4,
		Servers:  map[string]models.ServerStats{"g1": {Level: 2, CurrentExp: 30}},
	}))
	handle := LevelerProfile(lvl.NewService(store))

	_, err := handle(map[string]interface{}{})
	assert.True(t, errors.Is(err, ErrMissingUser))

	_, err = handle(map[string]interface{}{"user_id": "nobody"})
	assert.True(t, errors.Is(err, lvl.ErrUserNotFound))

	_, err = handle(map[string]interface{}{"user_id": "u1", "guild_id": "other"})
	assert.True(t, errors.Is(err, lvl.ErrUserNotFound))

	out, err := handle(map[string]interface{}{"user_id": "u1", "guild_id": "g1"})
	require.NoError(t, err)
	m := out.(map[string]interface{})
	assert.Equal(t, "alice", m["username"])
	assert.Equal(t, 4, m["rep"])
	assert.Equal(t, lvl.FindLevel(500), m["level"])
	assert.Equal(t, 2, m["server"].(map[string]int)["level"])
}

func TestWelcomeEmbed(t *testing.T) {
	e := WelcomeEmbed("CogsBot")
	assert.Contains(t, e.Description, "**CogsBot**")
	assert.Len(t, e.Fields, 3)
}

func TestResumeMessage(t *testing.T) {
	assert.Equal(t, "✅ Shard 0 reanudado.", ResumeMessage(0, time.Time{}))
	msg := ResumeMessage(2, time.Now().Add(-90*time.Second))
	assert.Contains(t, msg, "Shard 2 reanudado tras 1m3")
}

func TestFreshJoin(t *testing.T) {
	now := time.Now()
	assert.True(t, freshJoin(now.Add(-time.Second), now))
	assert.False(t, freshJoin(now.Add(-time.Hour), now))
	assert.False(t, freshJoin(time.Time{}, now))
}

func TestGuildDeletePublishesLeave(t *testing.T) {
	var got []recorded
	d := dispatcher{sinks: []Sink{recorder(&got)}}

	d.onGuildDelete(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "g1", Unavailable: true}})
	assert.Empty(t, got)

	d.onGuildDelete(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "g1"}})
	require.Len(t, got, 1)
	assert.Equal(t, "guild/leave", got[0].topic)
	assert.Equal(t, GuildEvent{GuildID: "g1"}, got[0].data)
}

func TestReadyPublishes(t *testing.T) {
	s, err := discordgo.New("Bot test")
	require.NoError(t, err)
	var got []recorded
	d := dispatcher{sinks: []Sink{recorder(&got)}}

	d.onReady(s, &discordgo.Ready{
		User:   &discordgo.User{Username: "CogsBot"},
		Guilds: []*discordgo.Guild{{ID: "1"}, {ID: "2"}},
		Shard:  &[2]int{1, 2},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "bot/ready", got[0].topic)
	assert.Equal(t, BotEvent{Username: "CogsBot", Guilds: 2, Shard: 1}, got[0].data)
}
