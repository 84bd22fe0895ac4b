package events

import (
	"time"

	"emperror.dev/errors"
	cpt "github.com/PancyStudios/CogsBotGo/pkg/captcha"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/mqtt"
)

// Sink receives events published outside Discord, like the websocket hub or the MQTT broker
type Sink func(topic string, data interface{})

// CaptchaEvent is what subscribers see when a challenge ends
type CaptchaEvent struct {
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Outcome   string    `json:"outcome"`
	Tries     int       `json:"tries"`
	Timestamp time.Time `json:"timestamp"`
}

func fanOut(sinks []Sink, topic string, data interface{}) {
	for _, sink := range sinks {
		if sink != nil {
			sink(topic, data)
		}
	}
}

// LevelerPublisher forwards exp and level-up events as leveler/<kind>
func LevelerPublisher(sinks ...Sink) lvl.Publisher {
	return lvl.PublisherFunc(func(e lvl.Event) {
		fanOut(sinks, "leveler/"+e.Kind, e)
	})
}

// CaptchaHook forwards finished challenges as captcha/<outcome>
func CaptchaHook(sinks ...Sink) cpt.FinishHook {
	return func(c *cpt.Challenge, o cpt.Outcome) {
		fanOut(sinks, "captcha/"+string(o), CaptchaEvent{
			GuildID:   c.Member.GuildID,
			UserID:    c.Member.UserID,
			Outcome:   string(o),
			Tries:     c.TryNum,
			Timestamp: time.Now(),
		})
	}
}

// ErrMissingUser is returned by leveler requests without a user_id
const ErrMissingUser = errors.Sentinel("falta user_id")

// LevelerProfile answers leveler/profile requests with the stored stats of a user
func LevelerProfile(svc *lvl.Service) mqtt.RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		userID, _ := payload["user_id"].(string)
		if userID == "" {
			return nil, ErrMissingUser
		}
		u, err := svc.Store().User(userID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, errors.WithDetails(lvl.ErrUserNotFound, "user_id", userID)
		}
		out := map[string]interface{}{
			"user_id":   u.UserID,
			"username":  u.Username,
			"total_exp": u.TotalExp,
			"level":     lvl.FindLevel(u.TotalExp),
			"rep":       u.Rep,
			"credits":   u.Credits,
		}
		if guildID, _ := payload["guild_id"].(string); guildID != "" {
			stats, ok := u.Servers[guildID]
			if !ok {
				return nil, errors.WithDetails(lvl.ErrUserNotFound, "guild_id", guildID)
			}
			out["server"] = map[string]int{
				"level":       stats.Level,
				"current_exp": stats.CurrentExp,
				"exp":         lvl.ServerExp(stats),
			}
		}
		return out, nil
	}
}

// MQTTSink publishes events on the broker when one is configured
func MQTTSink(mc *mqtt.MqttCommunicator) Sink {
	if mc == nil {
		return nil
	}
	return func(topic string, data interface{}) {
		mc.PublishEvent(topic, data)
	}
}
