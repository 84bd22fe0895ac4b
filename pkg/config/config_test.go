package config

import (
	"os"
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("botToken", "test-token")
	t.Setenv("PORT", "3001")
	t.Setenv("enviroment", "prod")
	resetForTesting()

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-token", config.BotToken)
	assert.Equal(t, "3001", config.Port)
	assert.True(t, config.IsProd())
	assert.Same(t, config, Get())
}

func TestDefaultValues(t *testing.T) {
	clearEnv(t, "mongodbUrl", "dbName", "MQTT_Host", "MQTT_Port", "PORT", "enviroment",
		"xpMin", "xpMax", "messageLength", "weatherBaseUrl", "metricsEnabled")
	config := fromEnv()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"MongoDBURL", config.MongoDBURL, ""},
		{"DBName", config.DBName, "CogsBot"},
		{"MQTTPort", config.MQTTPort, "1883"},
		{"Port", config.Port, "3000"},
		{"Environment", config.Environment, "dev"},
		{"XPMin", config.XPMin, 15},
		{"XPMax", config.XPMax, 20},
		{"MessageLength", config.MessageLength, 10},
		{"MetricsEnabled", config.MetricsEnabled, true},
		{"WeatherBaseURL", config.WeatherBaseURL, "https://api.pirateweather.net"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s default = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{BotToken: "x", XPMin: 15, XPMax: 20, AllowedHosts: `^localhost$`}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   []error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing token", func(c *Config) { c.BotToken = "" }, []error{ErrMissingToken}},
		{"xp range", func(c *Config) { c.XPMin = 30 }, []error{ErrXPRange}},
		{"bad hosts", func(c *Config) { c.AllowedHosts = "(" }, []error{ErrAllowedHosts}},
		{"several", func(c *Config) { c.BotToken = ""; c.XPMax = 1 }, []error{ErrMissingToken, ErrXPRange}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Len(t, errors.GetErrors(err), len(tt.want))
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestLoadReturnsValidationError(t *testing.T) {
	clearEnv(t, "botToken")
	resetForTesting()

	config, err := Load()
	assert.NotNil(t, config)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_VAR", "valor")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "cuarenta")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_BAD_BOOL", "quizás")

	assert.Equal(t, "valor", getEnv("TEST_VAR", "x"))
	assert.Equal(t, "x", getEnv("TEST_MISSING_VAR", "x"))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 1))
	assert.Equal(t, 7, getEnvInt("TEST_BAD_INT", 7))
	assert.False(t, getEnvBool("TEST_BOOL", true))
	assert.True(t, getEnvBool("TEST_BAD_BOOL", true))
}

func TestOwnerIDs(t *testing.T) {
	t.Setenv("ownerIds", " 111, ,222 ")
	config := fromEnv()

	assert.Equal(t, []string{"111", "222"}, config.OwnerIDs)
	assert.True(t, config.IsOwner("222"))
	assert.False(t, config.IsOwner("333"))
}
