// Package config reads the bot settings from the environment (and an
// optional .env file).
package config

import (
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"emperror.dev/errors"
	"github.com/joho/godotenv"
)

const (
	ErrMissingToken = errors.Sentinel("botToken no está definido")
	ErrXPRange      = errors.Sentinel("xpMin no puede ser mayor que xpMax")
	ErrAllowedHosts = errors.Sentinel("allowedHosts no es una expresión regular válida")
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string
	OwnerIDs   []string

	// MongoDB
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port           string
	AllowedHosts   string
	MetricsEnabled bool

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
	GuildsWebhook     string

	// Logs
	LogsDir       string
	LogMaxSizeMB  int
	LogMaxBackups int

	// API keys
	SteamAPIKey     string
	SauceNAOAPIKey  string
	TraceMoeAPIKey  string
	YandexAPIKey    string
	CleverbotUser   string
	CleverbotKey    string
	WeatherAPIKey   string
	WeatherBaseURL  string
	HolidaysBaseURL string

	// Leveler
	LevelerFontPath string
	XPMin           int
	XPMax           int
	MessageLength   int
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

func resetForTesting() {
	cfg, cfgErr = nil, nil
	cfgOnce = sync.Once{}
}

func loadConfig() {
	// a missing .env is fine
	_ = godotenv.Load()
	cfg = fromEnv()
	cfgErr = cfg.Validate()
}

// fromEnv builds a Config from the process environment.
// An empty mongodbUrl keeps every store in memory.
func fromEnv() *Config {
	return &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),
		OwnerIDs:   getEnvList("ownerIds"),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", ""),
		DBName:     getEnv("dbName", "CogsBot"),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port:           getEnv("PORT", "3000"),
		AllowedHosts:   getEnv("allowedHosts", `^(localhost|127\.0\.0\.1)(:\d+)?$`),
		MetricsEnabled: getEnvBool("metricsEnabled", true),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
		GuildsWebhook:     getEnv("guildsWebhook", ""),

		// Logs
		LogsDir:       getEnv("logsDir", "logs"),
		LogMaxSizeMB:  getEnvInt("logMaxSizeMb", 20),
		LogMaxBackups: getEnvInt("logMaxBackups", 5),

		// API keys
		SteamAPIKey:     getEnv("steamApiKey", ""),
		SauceNAOAPIKey:  getEnv("saucenaoApiKey", ""),
		TraceMoeAPIKey:  getEnv("tracemoeApiKey", ""),
		YandexAPIKey:    getEnv("yandexApiKey", ""),
		CleverbotUser:   getEnv("cleverbotUser", ""),
		CleverbotKey:    getEnv("cleverbotKey", ""),
		WeatherAPIKey:   getEnv("weatherApiKey", ""),
		WeatherBaseURL:  getEnv("weatherBaseUrl", "https://api.pirateweather.net"),
		HolidaysBaseURL: getEnv("holidaysBaseUrl", "https://kayaposoft.com/enrico/json/v1.0/"),

		// Leveler
		LevelerFontPath: getEnv("levelerFont", ""),
		XPMin:           getEnvInt("xpMin", 15),
		XPMax:           getEnvInt("xpMax", 20),
		MessageLength:   getEnvInt("messageLength", 10),
	}
}

// Load reads the configuration once. The Config is returned even when
// Validate fails so callers can still log with it.
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the loaded configuration, ignoring validation errors
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// Validate reports every problem found, combined into one error
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.XPMin > c.XPMax {
		errs = append(errs, errors.WithDetails(ErrXPRange, "xpMin", c.XPMin, "xpMax", c.XPMax))
	}
	if _, err := regexp.Compile(c.AllowedHosts); err != nil {
		errs = append(errs, errors.WithDetails(ErrAllowedHosts, "error", err.Error()))
	}
	return errors.Combine(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer variable, falling back on missing or malformed values
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsOwner reports whether the user ID belongs to a bot owner
func (c *Config) IsOwner(userID string) bool {
	return slices.Contains(c.OwnerIDs, userID)
}
