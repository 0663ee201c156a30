package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSUrl        string
	JWTSecret      string
	SessionTTL     time.Duration
	LessonCacheTTL time.Duration
	AIProvider     string
	AIModel        string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	AIMaxTokens    int
	AITemperature  float64
	TutorDebounce  time.Duration
	SeedEnabled    bool
	SeedToken      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		raw = fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AICM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "AICodeMaster API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("lessons.cache_ttl", "5m")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("tutor.debounce", "3s")
	v.SetDefault("seed.enabled", false)

	sessionTTL, err := parseDuration(v, "session.ttl", "168h")
	if err != nil {
		return Config{}, err
	}

	cacheTTL, err := parseDuration(v, "lessons.cache_ttl", "5m")
	if err != nil {
		return Config{}, err
	}

	debounce, err := parseDuration(v, "tutor.debounce", "3s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSUrl:        v.GetString("nats.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		SessionTTL:     sessionTTL,
		LessonCacheTTL: cacheTTL,
		AIProvider:     strings.ToLower(v.GetString("ai.provider")),
		AIModel:        v.GetString("ai.model"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		GeminiAPIKey:   v.GetString("gemini_api_key"),
		AIMaxTokens:    v.GetInt("ai.max_tokens"),
		AITemperature:  v.GetFloat64("ai.temperature"),
		TutorDebounce:  debounce,
		SeedEnabled:    v.GetBool("seed.enabled"),
		SeedToken:      v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 1024
	}

	return cfg, nil
}
