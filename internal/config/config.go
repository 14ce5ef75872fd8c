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
	AppName       string
	AppEnv        string
	AppPort       string
	DatabaseURL   string
	RedisURL      string
	NATSURL       string
	EventsChannel string
	JWTSecret     string
	AllowOrigins  []string
	Plagiarism    PlagiarismConfig
}

// PlagiarismConfig tunes the similarity checker and its HTTP surface.
type PlagiarismConfig struct {
	Threshold         float64
	MinSentenceLength int
	Workers           int
	ReportCacheTTL    time.Duration
	RateLimit         int
	RateWindow        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Plagiarism API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "gema:events")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("plagiarism.threshold", 70)
	v.SetDefault("plagiarism.min_sentence_length", 20)
	v.SetDefault("plagiarism.workers", 4)
	v.SetDefault("plagiarism.report_cache_ttl", "5m")
	v.SetDefault("plagiarism.rate_limit", 10)
	v.SetDefault("plagiarism.rate_window", "1m")

	cacheTTL, err := parseDuration(v, "plagiarism.report_cache_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	rateWindow, err := parseDuration(v, "plagiarism.rate_window", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:       v.GetString("app.name"),
		AppEnv:        v.GetString("app.env"),
		AppPort:       v.GetString("app.port"),
		DatabaseURL:   v.GetString("database.url"),
		RedisURL:      v.GetString("redis.url"),
		NATSURL:       v.GetString("nats.url"),
		EventsChannel: strings.TrimSpace(v.GetString("events.channel")),
		JWTSecret:     v.GetString("jwt.secret"),
		AllowOrigins:  splitList(v.GetString("cors.allow_origins")),
		Plagiarism: PlagiarismConfig{
			Threshold:         v.GetFloat64("plagiarism.threshold"),
			MinSentenceLength: v.GetInt("plagiarism.min_sentence_length"),
			Workers:           v.GetInt("plagiarism.workers"),
			ReportCacheTTL:    cacheTTL,
			RateLimit:         v.GetInt("plagiarism.rate_limit"),
			RateWindow:        rateWindow,
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.Plagiarism.Threshold <= 0 || cfg.Plagiarism.Threshold > 100 {
		return Config{}, fmt.Errorf("plagiarism threshold must be within (0, 100], got %v", cfg.Plagiarism.Threshold)
	}

	if cfg.Plagiarism.MinSentenceLength <= 0 {
		cfg.Plagiarism.MinSentenceLength = 20
	}

	if cfg.Plagiarism.Workers <= 0 {
		cfg.Plagiarism.Workers = 1
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
