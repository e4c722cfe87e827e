package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ulogstudios/review-bot/pkg/config"
)

// Config holds all configuration for the review bot.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Discord
	BotToken        string `env:"DISCORD_BOT_TOKEN,required"`
	GuildID         string `env:"DISCORD_GUILD_ID,required"`
	ReviewChannelID string `env:"REVIEW_CHANNEL_ID,required"`

	// Tebex
	TebexSecret         string `env:"TEBEX_SECRET_KEY,required"`
	TebexWebstoreID     string `env:"TEBEX_WEBSTORE_ID"`
	TebexPluginAPIURL   string `env:"TEBEX_PLUGIN_API_URL" envDefault:"https://plugin.tebex.io"`
	TebexHeadlessAPIURL string `env:"TEBEX_HEADLESS_API_URL" envDefault:"https://headless.tebex.io"`

	// Sessions
	SessionBackend       string `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionTimeoutSecs   int    `env:"SESSION_TIMEOUT_SECONDS" envDefault:"600"`
	SessionSweepInterval int    `env:"SESSION_SWEEP_INTERVAL_SECONDS" envDefault:"60"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"reviewbot"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"reviewbot_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"reviewbot_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (only used when SESSION_BACKEND=redis)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka (event publishing is off unless enabled)
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Ops HTTP server (health, metrics, read-side API)
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Presentation
	ColorPrimary int    `env:"EMBED_COLOR_PRIMARY" envDefault:"5793266"`
	ColorError   int    `env:"EMBED_COLOR_ERROR" envDefault:"15548997"`
	EmojiStar    string `env:"EMOJI_STAR" envDefault:"⭐"`
	FooterText   string `env:"EMBED_FOOTER_TEXT" envDefault:"ULOG Studios"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review-bot config: %w", err)
	}
	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// SessionTimeout returns the session timeout as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSecs) * time.Second
}

// SessionSweep returns the sweeper interval as a duration.
func (c *Config) SessionSweep() time.Duration {
	return time.Duration(c.SessionSweepInterval) * time.Second
}
