// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Games     GamesConfig     `mapstructure:"games"`
	Sender    SenderConfig    `mapstructure:"sender"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Shadow ShadowConfig `mapstructure:"shadow"`
	Clash  ClashConfig  `mapstructure:"clash"`
}

// ShadowConfig holds Shadow Game configuration.
type ShadowConfig struct {
	TagTimeoutSeconds  int   `mapstructure:"tag_timeout_seconds"`
	JoinChoicesMinutes []int `mapstructure:"join_choices_minutes"`
	JoinXP             int64 `mapstructure:"join_xp"`
	WinXP              int64 `mapstructure:"win_xp"`
}

// ClashConfig holds Cult Clash configuration.
type ClashConfig struct {
	JoinSeconds  int   `mapstructure:"join_seconds"`
	TickSeconds  int   `mapstructure:"tick_seconds"`
	SurvivorGoal int   `mapstructure:"survivor_goal"`
	WinXP        int64 `mapstructure:"win_xp"`
}

// SenderConfig holds outbound message rate limiting configuration.
type SenderConfig struct {
	MessagesPerSecond int `mapstructure:"messages_per_second"`
	Burst             int `mapstructure:"burst"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, GAMES_SHADOW_TAG_TIMEOUT_SECONDS.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional - env vars can provide all config.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shadowbot")
	v.SetDefault("database.name", "shadowbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("games.shadow.tag_timeout_seconds", 25)
	v.SetDefault("games.shadow.join_choices_minutes", []int{1, 2, 3, 4, 5})
	v.SetDefault("games.shadow.join_xp", 5)
	v.SetDefault("games.shadow.win_xp", 50)

	v.SetDefault("games.clash.join_seconds", 30)
	v.SetDefault("games.clash.tick_seconds", 5)
	v.SetDefault("games.clash.survivor_goal", 3)
	v.SetDefault("games.clash.win_xp", 100)

	v.SetDefault("sender.messages_per_second", 20)
	v.SetDefault("sender.burst", 5)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
