package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Watch   WatchConfig   `toml:"watch"`
	ArXiv   ArXivConfig   `toml:"arxiv"`
	Enrich  EnrichConfig  `toml:"enrich"`
	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Email   EmailConfig   `toml:"email"`
	Discord DiscordConfig `toml:"discord"`
}

type WatchConfig struct {
	Interval        string `toml:"interval"`
	RunOnce         bool   `toml:"run_once"`
	DataDir         string `toml:"data_dir"`
	PerKeywordLimit int    `toml:"per_keyword_limit"`
	EnrichWorkers   int    `toml:"enrich_workers"`
}

type ArXivConfig struct {
	BaseURL    string `toml:"base_url"`
	ListingURL string `toml:"listing_url"`
	Timeout    string `toml:"timeout"`
}

type EnrichConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
}

type CacheConfig struct {
	Backend   string `toml:"backend"`
	TTL       string `toml:"ttl"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	KeyPrefix string `toml:"key_prefix"`
}

type StorageConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Port     string `toml:"port"`
	FeedSize int    `toml:"feed_size"`
}

type EmailConfig struct {
	Enabled  bool   `toml:"enabled"`
	Server   string `toml:"server"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

type DiscordConfig struct {
	Enabled   bool   `toml:"enabled"`
	Token     string `toml:"token"`
	ChannelID string `toml:"channel_id"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Watch.Interval == "" {
		config.Watch.Interval = "1h"
	}
	if _, err := time.ParseDuration(config.Watch.Interval); err != nil {
		return fmt.Errorf("invalid watch interval: %w", err)
	}

	if config.Watch.DataDir == "" {
		config.Watch.DataDir = "./data"
	}

	if config.ArXiv.BaseURL == "" {
		config.ArXiv.BaseURL = "https://export.arxiv.org"
	}
	if config.ArXiv.ListingURL == "" {
		config.ArXiv.ListingURL = "https://arxiv.org"
	}
	if config.ArXiv.Timeout == "" {
		config.ArXiv.Timeout = "30s"
	}
	if _, err := time.ParseDuration(config.ArXiv.Timeout); err != nil {
		return fmt.Errorf("invalid arxiv timeout: %w", err)
	}

	switch config.Enrich.Provider {
	case "":
		config.Enrich.Provider = "ollama"
	case "ollama", "openai", "test":
	default:
		return fmt.Errorf("unknown enrich provider %q", config.Enrich.Provider)
	}

	switch config.Cache.Backend {
	case "":
		config.Cache.Backend = "memory"
	case "memory":
	case "redis":
		if config.Cache.RedisAddr == "" {
			config.Cache.RedisAddr = "localhost:6379"
		}
	default:
		return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
	}
	if config.Cache.TTL != "" {
		if _, err := time.ParseDuration(config.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache ttl: %w", err)
		}
	}

	if config.Storage.Path == "" {
		config.Storage.Path = "./paperwatch.db"
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Email.Enabled {
		if config.Email.Server == "" {
			return fmt.Errorf("email enabled but no server configured")
		}
		if config.Email.To == "" {
			return fmt.Errorf("email enabled but no recipient configured")
		}
	}

	if config.Discord.Enabled {
		if config.Discord.Token == "" || config.Discord.ChannelID == "" {
			return fmt.Errorf("discord enabled but token or channel_id missing")
		}
	}

	return nil
}

func (c *Config) WatchInterval() time.Duration {
	d, _ := time.ParseDuration(c.Watch.Interval)
	return d
}

func (c *Config) ArXivTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ArXiv.Timeout)
	return d
}

func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}
