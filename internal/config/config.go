package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel     string        `json:"log_level" yaml:"log_level"`
	Repositories []string      `json:"repositories" yaml:"repositories"`
	Feed         FeedConfig    `json:"feed" yaml:"feed"`
	Poll         PollConfig    `json:"poll" yaml:"poll"`
	Window       WindowConfig  `json:"window" yaml:"window"`
	API          APIConfig     `json:"api" yaml:"api"`
	Storage      StorageConfig `json:"storage" yaml:"storage"`
	Ingest       IngestConfig  `json:"ingest" yaml:"ingest"`
}

type FeedConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Accept  string        `json:"accept" yaml:"accept"`
	Token   string        `json:"token" yaml:"token"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type PollConfig struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
	MaxRepos int           `json:"max_repos" yaml:"max_repos"`
}

type WindowConfig struct {
	MaxEvents int `json:"max_events" yaml:"max_events"`
	MaxDays   int `json:"max_days" yaml:"max_days"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type IngestConfig struct {
	Kafka KafkaConfig `json:"kafka" yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Feed: FeedConfig{
			BaseURL: "https://api.github.com/repos",
			Accept:  "application/vnd.github.v3+json",
			Timeout: 15 * time.Second,
		},
		Poll: PollConfig{
			Interval: 60 * time.Second,
			MaxRepos: 5,
		},
		Window: WindowConfig{
			MaxEvents: 500,
			MaxDays:   7,
		},
		API:     APIConfig{Enabled: true, Addr: ":8080"},
		Storage: StorageConfig{Driver: "sqlite", DSN: "file:events.db?_pragma=busy_timeout(5000)"},
		Ingest:  IngestConfig{Kafka: KafkaConfig{Enabled: false}},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := bytesTrimSpace(content)
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if trimmed[0] == '{' || trimmed[0] == '[' {
		decodeErr = json.Unmarshal(trimmed, cfg)
	} else {
		decodeErr = yaml.Unmarshal(trimmed, cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = def.Feed.BaseURL
	}
	if cfg.Feed.Accept == "" {
		cfg.Feed.Accept = def.Feed.Accept
	}
	if cfg.Feed.Timeout <= 0 {
		cfg.Feed.Timeout = def.Feed.Timeout
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = def.Poll.Interval
	}
	if cfg.Poll.MaxRepos <= 0 {
		cfg.Poll.MaxRepos = def.Poll.MaxRepos
	}
	if cfg.Window.MaxEvents <= 0 {
		cfg.Window.MaxEvents = def.Window.MaxEvents
	}
	if cfg.Window.MaxDays <= 0 {
		cfg.Window.MaxDays = def.Window.MaxDays
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = def.Storage.Driver
	}
	// Only the first MaxRepos repositories are monitored, in config order.
	if len(cfg.Repositories) > cfg.Poll.MaxRepos {
		cfg.Repositories = cfg.Repositories[:cfg.Poll.MaxRepos]
	}
}

func Validate(cfg *Config) error {
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Feed.BaseURL == "" {
		return errors.New("feed.base_url must not be empty")
	}
	if cfg.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", cfg.Poll.Interval)
	}
	if cfg.Window.MaxEvents <= 0 || cfg.Window.MaxDays <= 0 {
		return errors.New("window.max_events and window.max_days must be positive")
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			return errors.New("ingest.kafka requires brokers, topic, group_id")
		}
	}
	return nil
}

func bytesTrimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\n' || b[start] == '\r' || b[start] == '\t') {
		start++
	}
	end := len(b)
	for end > start && (b[end-1] == ' ' || b[end-1] == '\n' || b[end-1] == '\r' || b[end-1] == '\t') {
		end--
	}
	return b[start:end]
}
