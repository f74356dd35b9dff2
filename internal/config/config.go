package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/spawn"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds the cache backend parameters. An empty Addr runs the
// server on the in-process cache instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NatsConfig holds the invalidation broadcast parameters. An empty URL
// disables cross-node invalidation.
type NatsConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Server holds all configuration for the dungeon server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Nats     NatsConfig     `yaml:"nats"`

	// RespawnInterval is how often the respawn manager sweeps for due mobs.
	RespawnInterval time.Duration `yaml:"respawn_interval"`

	// ScanRange caps the Manhattan radius of room scans.
	ScanRange int32 `yaml:"scan_range"`

	// SpawnPolicies overrides the default per-room-type spawn table.
	SpawnPolicies map[model.RoomType]spawn.Policy `yaml:"spawn_policies"`
}

// Default returns the server config with sensible defaults.
func Default() Server {
	return Server{
		LogLevel:        "info",
		RespawnInterval: time.Minute,
		ScanRange:       3,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "dungeon",
			Password: "dungeon",
			DBName:   "dungeon",
			SSLMode:  "disable",
		},
	}
}

// Load loads the server config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Policies merges configured overrides onto the default spawn table.
func (s Server) Policies() spawn.PolicyTable {
	return spawn.DefaultPolicies().Merge(s.SpawnPolicies)
}
