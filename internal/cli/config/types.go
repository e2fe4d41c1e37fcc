// Package config provides configuration management for the schooldb CLI.
package config

import (
	"github.com/leapstack-labs/schooldb/internal/seed"
	"github.com/leapstack-labs/schooldb/internal/store"
)

// DatabaseConfig selects and addresses the database.
type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"required,oneof=sqlite postgres"`
	Path     string `koanf:"path"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode  string `koanf:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// SeedConfig shapes the generated dataset.
type SeedConfig struct {
	RandSeed uint64 `koanf:"rand_seed"`
	Groups   int    `koanf:"groups" validate:"gte=0"`
	Courses  int    `koanf:"courses" validate:"gte=0,lte=10"`
	Students int    `koanf:"students" validate:"gte=0"`
	Atomic   bool   `koanf:"atomic"`
}

// Config holds all CLI configuration options.
type Config struct {
	Database    DatabaseConfig `koanf:"database"`
	Schema      string         `koanf:"schema"`
	Log         LogConfig      `koanf:"log"`
	Seed        SeedConfig     `koanf:"seed"`
	Output      string         `koanf:"output" validate:"oneof=table json csv md markdown"`
	HistoryFile string         `koanf:"history_file"`
}

// Default configuration values.
const (
	DefaultDriver       = "sqlite"
	DefaultDatabasePath = "school.db"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultOutput       = "table"
	DefaultHistoryFile  = ".schooldb_history"
)

// StoreConfig converts the database section for store.Open.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Name:     c.Database.Name,
		SSLMode:  c.Database.SSLMode,
	}
}

// SeedOptions converts the seed section for seed.Generate.
func (c *Config) SeedOptions() seed.Options {
	opts := seed.DefaultOptions()
	opts.Seed = c.Seed.RandSeed
	opts.Groups = c.Seed.Groups
	opts.Courses = c.Seed.Courses
	opts.Students = c.Seed.Students
	return opts
}
