package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/schooldb/internal/seed"
)

// EnvPrefix prefixes every environment variable the loader reads.
// Nested keys use a double underscore: SCHOOLDB_DATABASE__DRIVER.
const EnvPrefix = "SCHOOLDB_"

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// flagKeys maps flag names to config keys. Flags not listed here are
// command options, not configuration.
var flagKeys = map[string]string{
	"driver":     "database.driver",
	"database":   "database.path",
	"db-host":    "database.host",
	"db-port":    "database.port",
	"db-user":    "database.user",
	"db-name":    "database.name",
	"schema":     "schema",
	"log-level":  "log.level",
	"log-format": "log.format",
	"output":     "output",
	"rand-seed":  "seed.rand_seed",
	"groups":     "seed.groups",
	"courses":    "seed.courses",
	"students":   "seed.students",
	"atomic":     "seed.atomic",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > schooldb.yaml > schooldb.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"schooldb.yaml", "schooldb.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, in-memory or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Load defaults
	defaults := seed.DefaultOptions()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database.driver": DefaultDriver,
		"database.path":   DefaultDatabasePath,
		"log.level":       DefaultLogLevel,
		"log.format":      DefaultLogFormat,
		"output":          DefaultOutput,
		"history_file":    DefaultHistoryFile,
		"seed.rand_seed":  defaults.Seed,
		"seed.groups":     defaults.Groups,
		"seed.courses":    defaults.Courses,
		"seed.students":   defaults.Students,
		"seed.atomic":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}
	fileDBPath := k.String("database.path")

	// 3. Load environment variables (SCHOOLDB_ prefix)
	// Transform: SCHOOLDB_DATABASE__DRIVER -> database.driver
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// A database path written in the config file is relative to that file.
	if configFileUsed != "" && cfg.Database.Path == fileDBPath {
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			cfg.Database.Path = resolvePathRelativeTo(cfg.Database.Path, filepath.Dir(abs))
		}
	}

	expandDatabaseEnvVars(&cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandDatabaseEnvVars expands environment variables in connection fields.
func expandDatabaseEnvVars(d *DatabaseConfig) {
	d.Host = expandEnvVars(d.Host)
	d.User = expandEnvVars(d.User)
	d.Password = expandEnvVars(d.Password)
	d.Name = expandEnvVars(d.Name)
	d.Path = expandEnvVars(d.Path)
}
