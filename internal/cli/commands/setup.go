package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/schooldb/internal/cli/config"
	"github.com/leapstack-labs/schooldb/internal/dao"
	"github.com/leapstack-labs/schooldb/internal/render"
	"github.com/leapstack-labs/schooldb/internal/seed"
	"github.com/leapstack-labs/schooldb/internal/store"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   zerolog.Logger
	Store    *store.Store
	Groups   *dao.GroupDAO
	Courses  *dao.CourseDAO
	Students *dao.StudentDAO
}

// NewCommandContext opens the configured database and builds the DAOs.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig(cmd)
	logger := *zerolog.Ctx(cmd.Context())

	s, err := store.Open(cmd.Context(), cfg.StoreConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    s,
		Groups:   dao.NewGroupDAO(s),
		Courses:  dao.NewCourseDAO(s),
		Students: dao.NewStudentDAO(s),
	}, cleanup, nil
}

// getConfig returns the configuration loaded by the root command, or the
// defaults when a command runs on its own.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		return &config.Config{
			Database: config.DatabaseConfig{Driver: config.DefaultDriver, Path: config.DefaultDatabasePath},
			Log:      config.LogConfig{Level: config.DefaultLogLevel, Format: config.DefaultLogFormat},
			Output:   config.DefaultOutput,
		}
	}
	return cfg
}

// InitSchema runs the bootstrap script: the file named by the schema
// setting, or the embedded default for the active dialect.
func (cc *CommandContext) InitSchema(cmd *cobra.Command) error {
	script, err := cc.schemaScript()
	if err != nil {
		return err
	}
	if err := cc.Store.Init(cmd.Context(), script); err != nil {
		return err
	}
	cc.Logger.Info().Str("dialect", cc.Store.Dialect().Name).Msg("schema initialized")
	return nil
}

func (cc *CommandContext) schemaScript() (string, error) {
	if cc.Cfg.Schema == "" {
		return store.DefaultSchema(cc.Store.Dialect())
	}
	data, err := os.ReadFile(cc.Cfg.Schema)
	if err != nil {
		return "", fmt.Errorf("failed to read schema file %s: %w", cc.Cfg.Schema, err)
	}
	return string(data), nil
}

// Loader returns a seed loader writing through the DAOs.
func (cc *CommandContext) Loader() *seed.Loader {
	return seed.NewLoader(cc.Groups, cc.Courses, cc.Students, cc.Store, cc.Logger)
}

// SeedDatabase generates the configured dataset and loads it.
func (cc *CommandContext) SeedDatabase(cmd *cobra.Command) (*seed.Dataset, error) {
	ds, err := seed.Generate(cc.Cfg.SeedOptions())
	if err != nil {
		return nil, err
	}
	if err := cc.Loader().Load(cmd.Context(), ds, cc.Cfg.Seed.Atomic); err != nil {
		return nil, err
	}
	return ds, nil
}

// Format resolves the output format from an explicit flag value or the
// configured default.
func (cc *CommandContext) Format(flagValue string) (render.Format, error) {
	if flagValue != "" {
		return render.ParseFormat(flagValue)
	}
	return render.ParseFormat(cc.Cfg.Output)
}
