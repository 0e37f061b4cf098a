// Command alchemy serves the match-three game over HTTP and plays it in a
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"svw.info/alchemy/internal/clock"
	"svw.info/alchemy/internal/config"
	"svw.info/alchemy/internal/hint"
	"svw.info/alchemy/internal/infrastructure/storage"
	"svw.info/alchemy/internal/logging"
	"svw.info/alchemy/internal/match"
	"svw.info/alchemy/internal/ports"
	"svw.info/alchemy/internal/solver"
	"svw.info/alchemy/internal/usecase"
	"svw.info/alchemy/internal/validator"
	"svw.info/alchemy/levels"
)

var (
	cfgFile string
	verbose bool
	logFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "alchemy",
	Short:         "Alchemy tile-placement puzzle",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		opts := logging.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON, Verbose: verbose}
		// the terminal client owns stdout and stderr
		if cmd.Name() == playCmd.Name() {
			opts.OutputPaths = []string{logFile}
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "alchemy.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, playCmd, levelsCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// levelSource serves the bundled levels unless a directory is configured.
func levelSource() ports.LevelStore {
	if cfg.Storage.LevelsDir != "" {
		return storage.NewLevelsDir(cfg.Storage.LevelsDir)
	}
	return storage.NewLevels(levels.FS())
}

// newService wires providers into the use-case service.
func newService() (*usecase.Service, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	rules := cfg.ScoreRules()
	hinter := hint.NewBestPlacement(
		solver.NewExhaustiveSearcher(validator.New()),
		match.NewResolver(rules, nil),
	)
	return usecase.NewService(
		levelSource(),
		storage.NewProgress(cfg.Storage.DataDir),
		hinter,
		clock.NewReal(),
		usecase.Engine{
			Rules:        rules,
			Lifetime:     cfg.GetMaterialLifetime(),
			Jitter:       cfg.GetLifetimeJitter(),
			CatalystCost: cfg.Game.CatalystCost,
			TTL:          cfg.GetSessionTTL(),
		},
		logger,
	), nil
}
