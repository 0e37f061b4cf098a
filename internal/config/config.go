// Package config holds the runtime configuration for the alchemy server and
// terminal client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"svw.info/alchemy/internal/domain"
)

// Config is the top-level configuration file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Game    GameConfig    `yaml:"game"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
}

// StorageConfig locates level definitions and user progress. An empty
// LevelsDir serves the bundled levels.
type StorageConfig struct {
	LevelsDir string `yaml:"levels_dir"`
	DataDir   string `yaml:"data_dir"`
}

// GameConfig carries the scoring and timing constants that vary between
// releases of the game.
type GameConfig struct {
	TickInterval     string `yaml:"tick_interval"`
	MaterialLifetime string `yaml:"material_lifetime"`
	LifetimeJitter   string `yaml:"lifetime_jitter"`
	ScorePerCell     int    `yaml:"score_per_cell"`
	ScoreOriginCell  bool   `yaml:"score_origin_cell"`
	CatalystCost     int    `yaml:"catalyst_cost"`
	SessionTTL       string `yaml:"session_ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration the game ships with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Game: GameConfig{
			TickInterval:     "100ms",
			MaterialLifetime: "60s",
			LifetimeJitter:   "5s",
			ScorePerCell:     50,
			ScoreOriginCell:  true,
			CatalystCost:     3,
			SessionTTL:       "2h",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ALCHEMY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ALCHEMY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ALCHEMY_LEVELS_DIR"); v != "" {
		c.Storage.LevelsDir = v
	}
	if v := os.Getenv("ALCHEMY_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func (c *Config) GetReadHeaderTimeout() time.Duration {
	return duration(c.Server.ReadHeaderTimeout, 5*time.Second)
}

func (c *Config) GetTickInterval() time.Duration {
	return duration(c.Game.TickInterval, 100*time.Millisecond)
}

func (c *Config) GetMaterialLifetime() time.Duration {
	return duration(c.Game.MaterialLifetime, 60*time.Second)
}

func (c *Config) GetLifetimeJitter() time.Duration {
	return duration(c.Game.LifetimeJitter, 5*time.Second)
}

func (c *Config) GetSessionTTL() time.Duration {
	return duration(c.Game.SessionTTL, 2*time.Hour)
}

// ScoreRules returns the match scoring configured for this release.
func (c *Config) ScoreRules() domain.ScoreRules {
	return domain.ScoreRules{PerCell: c.Game.ScorePerCell, CountOrigin: c.Game.ScoreOriginCell}
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	for name, v := range map[string]string{
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"game.tick_interval":         c.Game.TickInterval,
		"game.material_lifetime":     c.Game.MaterialLifetime,
		"game.lifetime_jitter":       c.Game.LifetimeJitter,
		"game.session_ttl":           c.Game.SessionTTL,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s %q: negative", name, v)
		}
	}
	if c.GetTickInterval() <= 0 {
		return fmt.Errorf("game.tick_interval must be positive")
	}
	if c.Game.ScorePerCell < 0 {
		return fmt.Errorf("game.score_per_cell must not be negative")
	}
	if c.Game.CatalystCost < 0 {
		return fmt.Errorf("game.catalyst_cost must not be negative")
	}
	lvl := strings.ToLower(c.Logging.Level)
	for _, v := range ValidLogLevels {
		if lvl == v {
			return nil
		}
	}
	return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
}
