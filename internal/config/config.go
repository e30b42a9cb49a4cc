package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/simulate"
)

// EnvPrefix prefixes every environment override, e.g. DECKCHECK_SIMULATION_SEED.
const EnvPrefix = "DECKCHECK_"

// Config represents the application configuration.
type Config struct {
	// Simulation settings
	Simulation SimulationConfig `toml:"simulation" envPrefix:"SIMULATION_"`

	// Report persistence
	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`

	// Application configuration
	App AppConfig `toml:"app" envPrefix:"APP_"`
}

// SimulationConfig contains Monte Carlo settings.
type SimulationConfig struct {
	MulliganIterations  int    `toml:"mulligan_iterations" env:"MULLIGAN_ITERATIONS"`
	EarlyTurnIterations int    `toml:"early_turn_iterations" env:"EARLY_TURN_ITERATIONS"`
	Seed                uint64 `toml:"seed" env:"SEED"`                       // 0 draws a random seed
	Workers             int    `toml:"workers" env:"WORKERS"`                 // 0 uses every CPU
	MulliganPolicy      string `toml:"mulligan_policy" env:"MULLIGAN_POLICY"` // "london" or "vancouver"
	MaxMulligans        int    `toml:"max_mulligans" env:"MAX_MULLIGANS"`
	Turns               int    `toml:"turns" env:"TURNS"`
	BatchSize           int    `toml:"batch_size" env:"BATCH_SIZE"`
}

// StorageConfig contains report database settings.
type StorageConfig struct {
	Path        string `toml:"path" env:"PATH"` // Empty disables persistence
	AutoMigrate bool   `toml:"auto_migrate" env:"AUTO_MIGRATE"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode" env:"DEBUG_MODE"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			MulliganIterations:  simulate.DefaultIterations,
			EarlyTurnIterations: simulate.DefaultIterations,
			Seed:                0,
			Workers:             0,
			MulliganPolicy:      string(simulate.London),
			MaxMulligans:        3,
			Turns:               3,
			BatchSize:           512,
		},
		Storage: StorageConfig{
			Path:        "",
			AutoMigrate: true,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns the path to the user's configuration file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".commander-consistency", "config.toml"), nil
}

// Load reads the configuration at path on top of the defaults, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDefault loads the configuration from DefaultPath.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// ApplyEnv overrides fields from DECKCHECK_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.MulliganIterations <= 0 {
		return fmt.Errorf("mulligan iterations must be positive: %d", s.MulliganIterations)
	}
	if s.EarlyTurnIterations <= 0 {
		return fmt.Errorf("early turn iterations must be positive: %d", s.EarlyTurnIterations)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", s.Workers)
	}
	if _, err := simulate.ParsePolicy(s.MulliganPolicy); err != nil {
		return fmt.Errorf("invalid mulligan policy %q: %w", s.MulliganPolicy, err)
	}
	if s.MaxMulligans < 0 {
		return fmt.Errorf("max mulligans cannot be negative: %d", s.MaxMulligans)
	}
	if s.Turns < 1 {
		return fmt.Errorf("turns must be positive: %d", s.Turns)
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("batch size cannot be negative: %d", s.BatchSize)
	}
	return nil
}

// SimulationOptions converts the simulation section into analyzer options.
func (c *Config) SimulationOptions() (consistency.Options, error) {
	policy, err := simulate.ParsePolicy(c.Simulation.MulliganPolicy)
	if err != nil {
		return consistency.Options{}, err
	}

	opts := consistency.DefaultOptions()
	run := simulate.RunOptions{
		Seed:      c.Simulation.Seed,
		Workers:   c.Simulation.Workers,
		BatchSize: c.Simulation.BatchSize,
	}

	opts.Mulligan.RunOptions = run
	opts.Mulligan.Iterations = c.Simulation.MulliganIterations
	opts.Mulligan.Policy = policy
	opts.Mulligan.MaxMulligans = c.Simulation.MaxMulligans

	opts.EarlyTurn.RunOptions = run
	opts.EarlyTurn.Iterations = c.Simulation.EarlyTurnIterations
	opts.EarlyTurn.Turns = c.Simulation.Turns
	return opts, nil
}
