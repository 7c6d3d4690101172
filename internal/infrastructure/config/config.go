package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Daemon     DaemonConfig     `mapstructure:"daemon" yaml:"daemon"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Planner    PlannerConfig    `mapstructure:"planner" yaml:"planner"`
	Spawn      SpawnConfig      `mapstructure:"spawn" yaml:"spawn"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (colony.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	cfg, _, err := load(configPath)
	return cfg, err
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("colony")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/colony")
	}

	v.SetEnvPrefix("COLONY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(configPath string) (*Config, *viper.Viper, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := newViper(configPath)

	// Config file is optional; env vars and defaults cover a missing one
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL is honoured without the COLONY_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Watcher reloads the configuration whenever its file changes
type Watcher struct {
	v *viper.Viper

	mu      sync.RWMutex
	current *Config
}

// NewWatcher loads configPath and prepares a watcher on it
func NewWatcher(configPath string) (*Watcher, error) {
	cfg, v, err := load(configPath)
	if err != nil {
		return nil, err
	}
	return &Watcher{v: v, current: cfg}, nil
}

// Config returns the last valid configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// File returns the path being watched, empty when no file was found
func (w *Watcher) File() string {
	return w.v.ConfigFileUsed()
}

// Start begins watching. onChange receives either the new configuration or
// the error that made it invalid; an invalid file never replaces a valid one.
func (w *Watcher) Start(onChange func(cfg *Config, err error)) {
	w.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(w.v)
		if err != nil {
			onChange(nil, fmt.Errorf("reload %s: %w", e.Name, err))
			return
		}
		w.mu.Lock()
		w.current = cfg
		w.mu.Unlock()
		onChange(cfg, nil)
	})
	w.v.WatchConfig()
}
