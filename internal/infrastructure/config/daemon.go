package config

import "time"

// DaemonConfig holds planner daemon configuration
type DaemonConfig struct {
	// Unix socket the gRPC planner service listens on
	SocketPath string `mapstructure:"socket_path" yaml:"socket_path" validate:"required"`

	// PID file that keeps a single daemon running
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file" validate:"required"`

	// Reload loadouts and ranks when the config file changes
	WatchConfig bool `mapstructure:"watch_config" yaml:"watch_config"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required"`
}
