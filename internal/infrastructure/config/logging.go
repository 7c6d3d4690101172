package config

// LoggingConfig holds step logging configuration
type LoggingConfig struct {
	// Minimum level written: debug, info, warning, error
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warning error"`

	// Persist step logs to the database
	Persist bool `mapstructure:"persist" yaml:"persist"`

	// Plain CLI output without ANSI colours
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}
