// Package config loads and validates the application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
}

// SRSConfig allows overriding scheduling algorithm parameters.
// Zero values keep the algorithm defaults.
type SRSConfig struct {
	MinEaseFactor            float64 `mapstructure:"min_ease_factor"             validate:"gte=0"`
	AgainRelearnIntervalDays int     `mapstructure:"again_relearn_interval_days" validate:"gte=0"`
	FailRelearnIntervalDays  int     `mapstructure:"fail_relearn_interval_days"  validate:"gte=0"`
	HardRelearnIntervalDays  int     `mapstructure:"hard_relearn_interval_days"  validate:"gte=0"`
}
