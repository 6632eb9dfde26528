package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Rescue   RescueConfig   `mapstructure:"rescue" validate:"required"`
	Persist  PersistConfig  `mapstructure:"persist" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// RandomSeed seeds the shuffle and message-pool generators.
	// Zero means seed from the clock.
	RandomSeed int64 `mapstructure:"random_seed"`
}

// DatabaseConfig contains all database-related configuration settings.
// The snapshot writer supports an embedded SQLite file (the default) and
// PostgreSQL via the pgx stdlib driver.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite3 pgx"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" validate:"required"`
}

// RescueConfig is the rescue-mode policy: when the relaxed pass bar kicks
// in, what it relaxes to, and the encouragement shown alongside it.
type RescueConfig struct {
	TriggerThreshold     int      `mapstructure:"trigger_threshold" validate:"required,gt=0"`
	NormalPassThreshold  int      `mapstructure:"normal_pass_threshold" validate:"required,gt=0,lte=100"`
	LoweredPassThreshold int      `mapstructure:"lowered_pass_threshold" validate:"required,gt=0,ltefield=NormalPassThreshold"`
	ScoreBonus           int      `mapstructure:"score_bonus" validate:"gte=0"`
	BonusEnabled         bool     `mapstructure:"bonus_enabled"`
	Messages             []string `mapstructure:"messages" validate:"required,min=1"`
}

// PersistConfig controls the write-behind persister.
type PersistConfig struct {
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"required"`
	Debounce         time.Duration `mapstructure:"debounce" validate:"required"`
}

// TaskConfig contains the schedules for the background jobs.
type TaskConfig struct {
	ReaperInterval      time.Duration `mapstructure:"reaper_interval" validate:"required"`
	CompletedSessionTTL time.Duration `mapstructure:"completed_session_ttl" validate:"required"`
	AbandonedSessionTTL time.Duration `mapstructure:"abandoned_session_ttl" validate:"required"`
	AnalyticsInterval   time.Duration `mapstructure:"analytics_interval" validate:"required"`
	RankingInterval     time.Duration `mapstructure:"ranking_interval" validate:"required"`
}
