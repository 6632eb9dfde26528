package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A .env file is a development convenience; its absence is not an error.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	// Optional config.yaml in the working directory. Anything other than
	// "file not found" is a real problem and surfaces as an error.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Configure environment variables
	v.SetEnvPrefix("LEXIBIRD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind the keys that have no default, so AutomaticEnv can
	// see them before the first Get.
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"auth.jwt_secret", "LEXIBIRD_AUTH_JWT_SECRET"},
		{"database.dsn", "LEXIBIRD_DATABASE_DSN"},
		{"database.driver", "LEXIBIRD_DATABASE_DRIVER"},
		{"server.port", "LEXIBIRD_SERVER_PORT"},
		{"server.log_level", "LEXIBIRD_SERVER_LOG_LEVEL"},
	}
	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every key that has one.
// Secrets (JWT secret) deliberately have no default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.random_seed", 0)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/lexibird.db")

	v.SetDefault("auth.token_expiry", "720h")

	v.SetDefault("rescue.trigger_threshold", 3)
	v.SetDefault("rescue.normal_pass_threshold", 70)
	v.SetDefault("rescue.lowered_pass_threshold", 60)
	v.SetDefault("rescue.score_bonus", 5)
	v.SetDefault("rescue.bonus_enabled", true)
	v.SetDefault("rescue.messages", defaultSupportiveMessages)

	v.SetDefault("persist.autosave_interval", "30s")
	v.SetDefault("persist.debounce", "3s")

	v.SetDefault("task.reaper_interval", "10m")
	v.SetDefault("task.completed_session_ttl", "1h")
	v.SetDefault("task.abandoned_session_ttl", "24h")
	v.SetDefault("task.analytics_interval", "1h")
	v.SetDefault("task.ranking_interval", "15m")
}

// defaultSupportiveMessages is the built-in encouragement pool shown when
// rescue mode activates. Deployments can replace it wholesale via config.
var defaultSupportiveMessages = []string{
	"Don't worry, tricky sounds take time. Let's ease up a little.",
	"Every learner stumbles here. You're closer than you think.",
	"Take a breath. We'll lower the bar while you find your rhythm.",
	"Tough word! Let's make this round a bit friendlier.",
	"You're still making progress. Keep going at your own pace.",
}
