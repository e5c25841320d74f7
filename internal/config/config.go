// Package config loads server settings from the environment.
//
// A `.env` file in the working directory is loaded first (development);
// real environment variables always win.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Reaction backends.
const (
	ReactionsLog     = "log"
	ReactionsDesktop = "desktop"
)

// Config holds every server setting.
type Config struct {
	Port      string `env:"PORT"       envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	DBPath    string `env:"DB_PATH"    envDefault:"./data/app.db"`
	WordsFile string `env:"WORDS_FILE"`

	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"wordscape_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	AppEnv         string `env:"APP_ENV"          envDefault:"development"`

	Reactions     string `env:"REACTIONS"         envDefault:"log"`
	SpeechEnabled bool   `env:"SPEECH_ENABLED"    envDefault:"true"`
	ServerClock   bool   `env:"GAME_SERVER_CLOCK" envDefault:"false"`
}

// Production reports whether cookies must be Secure/SameSite=None.
func (c Config) Production() bool { return c.AppEnv == "production" }

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Reactions {
	case ReactionsLog, ReactionsDesktop:
	default:
		return Config{}, fmt.Errorf("REACTIONS: unknown backend %q", cfg.Reactions)
	}
	if cfg.JWTExpiresDays <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRES_DAYS must be positive, got %d", cfg.JWTExpiresDays)
	}
	return cfg, nil
}
