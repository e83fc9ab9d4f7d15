package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds runtime configuration for the game core. Everything has a
// working default: with no environment at all the game runs fully local
// against the bundled question set.
type App struct {
	Name        string `env:"APP_NAME" envDefault:"history-canopy"`
	Env         string `env:"APP_ENV" envDefault:"development"`
	MetricsAddr string `env:"METRICS_ADDR"` // empty disables the /metrics listener

	Store Store
	Redis Redis
	Game  Game
}

// Store points at the remote players/questions REST store. An empty URL
// means unconfigured: the session runs local-only.
type Store struct {
	BaseURL     string        `env:"STORE_URL"`
	HTTPTimeout time.Duration `env:"STORE_HTTP_TIMEOUT" envDefault:"5s"`
}

// Redis configures the optional read cache in front of the store.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"` // empty disables caching
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"30s"`
}

// Game groups gameplay defaults.
type Game struct {
	QuestionSeconds   int           `env:"QUESTION_SECONDS" envDefault:"15"`
	AnswerRevealDelay time.Duration `env:"ANSWER_REVEAL_DELAY" envDefault:"800ms"`
	MaxPoolSize       int           `env:"MAX_POOL_SIZE" envDefault:"20"`
	LeaderboardTop    int           `env:"LEADERBOARD_TOP" envDefault:"10"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
