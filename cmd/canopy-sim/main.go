// Command canopy-sim drives a headless game session end to end: login,
// scene transitions, answering every leaf, score sync and a leaderboard
// read. It is the smoke harness for the core; the visual presentation
// layer lives elsewhere and consumes the same engine API.
package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/historycanopy/game/internal/canopy"
	"github.com/historycanopy/game/internal/config"
	"github.com/historycanopy/game/internal/gateway"
	"github.com/historycanopy/game/internal/logging"
	"github.com/historycanopy/game/internal/metrics"
	"github.com/historycanopy/game/internal/prefs"
	"github.com/historycanopy/game/internal/session"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Name, cfg.Env)
	m := metrics.New("sim")

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	var cache gateway.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		cache = gateway.NewRedisCache(client, cfg.Redis.CacheTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("store cache enabled")
	}

	store := gateway.NewClient(
		cfg.Store.BaseURL,
		&http.Client{Timeout: cfg.Store.HTTPTimeout},
		logger,
		gateway.Options{Cache: cache, Metrics: m, TopN: cfg.Game.LeaderboardTop},
	)
	if !store.Configured() {
		logger.Warn().Msg("STORE_URL not set; running local-only with the bundled question set")
	}

	engine := session.New(store, canopy.NewGenerator(nil), logger, m, session.Options{
		QuestionSeconds: cfg.Game.QuestionSeconds,
		RevealDelay:     cfg.Game.AnswerRevealDelay,
		MaxPoolSize:     cfg.Game.MaxPoolSize,
	})
	defer engine.Close()

	if pref, err := prefs.Open(""); err == nil {
		if !pref.HelpShown() {
			logger.Info().Msg("first run; help would be shown once")
			if err := pref.MarkHelpShown(); err != nil {
				logger.Debug().Err(err).Msg("could not persist help flag")
			}
		}
	}

	name := "Khách"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}
	if !engine.Login(ctx, name) {
		log.Fatal("login requires a non-empty player name")
	}

	engine.StartTransition()
	engine.CompleteTransition(ctx)
	waitForPool(engine)
	runSession(engine, logger)

	logger.Info().Msg("playing again")
	engine.PlayAgain(ctx)
	waitForPool(engine)
	runSession(engine, logger)

	for i, entry := range store.FetchLeaderboard(ctx) {
		logger.Info().
			Int("rank", i+1).
			Str("player", entry.Name).
			Int("score", entry.Score).
			Msg("leaderboard")
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn().Err(err).Msg("metrics listener stopped")
	}
}

func waitForPool(engine *session.Engine) {
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-engine.Events():
			if ev.Type == session.EventPoolLoaded {
				return
			}
		case <-deadline:
			return
		}
	}
}

// runSession opens every leaf once and answers with a random option.
func runSession(engine *session.Engine, logger zerolog.Logger) {
	snap := engine.Snapshot()
	for _, q := range snap.Pool {
		if !engine.OpenQuestion(q.ID) {
			continue
		}
		engine.SubmitAnswer(q.Options[rand.Intn(len(q.Options))])
		engine.CloseQuestion()
	}

	final := engine.Snapshot()
	logger.Info().
		Int("score", final.Score).
		Int("pool", len(final.Pool)).
		Bool("finished", final.Finished).
		Msg("session complete")
}
