package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/api"
	"github.com/playmatatu/duel/internal/config"
	"github.com/playmatatu/duel/internal/database"
	"github.com/playmatatu/duel/internal/game"
	"github.com/playmatatu/duel/internal/migrations"
	"github.com/playmatatu/duel/internal/redis"
	"github.com/playmatatu/duel/internal/settings"
	"github.com/playmatatu/duel/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize configuration (.env is loaded by config.Load)
	cfg := config.Load()
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameCfg, err := config.LoadGame(cfg.GameConfigPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.GameConfigPath).Msg("using default game config")
	}

	// Optional database: runtime overrides for the game config
	if cfg.DatabaseURL != "" {
		applyDatabaseSettings(ctx, cfg, &gameCfg)
	}

	hub := ws.NewHub()
	var out game.Broadcaster = hub

	// Optional Redis: event mirror and operator notices
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("redis unavailable, running without event mirror")
		} else {
			defer rdb.Close()
			mirror := ws.NewMirror(rdb, cfg.MirrorBufferSize)
			go mirror.Run(ctx)
			ws.StartNoticeSubscriber(ctx, rdb, hub)
			out = game.Broadcasters{hub, mirror}
		}
	}

	mgr := game.NewManager(gameCfg, out, game.WithTickInterval(time.Duration(cfg.TickIntervalMs)*time.Millisecond))
	go mgr.Run(ctx)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg, mgr, ws.NewHandler(hub, mgr, cfg.SendBufferSize))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Environment).
			Float64("max_health", gameCfg.MaxHealth).
			Int("crit_trigger_streak", gameCfg.CritTriggerStreak).
			Msg("starting duel server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// applyDatabaseSettings runs migrations if requested and applies stored
// overrides. Any failure leaves gameCfg as it was.
func applyDatabaseSettings(ctx context.Context, cfg *config.Config, gameCfg *config.Game) {
	if cfg.MigrateOnStart {
		log.Info().Msg("running DB migrations on startup")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Error().Err(err).Msg("migrations failed")
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("database unavailable, skipping game setting overrides")
		return
	}
	defer db.Close()

	if err := settings.Load(connectCtx, db, gameCfg); err != nil {
		log.Error().Err(err).Msg("game setting overrides not applied")
	}
}
