package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/halfmove/chessduel/internal/archive"
	appcfg "github.com/halfmove/chessduel/internal/config"
	"github.com/halfmove/chessduel/internal/game"
	"github.com/halfmove/chessduel/internal/httpapi"
	"github.com/halfmove/chessduel/internal/msgcat"
	"github.com/halfmove/chessduel/internal/obslog"
	"github.com/halfmove/chessduel/internal/render"
	"github.com/halfmove/chessduel/internal/rules"
	"github.com/halfmove/chessduel/internal/store"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	catalog, err := msgcat.New(cfg.MessageOverrideDir)
	if err != nil {
		logger.Fatal("message catalog init error", zap.Error(err))
	}

	// Session storage: redis when configured, in-memory otherwise.
	var (
		repo      game.Repository
		redisRepo *store.RedisRepository
	)
	if cfg.RedisURL != "" {
		redisRepo, err = store.NewRedisRepository(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			logger.Fatal("redis repository init error", zap.Error(err))
		}
		repo = redisRepo
	} else {
		logger.Warn("REDIS_URL not set, using in-memory session storage")
		repo = game.NewMemoryRepository()
	}

	opts := []game.Option{game.WithLogger(logger)}
	var pg *archive.Postgres
	if cfg.DatabaseURL != "" {
		pg, err = archive.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres archive init error", zap.Error(err))
		}
		opts = append(opts, game.WithArchiver(pg))
	} else {
		logger.Warn("DATABASE_URL not set, finished games will not be archived")
	}

	svc, err := game.NewService(rules.NewEngine(), repo, opts...)
	if err != nil {
		logger.Fatal("game service init error", zap.Error(err))
	}

	server, err := httpapi.NewServer(svc, render.NewSVGBoardRenderer(), catalog, logger)
	if err != nil {
		logger.Fatal("http server init error", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Error("http server stopped", zap.Error(err))
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if redisRepo != nil {
		_ = redisRepo.Close()
	}
	if pg != nil {
		_ = pg.Close()
	}
	_ = logger.Sync()
}
