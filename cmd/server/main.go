package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/beratoz/vampireville/internal/database"
	"github.com/beratoz/vampireville/internal/httpapi"
	"github.com/beratoz/vampireville/internal/logger"
	"github.com/beratoz/vampireville/internal/monitor"
	"github.com/beratoz/vampireville/internal/ratelimit"
	"github.com/beratoz/vampireville/internal/session"
	"github.com/beratoz/vampireville/internal/storage"
)

type config struct {
	HTTPAddr      string `env:"VAMPIREVILLE_HTTP_ADDR" envDefault:":8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	TokenSecret   string `env:"TOKEN_SECRET"`
	RateLimit     bool   `env:"RATE_LIMIT" envDefault:"true"`
	Development   bool   `env:"DEV_MODE"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Log.Fatalw("parse environment", "error", err)
	}

	if cfg.Development {
		logger.InitDevelopment()
	} else {
		logger.Init()
	}

	// With no DATABASE_URL, sessions live in memory only and are lost
	// on restart.
	var store storage.Store = storage.NewMemory()
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatalw("database connect", "error", err)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			logger.Log.Fatalw("database migrate", "error", err)
		}
		logger.Log.Infow("connected to database, migrations up to date")
		store = storage.NewPostgres(pool)
	} else {
		logger.Log.Warnw("DATABASE_URL not set, using in-memory storage")
	}

	tokenSecret := []byte(cfg.TokenSecret)
	if len(tokenSecret) == 0 {
		logger.Log.Warnw("TOKEN_SECRET not set, using development secret")
		tokenSecret = []byte("dev-secret-change-in-production")
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit {
		limiter = httpapi.DefaultRateLimiter()
	}

	manager := session.NewManager(store)
	metrics := monitor.New("vampireville")
	router := httpapi.NewRouter(manager, tokenSecret, limiter, metrics)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Infow("vampireville backend listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalw("http server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorw("graceful shutdown failed", "error", err)
	}
}
