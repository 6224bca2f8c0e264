// Command contacts serves the contact book API with its reads cached through
// a multicache registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/multicache"
	asynchook "github.com/unkn0wn-root/multicache/hooks/async"
	"github.com/unkn0wn-root/multicache/internal/contacts"
	mczap "github.com/unkn0wn-root/multicache/log/zap"
	"github.com/unkn0wn-root/multicache/settings"
	"github.com/unkn0wn-root/multicache/sloghooks"
)

type env struct {
	appName       string
	httpAddr      string
	redisAddr     string
	redisPassword string
	redisDB       int
	configPath    string
	logLevel      string
}

func loadEnv() (env, error) {
	e := env{
		appName:       getenv("APP_NAME", "contacts"),
		httpAddr:      getenv("HTTP_ADDR", ":8080"),
		redisAddr:     getenv("REDIS_ADDRESS", "localhost:6379"),
		redisPassword: os.Getenv("REDIS_PASSWORD"),
		configPath:    getenv("MULTICACHE_CONFIG", "multicache.yaml"),
		logLevel:      getenv("LOG_LEVEL", "info"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return e, errors.New("REDIS_DB must be an integer")
		}
		e.redisDB = db
	}
	return e, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "contacts:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	log, err := newLogger(e.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := settings.LoadFile(e.configPath)
	if err != nil {
		log.Error("load cache settings", zap.Error(err))
		return err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     e.redisAddr,
		Password: e.redisPassword,
		DB:       e.redisDB,
	})
	defer rdb.Close()

	hooks := asynchook.New(sloghooks.New(slog.New(slog.NewJSONHandler(os.Stderr, nil)), sloghooks.Options{
		SetRejectedEvery:  100,
		DecodeFailedEvery: 1,
	}), 1, 1024)
	defer hooks.Close()

	reg, err := multicache.Build(cfg, multicache.Options{
		ApplicationName: e.appName,
		RedisClient:     rdb,
		Logger:          mczap.New(log),
		Hooks:           hooks,
	})
	if err != nil {
		log.Error("build caches", zap.Error(err))
		return err
	}
	defer reg.Close(context.Background())

	svc, err := contacts.NewService(contacts.NewMemoryStore(), reg, hooks, log)
	if err != nil {
		log.Error("wire contacts service", zap.Error(err))
		return err
	}

	r := mux.NewRouter()
	contacts.NewHandler(svc, log).Register(r)
	srv := &http.Server{
		Addr:              e.httpAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", e.httpAddr), zap.Strings("caches", reg.Names()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
