package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	app "github.com/volleyhq/volley"
	"github.com/volleyhq/volley/internal/archive"
	"github.com/volleyhq/volley/internal/client"
	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/engine"
	"github.com/volleyhq/volley/internal/engine/event"
	"github.com/volleyhq/volley/internal/server"
	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
	"github.com/volleyhq/volley/pkg/util/call"
)

type volley struct {
	cfg        *config.Config
	stores     *store.Stores
	redis      *redis.Client
	dispatcher *client.Factory
	hub        *event.Hub
	history    *archive.Store
	writer     *archive.Writer
	engine     *engine.Engine
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrConnectStore = errors.New("failed to connect to redis")
	ErrOpenArchive  = errors.New("failed to open archive bucket")
	ErrBindAPI      = errors.New("failed to bind API listener")
)

const (
	storePingTimeout   = 5 * time.Second
	archiveSaveTimeout = 30 * time.Second
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &volley{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *volley) run() error {
	if err := call.Perform(
		s.initializeStores,
		s.initializeArchive,
		s.initializeEngine,
		s.startServer,
	); err != nil {
		return err
	}

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *volley) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Volley starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("store_backend", s.cfg.Store.Backend),
		slog.String("redis_addr", s.cfg.Store.Addr),
		slog.String("archive_url", s.cfg.ArchiveURL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *volley) initializeStores() error {
	if s.cfg.Store.Backend == config.BackendMemory {
		s.stores = store.NewMemoryStores()
		return nil
	}

	s.redis = store.NewRedisClient(s.cfg.Store)

	ctx, cancel := context.WithTimeout(
		context.Background(), storePingTimeout,
	)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectStore, err)
	}

	s.stores = store.NewRedisStores(s.redis, s.cfg.Store.Prefix)
	return nil
}

func (s *volley) initializeArchive() error {
	if !s.cfg.Archiving() {
		return nil
	}

	history, err := archive.NewStore(
		context.Background(), s.cfg.ArchiveURL, s.cfg.ArchivePrefix,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenArchive, err)
	}
	s.history = history

	s.writer = archive.NewWriter(func(res *api.FlowResult) error {
		ctx, cancel := context.WithTimeout(
			context.Background(), archiveSaveTimeout,
		)
		defer cancel()
		return history.Save(ctx, res)
	})
	s.writer.Start()
	return nil
}

func (s *volley) initializeEngine() error {
	s.dispatcher = client.NewFactory(s.cfg)
	s.hub = event.NewHub()
	s.engine = engine.New(s.stores, s.dispatcher, s.hub, s.writer, s.cfg)
	return nil
}

// startServer binds the API listener before returning. Serving happens in
// the background; bind failures surface as startup errors
func (s *volley) startServer() error {
	s.apiServer = server.NewServer(s.engine, s.stores, s.hub, s.history)
	mux := s.apiServer.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBindAPI, err)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("addr", addr))
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
	return nil
}

func (s *volley) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}
	s.apiServer.CloseWebSockets()

	if err := s.engine.Close(); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}

	if s.writer != nil {
		s.writer.Flush()
	}
	if s.history != nil {
		_ = s.history.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}

	slog.Info("Server exited")
}
