package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/config"
	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/repositories"
	"github.com/anhbaysgalan1/numpoker/internal/handlers"
	custommiddleware "github.com/anhbaysgalan1/numpoker/internal/middleware"
	ws "github.com/anhbaysgalan1/numpoker/server"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
)

type NumPokerServer struct {
	config      *config.Config
	rdb         *redis.Client
	engine      engine.GameEngine
	hub         *ws.Hub
	oxygen      *OxygenScheduler
	rateLimiter *custommiddleware.RateLimiter
	server      *http.Server
	stopHub     context.CancelFunc
}

// NewNumPokerServer wires the engine, websocket hub and oxygen clocks from
// cfg. Redis is used for view caching and cross-instance fan-out when
// cfg.RedisURL is set.
func NewNumPokerServer(cfg *config.Config) (*NumPokerServer, error) {
	difficulty, err := ai.ParseDifficulty(cfg.DefaultDifficulty)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_DIFFICULTY: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = NewRedisClient(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
	}

	// Setup WebSocket hub
	hub := ws.NewHub(rdb)

	opts := []engine.Option{engine.WithPublisher(hub)}
	if rdb != nil {
		opts = append(opts, engine.WithCache(repositories.NewRedisCache(rdb)))
	}
	e := engine.NewGameEngine(engine.Settings{
		Game:              cfg.GameConfig(),
		DefaultDifficulty: difficulty,
		Seed:              cfg.Seed,
	}, opts...)

	return &NumPokerServer{
		config:      cfg,
		rdb:         rdb,
		engine:      e,
		hub:         hub,
		oxygen:      NewOxygenScheduler(e, cfg.OxygenInterval),
		rateLimiter: custommiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, nil
}

// NewRedisClient connects to cfg.RedisURL and checks the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Start serves until SIGINT or SIGTERM, then shuts down.
func (s *NumPokerServer) Start() error {
	s.server = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.Handler(),
	}

	// Start WebSocket hub
	ctx, cancel := context.WithCancel(context.Background())
	s.stopHub = cancel
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting numpoker server", "port", s.config.Port, "redis", s.rdb != nil)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		s.Shutdown()
		return fmt.Errorf("server failed: %w", err)
	}

	slog.Info("Shutting down server...")
	return s.Shutdown()
}

func (s *NumPokerServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}

	s.oxygen.Stop()
	if s.stopHub != nil {
		s.stopHub()
	}
	s.rateLimiter.Close()

	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}

	slog.Info("Server shutdown complete")
	return nil
}

// Handler builds the HTTP routes.
func (s *NumPokerServer) Handler() http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ws", s.serveWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimiter.RateLimit)

		gameHandler := handlers.NewGameHandler(s.engine, s.oxygen)
		r.Get("/rules", gameHandler.ListRules)
		r.Mount("/games", gameHandler.Routes())
	})

	return r
}

func (s *NumPokerServer) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	ws.ServeWs(s.hub, s.engine, s.oxygen, w, r)
}
