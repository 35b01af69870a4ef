package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/anhbaysgalan1/numpoker/internal/engine/solver"
)

type Config struct {
	// Environment
	Environment string

	// Redis, optional; games fan out in-process when unset
	RedisURL      string
	RedisPassword string

	// Server
	Port           string
	RateLimitRPS   float64
	RateLimitBurst int

	// Game
	Seed              int64
	StartingChips     int
	OxygenInterval    time.Duration
	LookaheadTrials   int
	InsightTrials     int
	ShowdownTrials    int
	SolverFallback    string
	DefaultDifficulty string
}

func Load() *Config {
	return &Config{
		// Environment
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnvOrDefault("REDIS_URL", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Server
		Port:           getEnvOrDefault("PORT", "8080"),
		RateLimitRPS:   getFloatOrDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getIntOrDefault("RATE_LIMIT_BURST", 20),

		// Game
		Seed:              int64(getIntOrDefault("GAME_SEED", 0)),
		StartingChips:     getIntOrDefault("STARTING_CHIPS", 30),
		OxygenInterval:    getDurationOrDefault("OXYGEN_INTERVAL", 45*time.Second),
		LookaheadTrials:   getIntOrDefault("LOOKAHEAD_TRIALS", solver.LookaheadTrials),
		InsightTrials:     getIntOrDefault("INSIGHT_TRIALS", solver.InsightTrials),
		ShowdownTrials:    getIntOrDefault("SHOWDOWN_TRIALS", solver.ShowdownTrials),
		SolverFallback:    getEnvOrDefault("SOLVER_FALLBACK", "strict"),
		DefaultDifficulty: getEnvOrDefault("DEFAULT_DIFFICULTY", "NORMAL"),
	}
}

// GameConfig turns the game settings into the engine's configuration. An
// unknown fallback policy is logged and replaced by the strict one.
func (c *Config) GameConfig() game.Config {
	fallback, err := solver.ParseFallback(c.SolverFallback)
	if err != nil {
		slog.Warn("Invalid SOLVER_FALLBACK, using strict", "value", c.SolverFallback, "error", err)
	}
	return game.Config{
		StartingChips:   c.StartingChips,
		LookaheadTrials: c.LookaheadTrials,
		InsightTrials:   c.InsightTrials,
		ShowdownTrials:  c.ShowdownTrials,
		Fallback:        fallback,
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("Invalid number in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return f
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// zero is a valid setting: it switches the timer off
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
