package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the shared connection pool. Each repository call checks a connection
// out of the pool for the duration of its query or transaction.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds the connection string and pool settings.
type Config struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	ConnMaxIdleTimeMin int
}

// Connect opens the pool, applies the settings and pings the server.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMin) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("connected to database",
		"max_open_conns", cfg.MaxOpenConns, "max_idle_conns", cfg.MaxIdleConns,
		"max_lifetime_min", cfg.ConnMaxLifetimeMin, "max_idle_time_min", cfg.ConnMaxIdleTimeMin)

	return &DB{DB: db, logger: logger}, nil
}

// New wraps an already opened *sql.DB (tests use sqlmock here).
func New(db *sql.DB, logger *slog.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// PoolStats is the JSON view of sql.DBStats exposed by the health endpoint.
type PoolStats struct {
	MaxOpenConns      int   `json:"max_open_connections"`
	OpenConns         int   `json:"open_connections"`
	InUse             int   `json:"in_use"`
	Idle              int   `json:"idle"`
	WaitCount         int64 `json:"wait_count"`
	WaitDurationMs    int64 `json:"wait_duration_ms"`
	MaxIdleClosed     int64 `json:"max_idle_closed"`
	MaxLifetimeClosed int64 `json:"max_lifetime_closed"`
}

// HealthCheck reports whether the store answers a ping.
// swagger:model HealthCheck
type HealthCheck struct {
	Status         string    `json:"status"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Error          string    `json:"error,omitempty"`
	Stats          PoolStats `json:"stats"`
	Timestamp      time.Time `json:"timestamp"`
}

func (db *DB) GetPoolStats() PoolStats {
	s := db.Stats()
	return PoolStats{
		MaxOpenConns:      s.MaxOpenConnections,
		OpenConns:         s.OpenConnections,
		InUse:             s.InUse,
		Idle:              s.Idle,
		WaitCount:         s.WaitCount,
		WaitDurationMs:    s.WaitDuration.Milliseconds(),
		MaxIdleClosed:     s.MaxIdleClosed,
		MaxLifetimeClosed: s.MaxLifetimeClosed,
	}
}

func (db *DB) HealthCheck(ctx context.Context) HealthCheck {
	start := time.Now()
	hc := HealthCheck{Timestamp: start, Stats: db.GetPoolStats()}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := db.PingContext(pingCtx)
	hc.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		hc.Status = "unhealthy"
		hc.Error = "database unreachable"
		db.logger.ErrorContext(ctx, "database health check failed", "err", err)
		return hc
	}
	hc.Status = "healthy"
	return hc
}
