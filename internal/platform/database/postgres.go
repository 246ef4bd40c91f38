package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/platform/config"
)

// DSN builds a lib/pq connection URL; credentials are escaped.
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

func NewPostgresDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	connStr := DSN(cfg)

	maxRetries := cfg.ConnectRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		log.Info("Connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxRetries))

		db, err := sql.Open("postgres", connStr)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				db.SetMaxOpenConns(cfg.MaxOpenConns)
				db.SetMaxIdleConns(cfg.MaxIdleConns)
				db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
				log.Info("Database connected successfully")
				return db, nil
			}
			_ = db.Close()
		}
		lastErr = err

		if i == maxRetries {
			break
		}

		log.Warn("Database not ready yet, retrying", zap.Error(err), zap.Duration("backoff", 2*time.Second))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return nil, fmt.Errorf("connect database after %d attempts: %w", maxRetries, lastErr)
}
