package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"condominium-service/src/config"

	_ "github.com/lib/pq"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute

	pingTimeout   = 5 * time.Second
	schemaTimeout = 30 * time.Second
)

// schemaPaths are tried in order; the second entry matches the Docker
// image layout.
var schemaPaths = []string{"init.sql", "/app/init.sql"}

// DB wraps the PostgreSQL connection pool
type DB struct {
	conn *sql.DB
}

// NewDB opens the connection pool, verifies connectivity and applies the
// bootstrap schema. The schema is idempotent so restarting against an
// existing database is safe.
func NewDB(cfg *config.GlobalConfig) (*DB, error) {
	dbConfig := cfg.GetDatabaseConfig()
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.GetHost(),
		dbConfig.GetPort(),
		dbConfig.GetUser(),
		dbConfig.GetPassword(),
		dbConfig.GetDBName(),
	)

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to PostgreSQL",
		"host", dbConfig.GetHost(),
		"port", dbConfig.GetPort(),
		"database", dbConfig.GetDBName())

	if err := applySchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply bootstrap schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// GetConnection returns the underlying sql.DB pool
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// applySchema executes the bootstrap DDL. A missing schema file is not
// fatal: managed deployments provision tables out of band.
func applySchema(conn *sql.DB) error {
	var script []byte
	var err error
	for _, path := range schemaPaths {
		script, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		slog.Warn("Bootstrap schema not found, skipping", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	if _, err := conn.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("failed to execute schema script: %w", err)
	}

	slog.Info("Bootstrap schema applied")
	return nil
}
