// Package database provides MySQL connection management for the gisadmin workspace.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/gisadmin/internal/config"
)

// Manager owns the connection pool to the workspace database.
type Manager struct {
	Workspace *sql.DB
	config    *config.Config

	// retry settings, overridable in tests
	maxRetries int
	backoff    time.Duration
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:     cfg,
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// Connect establishes the workspace connection.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config == nil {
		return fmt.Errorf("database manager has no configuration")
	}

	db, err := m.connectWithRetry(ctx, &m.config.Workspace.DatabaseConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to workspace database: %w", err)
	}
	m.Workspace = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := m.backoff
	for i := 0; i < m.maxRetries; i++ {
		db, err = m.connect(cfg)
		if err == nil {
			pingErr := db.PingContext(ctx)
			if pingErr == nil {
				return db, nil
			}
			db.Close()
			err = pingErr
		}

		if i < m.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

// connect creates a database connection.
func (m *Manager) connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the workspace connection.
func (m *Manager) Close() error {
	if m.Workspace == nil {
		return nil
	}
	if err := m.Workspace.Close(); err != nil {
		return fmt.Errorf("workspace close: %w", err)
	}
	return nil
}

// Ping verifies the workspace connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Workspace == nil {
		return fmt.Errorf("workspace database is not connected")
	}
	if err := m.Workspace.PingContext(ctx); err != nil {
		return fmt.Errorf("workspace ping failed: %w", err)
	}
	return nil
}
