// Package lock serialises mutating gisadmin commands with MySQL advisory locks.
//
// Selections and cursor writes assume a single editor per workspace. Commands
// that write take a named lock with GET_LOCK() on a dedicated connection and
// release it with RELEASE_LOCK() on the same connection when they finish.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockHeld is returned when another session holds the lock.
var ErrLockHeld = errors.New("lock is held by another session")

// Lock wait times in seconds.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutMedium    = 10
)

// maxLockNameLength is the MySQL limit on advisory lock names.
const maxLockNameLength = 64

// AdvisoryLock is a named MySQL advisory lock. GET_LOCK() locks belong to a
// connection, so the lock pins one connection from the pool while held.
type AdvisoryLock struct {
	db   *sql.DB
	name string
	conn *sql.Conn
}

// NewAdvisoryLock creates a lock with the given name. Nothing is acquired yet.
func NewAdvisoryLock(db *sql.DB, name string) *AdvisoryLock {
	return &AdvisoryLock{db: db, name: name}
}

// Name returns the lock name.
func (a *AdvisoryLock) Name() string {
	return a.name
}

// IsHeld reports whether this instance holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.conn != nil
}

// Acquire waits up to timeoutSeconds for the lock. It reports false when the
// wait ran out because another session holds the lock.
//
// GET_LOCK() returns 1 on success, 0 on timeout and NULL on error.
func (a *AdvisoryLock) Acquire(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.conn != nil {
		return true, nil
	}
	if a.db == nil {
		return false, fmt.Errorf("database is nil")
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection for lock %q: %w", a.name, err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.name, timeoutSeconds).Scan(&result); err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		_ = conn.Close()
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q", a.name)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		return true, nil
	case 0:
		_ = conn.Close()
		return false, nil
	default:
		_ = conn.Close()
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// AcquireOrFail takes the lock with a short wait and returns an error
// wrapping ErrLockHeld when another session has it.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.Acquire(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: %q", ErrLockHeld, a.name)
	}
	return nil
}

// Release releases the lock and returns its connection to the pool. It
// reports false when the lock was not held.
//
// RELEASE_LOCK() returns 1 when released, 0 when the lock belongs to another
// session and NULL when no such lock exists.
func (a *AdvisoryLock) Release(ctx context.Context) (bool, error) {
	if a.conn == nil {
		return false, nil
	}
	conn := a.conn
	a.conn = nil
	defer func() { _ = conn.Close() }()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.name).Scan(&result); err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q", a.name)
	}
	return result.Int64 == 1, nil
}

// WithLock runs fn while holding the lock. The lock is released when fn
// returns or panics, using a fresh context so a cancelled ctx still releases.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.Acquire(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: %q", ErrLockHeld, a.name)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// The server drops the lock with the connection if this fails.
		_, _ = a.Release(releaseCtx)
	}()

	return fn()
}

// EditLockName returns the lock name guarding edits to a workspace schema:
// "gisadmin:edit:{schema}", with characters outside [A-Za-z0-9_-] replaced
// and the result cut to the MySQL name limit.
func EditLockName(schema string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, schema)

	name := "gisadmin:edit:" + sanitized
	if len(name) > maxLockNameLength {
		name = name[:maxLockNameLength]
	}
	return name
}

// NewEditLock creates the edit lock of a workspace schema.
func NewEditLock(db *sql.DB, schema string) *AdvisoryLock {
	return NewAdvisoryLock(db, EditLockName(schema))
}

// WithEditLock runs fn while holding the workspace edit lock, failing fast
// with ErrLockHeld when another session is editing.
func WithEditLock(ctx context.Context, db *sql.DB, schema string, fn func() error) error {
	return NewEditLock(db, schema).WithLock(ctx, TimeoutShort, fn)
}
