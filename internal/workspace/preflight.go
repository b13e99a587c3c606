package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/gisadmin/internal/sqlutil"
)

// MissingTablesError lists configured tables that do not exist in the workspace.
type MissingTablesError struct {
	Schema string
	Tables []string
}

func (e *MissingTablesError) Error() string {
	return fmt.Sprintf("tables not found in workspace %s: %s", e.Schema, strings.Join(e.Tables, ", "))
}

// CheckTablesExist verifies that every named table exists in the workspace.
func (w *Workspace) CheckTablesExist(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME IN (%s)`, sqlutil.Placeholders(len(tables)))

	args := make([]interface{}, len(tables)+1)
	args[0] = w.schema
	for i, table := range tables {
		args[i+1] = table
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, table := range tables {
		if !existing[table] {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return &MissingTablesError{Schema: w.schema, Tables: missing}
	}

	w.logger.Debugf("Table existence check passed (%d tables)", len(tables))
	return nil
}
