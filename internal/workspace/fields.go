package workspace

import (
	"context"
	"fmt"

	"github.com/dbsmedya/gisadmin/internal/fields"
	"github.com/dbsmedya/gisadmin/internal/sqlutil"
	"github.com/dbsmedya/gisadmin/internal/types"
)

// ListFields returns the column names of the table in ordinal order.
func (w *Workspace) ListFields(ctx context.Context, t types.Table) ([]string, error) {
	const query = `
		SELECT COLUMN_NAME
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := w.db.QueryContext(ctx, query, w.schema, t.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields of %s: %w", t, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("table %s not found in %s", t, w.schema)
	}
	return names, nil
}

// EnsureAliasTable creates the field alias table if it does not exist.
func (w *Workspace) EnsureAliasTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		table_name VARCHAR(64) NOT NULL,
		field_name VARCHAR(64) NOT NULL,
		alias VARCHAR(255) NOT NULL,
		PRIMARY KEY (table_name, field_name)
	)`, sqlutil.QuoteIdentifier(w.aliasTable))

	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create alias table %s: %w", w.aliasTable, err)
	}
	return nil
}

// RenameField renames a column. A non-empty alias is stored for the new name
// in the alias table.
func (w *Workspace) RenameField(ctx context.Context, t types.Table, oldName, newName, alias string) error {
	table, err := sqlutil.QuoteIdentifierSafe(t.Name)
	if err != nil {
		return err
	}
	from, err := sqlutil.QuoteIdentifierSafe(oldName)
	if err != nil {
		return err
	}
	to, err := sqlutil.QuoteIdentifierSafe(newName)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", table, from, to)
	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to rename %s.%s to %s: %w", t, oldName, newName, err)
	}

	if alias == "" {
		return nil
	}
	return w.SetAlias(ctx, t, newName, alias)
}

// SetAlias stores the alias of a field, replacing any previous alias.
func (w *Workspace) SetAlias(ctx context.Context, t types.Table, field, alias string) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (table_name, field_name, alias) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE alias = VALUES(alias)",
		sqlutil.QuoteIdentifier(w.aliasTable))

	if _, err := w.db.ExecContext(ctx, query, t.Name, field, alias); err != nil {
		return fmt.Errorf("failed to set alias of %s.%s: %w", t, field, err)
	}
	return nil
}

var _ fields.FieldService = (*Workspace)(nil)
