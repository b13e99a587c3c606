package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dbsmedya/gisadmin/internal/sqlutil"
	"github.com/dbsmedya/gisadmin/internal/transfer"
	"github.com/dbsmedya/gisadmin/internal/types"
)

// ReadFirst returns the values of fields for the first selected record, or for
// the first record of the table when nothing is selected. No ORDER BY is
// applied; the first record is whatever the server returns first. Large
// selections are searched batch by batch in selection order.
func (w *Workspace) ReadFirst(ctx context.Context, t types.Table, fields []string) ([]interface{}, error) {
	ref, err := quoteTable(t)
	if err != nil {
		return nil, err
	}
	columns, err := sqlutil.QuoteIdentifierList(fields)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(fields))
	dest := make([]interface{}, len(fields))
	for i := range values {
		dest[i] = &values[i]
	}

	for _, chunk := range w.batches(w.selectedIDs(t)) {
		where, args := inClause(ref.id, chunk)
		query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", columns, ref.name, where)

		err := w.db.QueryRowContext(ctx, query, args...).Scan(dest...)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", t, err)
		}

		for i := range values {
			values[i] = types.NormalizeValue(values[i])
		}
		return values, nil
	}
	return nil, fmt.Errorf("%s: %w", t, types.ErrNoRecords)
}

// cursorRow is one record read by UpdateEachSelected.
type cursorRow struct {
	id     int64
	values []interface{}
}

// UpdateEachSelected rewrites fields on every selected record, or on every
// record when nothing is selected. The rows are read and the read cursor is
// closed before any UPDATE runs; all updates share one transaction.
func (w *Workspace) UpdateEachSelected(ctx context.Context, t types.Table, fields []string, fn transfer.UpdateFunc) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	ref, err := quoteTable(t)
	if err != nil {
		return 0, err
	}
	columns, err := sqlutil.QuoteIdentifierList(fields)
	if err != nil {
		return 0, err
	}

	rows, err := w.readRows(ctx, ref, columns, len(fields), w.selectedIDs(t))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", t, err)
	}

	quoted := strings.Split(columns, ", ")
	assignments := make([]string, len(quoted))
	for i, col := range quoted {
		assignments[i] = col + " = ?"
	}
	update := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", ref.name, strings.Join(assignments, ", "), ref.id)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var updated int64
	for _, row := range rows {
		newValues, err := fn(row.values)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", row.id, err)
		}
		if len(newValues) != len(fields) {
			return 0, fmt.Errorf("record %d: update returned %d values for %d fields", row.id, len(newValues), len(fields))
		}

		args := append(newValues[:len(newValues):len(newValues)], row.id)
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return 0, fmt.Errorf("failed to update record %d: %w", row.id, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit updates: %w", err)
	}

	w.logger.WithTable(t.Name).Debugw("Cursor updated records",
		"fields", fields,
		"records", updated,
	)
	return updated, nil
}

// readRows loads the identifier and the given columns of every row in ids
// (or the whole table), one batch at a time. Each batch's cursor is closed
// before the next query runs.
func (w *Workspace) readRows(ctx context.Context, ref tableRef, columns string, n int, ids []int64) ([]cursorRow, error) {
	var result []cursorRow
	for i, chunk := range w.batches(ids) {
		rows, err := w.readChunk(ctx, ref, columns, n, chunk)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
		result = append(result, rows...)
	}
	return result, nil
}

func (w *Workspace) readChunk(ctx context.Context, ref tableRef, columns string, n int, ids []int64) ([]cursorRow, error) {
	where, args := inClause(ref.id, ids)
	query := fmt.Sprintf("SELECT %s, %s FROM %s%s", ref.id, columns, ref.name, where)

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []cursorRow
	for rows.Next() {
		raw := make([]interface{}, n+1)
		dest := make([]interface{}, n+1)
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		id, err := types.ToInt64(raw[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read identifier: %w", err)
		}
		values := raw[1:]
		for i := range values {
			values[i] = types.NormalizeValue(values[i])
		}
		result = append(result, cursorRow{id: id, values: values})
	}
	return result, rows.Err()
}
