// Package workspace implements the table stores used by gisadmin on top of a
// MySQL workspace database.
//
// A Workspace keeps one selection per table, the way a desktop map keeps a
// selection per layer. A selection is an insertion-ordered set of identifier
// values. Counts and cursors always go back to the database, so rows deleted
// since the selection was made are not counted.
package workspace

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/sqlutil"
	"github.com/dbsmedya/gisadmin/internal/transfer"
	"github.com/dbsmedya/gisadmin/internal/types"
)

// DefaultAliasTable stores field aliases when no other table is configured.
const DefaultAliasTable = "gis_field_alias"

// DefaultBatchSize is the most identifiers bound into one IN (...) list.
// MySQL rejects prepared statements with more than 65535 placeholders.
const DefaultBatchSize = 1000

type selectionSet = orderedmap.OrderedMap[int64, struct{}]

// Workspace is a MySQL backed table store.
type Workspace struct {
	db         *sql.DB
	schema     string
	aliasTable string
	batchSize  int
	logger     *logger.Logger

	mu         sync.Mutex
	selections map[string]*selectionSet
}

// New creates a workspace over db. schema is the database name used for
// information_schema lookups.
func New(db *sql.DB, schema, aliasTable string, log *logger.Logger) (*Workspace, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if schema == "" {
		return nil, fmt.Errorf("workspace schema is required")
	}
	if aliasTable == "" {
		aliasTable = DefaultAliasTable
	}
	if !sqlutil.IsValidIdentifier(aliasTable) {
		return nil, &sqlutil.InvalidIdentifierError{Name: aliasTable}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Workspace{
		db:         db,
		schema:     schema,
		aliasTable: aliasTable,
		batchSize:  DefaultBatchSize,
		logger:     log,
		selections: make(map[string]*selectionSet),
	}, nil
}

// Schema returns the workspace database name.
func (w *Workspace) Schema() string {
	return w.schema
}

// SetBatchSize sets how many identifiers go into one IN (...) list.
// Non-positive values restore DefaultBatchSize.
func (w *Workspace) SetBatchSize(n int) {
	if n <= 0 {
		n = DefaultBatchSize
	}
	w.batchSize = n
}

// tableRef holds the quoted identifiers of a table handle.
type tableRef struct {
	name string
	id   string
}

func quoteTable(t types.Table) (tableRef, error) {
	idField := t.IDField
	if idField == "" {
		idField = transfer.DefaultIDField
	}

	name, err := sqlutil.QuoteIdentifierSafe(t.Name)
	if err != nil {
		return tableRef{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	id, err := sqlutil.QuoteIdentifierSafe(idField)
	if err != nil {
		return tableRef{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return tableRef{name: name, id: id}, nil
}

// selectedIDs returns a copy of the table's selection in insertion order.
func (w *Workspace) selectedIDs(t types.Table) []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	set, ok := w.selections[t.Name]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, set.Len())
	for el := set.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key)
	}
	return ids
}

// chunkIDs splits ids into consecutive slices of at most size identifiers.
func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

// batches returns the IN lists a statement over ids runs with. No selection
// is a single batch without a WHERE clause.
func (w *Workspace) batches(ids []int64) [][]int64 {
	if len(ids) == 0 {
		return [][]int64{nil}
	}
	return chunkIDs(ids, w.batchSize)
}

// inClause returns " WHERE id IN (?, ...)" and its arguments for ids, or an
// empty clause when ids is empty.
func inClause(column string, ids []int64) (string, []interface{}) {
	if len(ids) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(" WHERE %s IN (%s)", column, sqlutil.Placeholders(len(ids))), args
}

// CountSelected returns how many selected records still exist in the table.
// It does not query the database when nothing is selected. Large selections
// are counted in batches and summed.
func (w *Workspace) CountSelected(ctx context.Context, t types.Table) (int64, error) {
	ids := w.selectedIDs(t)
	if len(ids) == 0 {
		return 0, nil
	}

	ref, err := quoteTable(t)
	if err != nil {
		return 0, err
	}

	var total int64
	for i, chunk := range chunkIDs(ids, w.batchSize) {
		where, args := inClause(ref.id, chunk)

		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", ref.name, where)
		if err := w.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to count selected records (batch %d): %w", i+1, err)
		}
		total += count
	}
	return total, nil
}

// CountTotal returns the number of records in the table.
func (w *Workspace) CountTotal(ctx context.Context, t types.Table) (int64, error) {
	ref, err := quoteTable(t)
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", ref.name)
	if err := w.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// SetSelection replaces the table's selection with the records matching p.
// A predicate with no values selects nothing.
func (w *Workspace) SetSelection(ctx context.Context, t types.Table, p types.Predicate) error {
	ref, err := quoteTable(t)
	if err != nil {
		return err
	}

	base := fmt.Sprintf("SELECT %s FROM %s", ref.id, ref.name)
	set := orderedmap.NewOrderedMap[int64, struct{}]()

	if p.All() {
		if err := w.scanIDs(ctx, t, set, base, nil); err != nil {
			return fmt.Errorf("failed to select %s: %w", p, err)
		}
	} else {
		field, err := sqlutil.QuoteIdentifierSafe(p.Field)
		if err != nil {
			return err
		}
		if len(p.Values) == 0 {
			return w.ClearSelection(ctx, t)
		}
		for i := 0; i < len(p.Values); i += w.batchSize {
			end := i + w.batchSize
			if end > len(p.Values) {
				end = len(p.Values)
			}
			chunk := p.Values[i:end]
			query := fmt.Sprintf("%s WHERE %s IN (%s)", base, field, sqlutil.Placeholders(len(chunk)))
			if err := w.scanIDs(ctx, t, set, query, chunk); err != nil {
				return fmt.Errorf("failed to select %s: %w", p, err)
			}
		}
	}

	w.mu.Lock()
	w.selections[t.Name] = set
	w.mu.Unlock()

	w.logger.WithTable(t.Name).Debugw("Selection replaced",
		"predicate", p.String(),
		"selected", set.Len(),
	)
	return nil
}

// scanIDs runs a single-column identifier query and adds the ids to set.
func (w *Workspace) scanIDs(ctx context.Context, t types.Table, set *selectionSet, query string, args []interface{}) error {
	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var raw interface{}
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("failed to scan identifier: %w", err)
		}
		id, err := types.ToInt64(raw)
		if err != nil {
			return fmt.Errorf("failed to read identifier of %s: %w", t, err)
		}
		set.Set(id, struct{}{})
	}
	return rows.Err()
}

// ClearSelection drops the table's selection.
func (w *Workspace) ClearSelection(ctx context.Context, t types.Table) error {
	w.mu.Lock()
	delete(w.selections, t.Name)
	w.mu.Unlock()
	return nil
}

var (
	_ transfer.Store = (*Workspace)(nil)
)
