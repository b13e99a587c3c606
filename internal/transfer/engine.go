// Package transfer implements the attribute transfer engine: selection counting,
// one-to-many attribute copies, constant replacement and first-record selection
// over tables owned by an external store.
//
// The engine holds no table state. Every operation re-derives selection counts
// from the store, checks all preconditions before the first write, and then
// writes through the store's cursor one field at a time. Writes are not
// transactional across fields: a cursor error part way through leaves the
// fields already copied in place.
package transfer

import (
	"context"
	"fmt"

	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/types"
)

// SelectAll is returned by SelectionCount when every record of a table is selected.
const SelectAll int64 = -1

// Unbounded disables the maximum selection check when used as a MaxSelection option.
const Unbounded int64 = -1

// DefaultIDField is the identifier field used by SelectFirstRecord when the
// table handle does not name one.
const DefaultIDField = "OBJECTID"

// SelectionService reports and changes which records of a table are selected.
type SelectionService interface {
	// CountSelected returns the number of selected records, 0 without a selection.
	CountSelected(ctx context.Context, t types.Table) (int64, error)
	// CountTotal returns the number of records in the table, ignoring the selection.
	CountTotal(ctx context.Context, t types.Table) (int64, error)
	// SetSelection replaces the selection with the records matching p.
	SetSelection(ctx context.Context, t types.Table, p types.Predicate) error
	// ClearSelection empties the selection.
	ClearSelection(ctx context.Context, t types.Table) error
}

// UpdateFunc receives the current values of the cursor fields for one record
// and returns the values to write back, in the same order.
type UpdateFunc func(row []interface{}) ([]interface{}, error)

// CursorService reads and rewrites records. Both methods honour the table's
// selection: with no selection they operate on every record.
type CursorService interface {
	// ReadFirst returns the values of fields for the first record in store order.
	// It returns an error wrapping types.ErrNoRecords when there is none.
	ReadFirst(ctx context.Context, t types.Table, fields []string) ([]interface{}, error)
	// UpdateEachSelected applies fn to every selected record and returns the
	// number of records rewritten.
	UpdateEachSelected(ctx context.Context, t types.Table, fields []string, fn UpdateFunc) (int64, error)
}

// Store is a data store providing both collaborator services.
type Store interface {
	SelectionService
	CursorService
}

// Engine runs attribute transfer operations against a store.
type Engine struct {
	sel    SelectionService
	cur    CursorService
	logger *logger.Logger
}

// NewEngine creates an engine over the given selection and cursor services.
func NewEngine(sel SelectionService, cur CursorService, log *logger.Logger) (*Engine, error) {
	if sel == nil {
		return nil, fmt.Errorf("selection service is nil")
	}
	if cur == nil {
		return nil, fmt.Errorf("cursor service is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Engine{
		sel:    sel,
		cur:    cur,
		logger: log,
	}, nil
}

// NewStoreEngine creates an engine over a store implementing both services.
func NewStoreEngine(store Store, log *logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return NewEngine(store, store, log)
}

// SelectionCount returns the number of selected records in t: 0 when nothing is
// selected, SelectAll when the selected count equals the total record count,
// and the exact count otherwise.
//
// The total is the unfiltered record count of the table as reported by
// CountTotal. The total is only queried when something is selected.
func (e *Engine) SelectionCount(ctx context.Context, t types.Table) (int64, error) {
	selected, err := e.sel.CountSelected(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("failed to count selected records in %s: %w", t, err)
	}
	if selected == 0 {
		return 0, nil
	}

	total, err := e.sel.CountTotal(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("failed to count records in %s: %w", t, err)
	}
	if selected == total {
		return SelectAll, nil
	}
	return selected, nil
}

// selectedRecords returns the effective number of selected records, resolving
// SelectAll to the table's total record count.
func (e *Engine) selectedRecords(ctx context.Context, t types.Table) (int64, error) {
	count, err := e.SelectionCount(ctx, t)
	if err != nil {
		return 0, err
	}
	if count != SelectAll {
		return count, nil
	}

	total, err := e.sel.CountTotal(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("failed to count records in %s: %w", t, err)
	}
	return total, nil
}

// checkTargetSelection verifies that between 1 and limit records of t are
// selected and returns the effective count.
func (e *Engine) checkTargetSelection(ctx context.Context, t types.Table, role string, limit int64) (int64, error) {
	selected, err := e.selectedRecords(ctx, t)
	if err != nil {
		return 0, err
	}
	e.logger.WithTableRole(t.Name, role).Debugw("Selection checked",
		"selected", selected,
		"max", limit,
	)

	if selected < 1 {
		return selected, &SelectionCountError{
			Table:    t.Name,
			Role:     role,
			Selected: selected,
			Message:  "no records selected",
			Kind:     ErrSelectionCountMismatch,
		}
	}
	if limit != Unbounded && selected > limit {
		return selected, &SelectionCountError{
			Table:    t.Name,
			Role:     role,
			Selected: selected,
			Message:  fmt.Sprintf("number of selected records exceeds the maximum of %d", limit),
			Kind:     ErrSelectionCountExceeded,
		}
	}
	return selected, nil
}

// resetSelections clears the selection of every table in order.
func (e *Engine) resetSelections(ctx context.Context, tables ...types.Table) error {
	for _, t := range tables {
		if err := e.sel.ClearSelection(ctx, t); err != nil {
			return fmt.Errorf("failed to clear selection on %s: %w", t, err)
		}
	}
	return nil
}
