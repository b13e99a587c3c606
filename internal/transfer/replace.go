package transfer

import (
	"context"
	"fmt"

	"github.com/dbsmedya/gisadmin/internal/types"
)

// ReplaceOptions configures ReplaceAttributes.
type ReplaceOptions struct {
	// Value is written to every listed field. Nil writes NULL.
	Value interface{}
	// ResetSelection clears the selection after a successful replace.
	ResetSelection bool
	// MaxSelection caps the number of selected records.
	MaxSelection int64
}

// DefaultReplaceOptions returns options that clear fields to NULL on a single
// selected record and reset the selection afterwards.
func DefaultReplaceOptions() ReplaceOptions {
	return ReplaceOptions{
		Value:          nil,
		ResetSelection: true,
		MaxSelection:   1,
	}
}

// ReplaceResult summarises a ReplaceAttributes run.
type ReplaceResult struct {
	Table   string
	Fields  []string
	Value   interface{}
	Records int64
}

// ReplaceAttributes sets every field in fields, on every selected record of t,
// to opts.Value. The value goes through the cursor as a plain parameter, so
// applying the same replacement twice leaves the same state.
func (e *Engine) ReplaceAttributes(ctx context.Context, t types.Table, fields []string, opts ReplaceOptions) (*ReplaceResult, error) {
	log := e.logger.WithOperation("replace").WithTable(t.Name)

	selected, err := e.checkTargetSelection(ctx, t, "target", opts.MaxSelection)
	if err != nil {
		return nil, err
	}

	result := &ReplaceResult{
		Table:  t.Name,
		Fields: fields,
		Value:  opts.Value,
	}

	if len(fields) > 0 {
		log.Infow("Replacing attributes",
			"fields", fields,
			"value", opts.Value,
			"selected", selected,
		)

		values := make([]interface{}, len(fields))
		for i := range values {
			values[i] = opts.Value
		}

		n, err := e.cur.UpdateEachSelected(ctx, t, fields, func(current []interface{}) ([]interface{}, error) {
			return values, nil
		})
		if err != nil {
			return result, fmt.Errorf("failed to replace fields on %s: %w", t, err)
		}
		result.Records = n
	} else {
		log.Warn("No fields given, nothing to replace")
	}

	if opts.ResetSelection {
		if err := e.resetSelections(ctx, t); err != nil {
			return result, err
		}
	}

	return result, nil
}

// SelectFirstRecord reads idField from the first record the cursor returns and
// makes a new selection of the records whose idField equals that value. The
// store's default order decides which record is first. idField must hold
// unique values; this is not checked. An empty idField falls back to the
// table's IDField and then to DefaultIDField.
func (e *Engine) SelectFirstRecord(ctx context.Context, t types.Table, idField string) (interface{}, error) {
	if idField == "" {
		idField = t.IDField
	}
	if idField == "" {
		idField = DefaultIDField
	}

	row, err := e.cur.ReadFirst(ctx, t, []string{idField})
	if err != nil {
		return nil, fmt.Errorf("failed to read first record of %s: %w", t, err)
	}
	if len(row) != 1 {
		return nil, fmt.Errorf("failed to read first record of %s: cursor returned %d values", t, len(row))
	}
	id := row[0]

	if err := e.sel.SetSelection(ctx, t, types.Equals(idField, id)); err != nil {
		return nil, fmt.Errorf("failed to select %s = %v on %s: %w", idField, id, t, err)
	}

	e.logger.WithOperation("select-first").WithTable(t.Name).Debugw("Selected first record",
		"field", idField,
		"value", id,
	)
	return id, nil
}
