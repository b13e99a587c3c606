package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/gisadmin/internal/types"
)

// Update methods accepted by UpdateRecordsFrom.
const (
	MethodOneToOne  = "1:1"
	MethodOneToMany = "1:m"
)

// TransferOptions configures TransferAttributes.
type TransferOptions struct {
	// OutputFields are the destination fields, aligned with the input fields.
	// Nil means the input field names are used for both tables.
	OutputFields []string
	// ResetSelection clears both selections after a successful copy.
	ResetSelection bool
	// MaxSelection caps the number of selected destination records.
	MaxSelection int64
}

// DefaultTransferOptions returns options that copy to same-named fields on a
// single destination record and reset both selections afterwards.
func DefaultTransferOptions() TransferOptions {
	return TransferOptions{
		ResetSelection: true,
		MaxSelection:   1,
	}
}

// FieldTransfer records one copied field pair.
type FieldTransfer struct {
	Input   string
	Output  string
	Value   interface{}
	Records int64
}

// TransferResult summarises a TransferAttributes run.
type TransferResult struct {
	Source      string
	Destination string
	Selected    int64 // destination records selected when the copy started
	Fields      []FieldTransfer
	Duration    time.Duration
}

// TransferAttributes copies the values of inFields from the single selected
// record of src to every selected record of dst.
//
// Preconditions are checked in order before anything is written: exactly one
// source record selected, at least one destination record selected, no more
// than opts.MaxSelection destination records selected, and input and output
// field lists of equal length.
func (e *Engine) TransferAttributes(ctx context.Context, src, dst types.Table, inFields []string, opts TransferOptions) (*TransferResult, error) {
	startTime := time.Now()
	log := e.logger.WithOperation("transfer")

	outFields := opts.OutputFields
	if outFields == nil {
		outFields = inFields
	}

	srcSelected, err := e.selectedRecords(ctx, src)
	if err != nil {
		return nil, err
	}
	log.WithTableRole(src.Name, "input").Debugw("Selection checked", "selected", srcSelected)
	if srcSelected != 1 {
		return nil, &SelectionCountError{
			Table:    src.Name,
			Role:     "input",
			Selected: srcSelected,
			Message:  "exactly one record must be selected",
			Kind:     ErrSelectionCountMismatch,
		}
	}

	dstSelected, err := e.checkTargetSelection(ctx, dst, "output", opts.MaxSelection)
	if err != nil {
		return nil, err
	}

	if len(inFields) != len(outFields) {
		return nil, &FieldListMismatchError{Input: len(inFields), Output: len(outFields)}
	}

	log.Infow("Transferring attributes",
		"source", src.Name,
		"destination", dst.Name,
		"fields", len(inFields),
		"selected", dstSelected,
	)

	result := &TransferResult{
		Source:      src.Name,
		Destination: dst.Name,
		Selected:    dstSelected,
		Fields:      make([]FieldTransfer, 0, len(inFields)),
	}

	for i := range inFields {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("transfer interrupted: %w", err)
		}

		ft, err := e.copyField(ctx, src, dst, inFields[i], outFields[i])
		if err != nil {
			return result, err
		}
		result.Fields = append(result.Fields, ft)

		log.Debugw("Copied field",
			"input", ft.Input,
			"output", ft.Output,
			"records", ft.Records,
		)
	}

	if opts.ResetSelection {
		if err := e.resetSelections(ctx, src, dst); err != nil {
			return result, err
		}
	}

	result.Duration = time.Since(startTime)
	log.Infow("Transfer complete",
		"fields", len(result.Fields),
		"duration", result.Duration,
	)
	return result, nil
}

// copyField reads one value from the selected source record and broadcasts it
// to every selected destination record. Each cursor is closed before the next opens.
func (e *Engine) copyField(ctx context.Context, src, dst types.Table, in, out string) (FieldTransfer, error) {
	ft := FieldTransfer{Input: in, Output: out}

	row, err := e.cur.ReadFirst(ctx, src, []string{in})
	if err != nil {
		return ft, fmt.Errorf("failed to read %s.%s: %w", src, in, err)
	}
	if len(row) != 1 {
		return ft, fmt.Errorf("failed to read %s.%s: cursor returned %d values", src, in, len(row))
	}
	ft.Value = row[0]

	n, err := e.cur.UpdateEachSelected(ctx, dst, []string{out}, func(current []interface{}) ([]interface{}, error) {
		return []interface{}{ft.Value}, nil
	})
	if err != nil {
		return ft, fmt.Errorf("failed to write %s.%s: %w", dst, out, err)
	}
	ft.Records = n
	return ft, nil
}

// UpdateRecordsFrom copies attributes from src to dst using the named method.
//
// MethodOneToMany broadcasts the single selected source record to every
// selected destination record without a selection cap and leaves both
// selections in place. MethodOneToOne only verifies that both tables have the
// same number of selected records; pairing records is not supported and it
// always fails with ErrNotImplemented.
func (e *Engine) UpdateRecordsFrom(ctx context.Context, src, dst types.Table, mapping FieldMapping, method string) (*TransferResult, error) {
	switch method {
	case MethodOneToOne:
		srcSelected, err := e.selectedRecords(ctx, src)
		if err != nil {
			return nil, err
		}
		dstSelected, err := e.selectedRecords(ctx, dst)
		if err != nil {
			return nil, err
		}
		if srcSelected != dstSelected {
			return nil, &SelectionCountError{
				Table:    dst.Name,
				Role:     "output",
				Selected: dstSelected,
				Message:  fmt.Sprintf("1:1 update requires the same selection count as input table %q (%d)", src.Name, srcSelected),
				Kind:     ErrSelectionCountMismatch,
			}
		}
		return nil, fmt.Errorf("%s update: %w", MethodOneToOne, ErrNotImplemented)

	case MethodOneToMany:
		opts := TransferOptions{
			OutputFields:   mapping.Output,
			ResetSelection: false,
			MaxSelection:   Unbounded,
		}
		return e.TransferAttributes(ctx, src, dst, mapping.Input, opts)

	default:
		return nil, &InvalidMethodError{Method: method}
	}
}
