// Package fields renames statistics fields produced by summary and dissolve
// tools back to their source names, e.g. SUM_Pop -> Pop.
package fields

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/types"
)

// StatsPrefixes are the field name prefixes added by statistics tools, in the
// order they are tried.
var StatsPrefixes = []string{
	"SUM_", "MEAN_", "MIN_", "MAX_", "RANGE_", "STD_", "COUNT_",
	"FIRST_", "LAST_", "MEDIAN_", "VARIANCE_", "UNIQUE_", "CONCATENATE_",
}

// FieldService lists and renames the fields of a table.
type FieldService interface {
	ListFields(ctx context.Context, t types.Table) ([]string, error)
	// RenameField renames oldName to newName. A non-empty alias is recorded
	// as the display alias of the renamed field.
	RenameField(ctx context.Context, t types.Table, oldName, newName, alias string) error
}

// Rename is one planned or applied field rename.
type Rename struct {
	Old   string
	New   string
	Alias string // empty when the alias is left alone
}

// ConflictError reports renames whose new name is already taken.
type ConflictError struct {
	Table     string
	Conflicts map[string]string // old name -> taken new name
}

func (e *ConflictError) Error() string {
	olds := make([]string, 0, len(e.Conflicts))
	for old := range e.Conflicts {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	pairs := make([]string, len(olds))
	for i, old := range olds {
		pairs[i] = old + " -> " + e.Conflicts[old]
	}
	return fmt.Sprintf("table %s: renamed fields would collide: %s", e.Table, strings.Join(pairs, ", "))
}

// StripStatsPrefix removes the first matching statistics prefix from name.
// It reports false when name has no prefix or would be left empty.
func StripStatsPrefix(name string) (string, bool) {
	for _, prefix := range StatsPrefixes {
		if strings.HasPrefix(name, prefix) {
			stripped := strings.TrimPrefix(name, prefix)
			if stripped == "" {
				return name, false
			}
			return stripped, true
		}
	}
	return name, false
}

// Options configures ResetStatsFields.
type Options struct {
	// Fields limits the renames to these fields. Nil means every field.
	Fields []string
	// SetAlias also sets the alias of each renamed field to its new name.
	SetAlias bool
	// DryRun plans the renames without applying them.
	DryRun bool
}

// Renamer strips statistics prefixes from table fields.
type Renamer struct {
	svc    FieldService
	logger *logger.Logger
}

// NewRenamer creates a Renamer over svc.
func NewRenamer(svc FieldService, log *logger.Logger) (*Renamer, error) {
	if svc == nil {
		return nil, fmt.Errorf("field service is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Renamer{svc: svc, logger: log}, nil
}

// Plan returns the renames ResetStatsFields would apply. Fields listed in
// opts.Fields must exist in the table. A rename onto a name that exists or
// that another rename produces is a ConflictError.
func (r *Renamer) Plan(ctx context.Context, t types.Table, opts Options) ([]Rename, error) {
	existing, err := r.svc.ListFields(ctx, t)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = true
	}

	candidates := opts.Fields
	if candidates == nil {
		candidates = existing
	} else {
		for _, name := range candidates {
			if !taken[strings.ToLower(name)] {
				return nil, fmt.Errorf("table %s has no field %q", t, name)
			}
		}
	}

	var plan []Rename
	conflicts := make(map[string]string)
	for _, name := range candidates {
		newName, ok := StripStatsPrefix(name)
		if !ok {
			continue
		}
		// MySQL column names are case-insensitive.
		key := strings.ToLower(newName)
		if taken[key] {
			conflicts[name] = newName
			continue
		}
		taken[key] = true

		rn := Rename{Old: name, New: newName}
		if opts.SetAlias {
			rn.Alias = newName
		}
		plan = append(plan, rn)
	}

	if len(conflicts) > 0 {
		return nil, &ConflictError{Table: t.Name, Conflicts: conflicts}
	}
	return plan, nil
}

// ResetStatsFields renames every statistics field of t to its source name and
// returns the renames in field order. Renames run one at a time; on failure
// the renames already applied are returned with the error.
func (r *Renamer) ResetStatsFields(ctx context.Context, t types.Table, opts Options) ([]Rename, error) {
	log := r.logger.WithOperation("rename-stats").WithTable(t.Name)

	plan, err := r.Plan(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		log.Info("No statistics fields to rename")
		return nil, nil
	}
	if opts.DryRun {
		log.Infow("Dry run, fields not renamed", "renames", len(plan))
		return plan, nil
	}

	applied := make([]Rename, 0, len(plan))
	for _, rn := range plan {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := r.svc.RenameField(ctx, t, rn.Old, rn.New, rn.Alias); err != nil {
			return applied, err
		}
		applied = append(applied, rn)
		log.Debugw("Renamed field", "from", rn.Old, "to", rn.New)
	}

	log.Infow("Statistics fields renamed", "renames", len(applied))
	return applied, nil
}
