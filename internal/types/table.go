// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Table is an opaque handle to a table in the workspace. It carries no state;
// selections and records live in the store that owns the table.
type Table struct {
	Name    string // table name in the workspace
	IDField string // unique identifier field
}

func (t Table) String() string {
	return t.Name
}

// Predicate selects the rows whose Field value is one of Values.
// The zero Predicate matches every row.
type Predicate struct {
	Field  string
	Values []interface{}
}

// All reports whether the predicate matches every row.
func (p Predicate) All() bool {
	return p.Field == ""
}

// Equals returns a predicate matching rows where field equals value.
func Equals(field string, value interface{}) Predicate {
	return Predicate{Field: field, Values: []interface{}{value}}
}

func (p Predicate) String() string {
	if p.All() {
		return "<all>"
	}
	if len(p.Values) == 1 {
		return fmt.Sprintf("%s = %v", p.Field, p.Values[0])
	}
	return fmt.Sprintf("%s IN %v", p.Field, p.Values)
}

// ParsePredicate parses a selection expression of the form "field=v1,v2".
// "all" (any case) selects every row. Values are passed to the store as
// strings and compared by the database.
func ParsePredicate(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if strings.EqualFold(expr, "all") {
		return Predicate{}, nil
	}

	field, list, ok := strings.Cut(expr, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return Predicate{}, fmt.Errorf("invalid selection %q: expected field=value[,value...] or all", expr)
	}

	var values []interface{}
	for _, v := range strings.Split(list, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Predicate{}, fmt.Errorf("invalid selection %q: no values given", expr)
	}
	return Predicate{Field: field, Values: values}, nil
}

// ErrNoRecords is returned by cursor reads that find no row to return.
var ErrNoRecords = errors.New("no records")
