package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/gisadmin/internal/types"
)

// memStore is an in-memory Store used by the engine tests.
type memStore struct {
	tables map[string]*memTable

	updates      int    // UpdateEachSelected calls
	failOnField  string // UpdateEachSelected fails when this field is written
	failCountErr error  // returned by CountSelected when set
}

type memTable struct {
	fields   []string
	records  []map[string]interface{}
	selected map[int]bool // record index -> selected
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string]*memTable)}
}

// addTable registers a table whose records are given as field -> value maps.
func (s *memStore) addTable(name string, fields []string, records ...map[string]interface{}) types.Table {
	s.tables[name] = &memTable{fields: fields, records: records, selected: map[int]bool{}}
	return types.Table{Name: name, IDField: "OBJECTID"}
}

// selectIDs selects the records whose OBJECTID is in ids.
func (s *memStore) selectIDs(t types.Table, ids ...int64) {
	tbl := s.tables[t.Name]
	tbl.selected = map[int]bool{}
	for i, rec := range tbl.records {
		for _, id := range ids {
			if rec["OBJECTID"] == id {
				tbl.selected[i] = true
			}
		}
	}
}

func (s *memStore) value(t types.Table, id int64, field string) interface{} {
	for _, rec := range s.tables[t.Name].records {
		if rec["OBJECTID"] == id {
			return rec[field]
		}
	}
	return fmt.Sprintf("<missing record %d>", id)
}

func (s *memStore) table(t types.Table) (*memTable, error) {
	tbl, ok := s.tables[t.Name]
	if !ok {
		return nil, fmt.Errorf("table %q does not exist", t.Name)
	}
	return tbl, nil
}

func (tbl *memTable) hasField(field string) bool {
	for _, f := range tbl.fields {
		if f == field {
			return true
		}
	}
	return false
}

// cursorRows returns record indexes visible to a cursor: the selection, or
// every record when nothing is selected.
func (tbl *memTable) cursorRows() []int {
	var rows []int
	for i := range tbl.records {
		if len(tbl.selected) == 0 || tbl.selected[i] {
			rows = append(rows, i)
		}
	}
	return rows
}

func (s *memStore) CountSelected(ctx context.Context, t types.Table) (int64, error) {
	if s.failCountErr != nil {
		return 0, s.failCountErr
	}
	tbl, err := s.table(t)
	if err != nil {
		return 0, err
	}
	return int64(len(tbl.selected)), nil
}

func (s *memStore) CountTotal(ctx context.Context, t types.Table) (int64, error) {
	tbl, err := s.table(t)
	if err != nil {
		return 0, err
	}
	return int64(len(tbl.records)), nil
}

func (s *memStore) SetSelection(ctx context.Context, t types.Table, p types.Predicate) error {
	tbl, err := s.table(t)
	if err != nil {
		return err
	}
	tbl.selected = map[int]bool{}
	for i, rec := range tbl.records {
		if p.All() {
			tbl.selected[i] = true
			continue
		}
		for _, v := range p.Values {
			if rec[p.Field] == v {
				tbl.selected[i] = true
			}
		}
	}
	return nil
}

func (s *memStore) ClearSelection(ctx context.Context, t types.Table) error {
	tbl, err := s.table(t)
	if err != nil {
		return err
	}
	tbl.selected = map[int]bool{}
	return nil
}

func (s *memStore) ReadFirst(ctx context.Context, t types.Table, fields []string) ([]interface{}, error) {
	tbl, err := s.table(t)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if !tbl.hasField(f) {
			return nil, fmt.Errorf("unknown field %q", f)
		}
	}
	rows := tbl.cursorRows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", t.Name, types.ErrNoRecords)
	}
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		out[i] = tbl.records[rows[0]][f]
	}
	return out, nil
}

func (s *memStore) UpdateEachSelected(ctx context.Context, t types.Table, fields []string, fn UpdateFunc) (int64, error) {
	tbl, err := s.table(t)
	if err != nil {
		return 0, err
	}
	s.updates++
	for _, f := range fields {
		if !tbl.hasField(f) {
			return 0, fmt.Errorf("unknown field %q", f)
		}
		if f == s.failOnField {
			return 0, errors.New("cursor failure")
		}
	}

	var n int64
	for _, i := range tbl.cursorRows() {
		current := make([]interface{}, len(fields))
		for j, f := range fields {
			current[j] = tbl.records[i][f]
		}
		updated, err := fn(current)
		if err != nil {
			return n, err
		}
		for j, f := range fields {
			tbl.records[i][f] = updated[j]
		}
		n++
	}
	return n, nil
}

var _ Store = (*memStore)(nil)
