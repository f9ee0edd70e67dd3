// Package tablexmem is an in-memory tablex.Client. It enforces a declared
// column set per table so schema drift can be simulated, and it counts
// calls so tests can assert that no round trip happened.
package tablexmem

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/growindia/jobs/pkg/tablex"
)

// Hook runs before every operation; a non-nil error aborts it
type Hook func(ctx context.Context, op, table string) error

type table struct {
	columns map[string]struct{}
	rows    []tablex.Row
}

// Store is safe for concurrent use
type Store struct {
	mu     sync.Mutex
	tables map[string]*table
	calls  map[string]int
	hook   Hook
}

var _ tablex.Client = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		tables: make(map[string]*table),
		calls:  make(map[string]int),
	}
}

// CreateTable declares a table and its columns, replacing any previous one
func (s *Store) CreateTable(name string, columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &table{columns: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		t.columns[c] = struct{}{}
	}
	s.tables[name] = t
}

// DropColumn removes a column from the declared schema and from stored rows
func (s *Store) DropColumn(tableName, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return
	}
	delete(t.columns, column)
	for _, r := range t.rows {
		delete(r, column)
	}
}

// Seed appends rows directly, bypassing call counting
func (s *Store) Seed(tableName string, rows ...tablex.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return
	}
	for _, r := range rows {
		t.rows = append(t.rows, t.complete(r))
	}
}

// Rows returns a copy of every stored row of a table
func (s *Store) Rows(tableName string) []tablex.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]tablex.Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = maps.Clone(r)
	}
	return out
}

// SetHook installs a hook run before every operation
func (s *Store) SetHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

// Calls returns the total number of operations issued
func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// CallsFor returns the number of operations of one kind ("select", "insert", ...)
func (s *Store) CallsFor(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// ResetCalls zeroes the call counters
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *Store) begin(ctx context.Context, op, tableName string) (*table, error) {
	s.mu.Lock()
	s.calls[op]++
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, op, tableName); err != nil {
			return nil, err
		}
	}
	if err := tablex.FromContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	t, ok := s.tables[tableName]
	if !ok {
		s.mu.Unlock()
		return nil, &tablex.Error{Kind: tablex.KindNotFound, Code: "42P01", Message: "relation " + tableName + " does not exist"}
	}
	return t, nil
}

func (t *table) checkColumns(cols []string) error {
	for _, c := range cols {
		if _, ok := t.columns[c]; !ok {
			return &tablex.Error{
				Kind:    tablex.KindUnknownColumn,
				Column:  c,
				Code:    "42703",
				Message: "column " + c + " does not exist",
			}
		}
	}
	return nil
}

func (t *table) complete(r tablex.Row) tablex.Row {
	full := make(tablex.Row, len(t.columns))
	for c := range t.columns {
		full[c] = r[c]
	}
	return full
}

// Select implements tablex.Client
func (s *Store) Select(ctx context.Context, q tablex.Query) (*tablex.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	t, err := s.begin(ctx, "select", q.Table)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if err := t.checkColumns(q.ReferencedColumns()); err != nil {
		return nil, err
	}

	matched := make([]tablex.Row, 0, len(t.rows))
	for _, r := range t.rows {
		if matchAll(r, q.Where) {
			matched = append(matched, r)
		}
	}

	if len(q.Order) > 0 {
		slices.SortStableFunc(matched, func(a, b tablex.Row) int {
			return compareRows(a, b, q.Order)
		})
	}

	result := &tablex.Result{}
	if q.Count {
		result.Count = len(matched)
	}
	if q.Head {
		return result, nil
	}

	start := min(q.Offset, len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}

	result.Rows = make([]tablex.Row, 0, end-start)
	for _, r := range matched[start:end] {
		result.Rows = append(result.Rows, project(r, q.Columns))
	}
	return result, nil
}

// Insert implements tablex.Client
func (s *Store) Insert(ctx context.Context, tableName string, row tablex.Row) (tablex.Row, error) {
	t, err := s.begin(ctx, "insert", tableName)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if err := t.checkColumns(slices.Collect(maps.Keys(row))); err != nil {
		return nil, err
	}
	if id, ok := row["id"]; ok && id != nil {
		for _, existing := range t.rows {
			if existing["id"] == id {
				return nil, &tablex.Error{Kind: tablex.KindConflict, Code: "23505", Message: "duplicate key value violates unique constraint"}
			}
		}
	}

	stored := t.complete(row)
	if _, ok := t.columns["created_at"]; ok && stored["created_at"] == nil {
		stored["created_at"] = time.Now().UTC()
	}
	t.rows = append(t.rows, stored)
	return maps.Clone(stored), nil
}

// Update implements tablex.Client
func (s *Store) Update(ctx context.Context, tableName string, values tablex.Row, where []tablex.Condition) (int64, error) {
	if err := tablex.ValidateConditions(where); err != nil {
		return 0, err
	}
	t, err := s.begin(ctx, "update", tableName)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	if err := t.checkColumns(slices.Collect(maps.Keys(values))); err != nil {
		return 0, err
	}
	if err := t.checkColumns(conditionColumns(where)); err != nil {
		return 0, err
	}

	var n int64
	for _, r := range t.rows {
		if matchAll(r, where) {
			maps.Copy(r, values)
			n++
		}
	}
	return n, nil
}

// Delete implements tablex.Client
func (s *Store) Delete(ctx context.Context, tableName string, where []tablex.Condition) (int64, error) {
	if err := tablex.ValidateConditions(where); err != nil {
		return 0, err
	}
	t, err := s.begin(ctx, "delete", tableName)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	if err := t.checkColumns(conditionColumns(where)); err != nil {
		return 0, err
	}

	kept := t.rows[:0]
	var n int64
	for _, r := range t.rows {
		if matchAll(r, where) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return n, nil
}

func conditionColumns(conds []tablex.Condition) []string {
	return tablex.Query{Where: conds}.ReferencedColumns()
}

func project(r tablex.Row, cols []string) tablex.Row {
	if len(cols) == 0 {
		return maps.Clone(r)
	}
	out := make(tablex.Row, len(cols))
	for _, c := range cols {
		out[c] = r[c]
	}
	return out
}

func matchAll(r tablex.Row, conds []tablex.Condition) bool {
	for _, c := range conds {
		if !match(r, c) {
			return false
		}
	}
	return true
}

func match(r tablex.Row, c tablex.Condition) bool {
	if c.IsGroup() {
		for _, alt := range c.AnyOf {
			if match(r, alt) {
				return true
			}
		}
		return false
	}

	v := r[c.Column]
	switch c.Op {
	case tablex.OpIsNull:
		want, _ := c.Value.(bool)
		return (v == nil) == want
	case tablex.OpIn:
		if v == nil {
			return false
		}
		return slices.Contains(c.Value.([]string), r.String(c.Column))
	case tablex.OpILike:
		if v == nil {
			return false
		}
		return likeMatch(strings.ToLower(r.String(c.Column)), strings.ToLower(c.Value.(string)))
	}

	if v == nil || c.Value == nil {
		return false
	}
	cmp := compareValues(v, c.Value)
	switch c.Op {
	case tablex.OpEq:
		return cmp == 0
	case tablex.OpNeq:
		return cmp != 0
	case tablex.OpGte:
		return cmp >= 0
	case tablex.OpLte:
		return cmp <= 0
	}
	return false
}

// compareRows orders nulls the way PostgreSQL does: last ascending, first
// descending, unless NullsLast pins them to the end.
func compareRows(a, b tablex.Row, order []tablex.Order) int {
	for _, o := range order {
		av, bv := a[o.Column], b[o.Column]
		switch {
		case av == nil && bv == nil:
			continue
		case av == nil || bv == nil:
			nullFirst := av == nil
			last := o.NullsLast || !o.Desc
			if nullFirst == last {
				return 1
			}
			return -1
		}
		cmp := compareValues(av, bv)
		if o.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareValues(a, b any) int {
	ra, rb := tablex.Row{"v": a}, tablex.Row{"v": b}

	if at, ok := a.(time.Time); ok {
		return at.Compare(rb.Time("v"))
	}
	if bt, ok := b.(time.Time); ok {
		return ra.Time("v").Compare(bt)
	}

	if ab, ok := a.(bool); ok {
		bb := rb.Bool("v")
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}

	if _, isString := a.(string); !isString {
		if af, bf := ra.Float("v"), rb.Float("v"); af != nil && bf != nil {
			switch {
			case *af < *bf:
				return -1
			case *af > *bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(ra.String("v"), rb.String("v"))
}

// likeMatch implements LIKE semantics: % any run, _ any single rune, \ escapes.
func likeMatch(s, pattern string) bool {
	str, pat := []rune(s), []rune(pattern)

	var rec func(i, j int) bool
	memo := make(map[[2]int]bool)
	rec = func(i, j int) bool {
		key := [2]int{i, j}
		if v, ok := memo[key]; ok {
			return v
		}
		var res bool
		switch {
		case j == len(pat):
			res = i == len(str)
		case pat[j] == '%':
			res = rec(i, j+1) || (i < len(str) && rec(i+1, j))
		case pat[j] == '_':
			res = i < len(str) && rec(i+1, j+1)
		case pat[j] == '\\' && j+1 < len(pat):
			res = i < len(str) && str[i] == pat[j+1] && rec(i+1, j+2)
		default:
			res = i < len(str) && str[i] == pat[j] && rec(i+1, j+1)
		}
		memo[key] = res
		return res
	}
	return rec(0, 0)
}
