// Package tablex describes table-scoped reads and writes against a remote
// relational store without tying callers to a transport. Implementations
// live in the tablexpg (PostgreSQL), tablexrest (PostgREST over HTTP) and
// tablexmem (in-memory) subpackages.
package tablex

import (
	"context"
	"regexp"
)

// Op is a comparison operator in a Condition
type Op string

const (
	OpEq     Op = "eq"
	OpNeq    Op = "neq"
	OpGte    Op = "gte"
	OpLte    Op = "lte"
	OpILike  Op = "ilike"   // Value is a LIKE pattern; % and _ are wildcards, \ escapes
	OpIn     Op = "in"      // Value is []string
	OpIsNull Op = "is_null" // Value true means IS NULL, false means IS NOT NULL
)

// Condition is a single predicate, or an OR group when AnyOf is set
type Condition struct {
	Column string
	Op     Op
	Value  any
	AnyOf  []Condition
}

// Eq is shorthand for an equality predicate
func Eq(column string, value any) Condition {
	return Condition{Column: column, Op: OpEq, Value: value}
}

// ILike is shorthand for a case-insensitive pattern predicate
func ILike(column, pattern string) Condition {
	return Condition{Column: column, Op: OpILike, Value: pattern}
}

// In is shorthand for a membership predicate
func In(column string, values []string) Condition {
	return Condition{Column: column, Op: OpIn, Value: values}
}

// Or groups conditions so that any of them may match
func Or(conds ...Condition) Condition {
	return Condition{AnyOf: conds}
}

// IsGroup reports whether c is an OR group
func (c Condition) IsGroup() bool {
	return len(c.AnyOf) > 0
}

// Order is one sort key
type Order struct {
	Column    string
	Desc      bool
	NullsLast bool
}

// Query is a select against one table. Limit 0 means no limit.
// With Count set the result carries the number of matching rows regardless
// of Offset and Limit; with Head also set no rows are returned.
type Query struct {
	Table   string
	Columns []string
	Where   []Condition
	Order   []Order
	Offset  int
	Limit   int
	Count   bool
	Head    bool
}

// Row is a single record keyed by column name
type Row map[string]any

// Result is the outcome of a select
type Result struct {
	Rows  []Row
	Count int
}

// Client is the table-scoped capability of the remote store
type Client interface {
	Select(ctx context.Context, q Query) (*Result, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, values Row, where []Condition) (int64, error)
	Delete(ctx context.Context, table string, where []Condition) (int64, error)
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent reports whether name is safe to use as a table or column name
func ValidIdent(name string) bool {
	return identPattern.MatchString(name)
}

// ReferencedColumns collects every column name referenced by the query
func (q Query) ReferencedColumns() []string {
	cols := append([]string{}, q.Columns...)
	var walk func([]Condition)
	walk = func(conds []Condition) {
		for _, c := range conds {
			if c.IsGroup() {
				walk(c.AnyOf)
				continue
			}
			cols = append(cols, c.Column)
		}
	}
	walk(q.Where)
	for _, o := range q.Order {
		cols = append(cols, o.Column)
	}
	return cols
}

// Validate checks identifiers and operator shapes before a query is sent
func (q Query) Validate() error {
	if !ValidIdent(q.Table) {
		return Errorf(KindInvalid, "invalid table name %q", q.Table)
	}
	for _, c := range q.ReferencedColumns() {
		if !ValidIdent(c) {
			return Errorf(KindInvalid, "invalid column name %q", c)
		}
	}
	if q.Offset < 0 || q.Limit < 0 {
		return Errorf(KindInvalid, "negative offset or limit")
	}
	return ValidateConditions(q.Where)
}

// ValidateConditions checks a WHERE list
func ValidateConditions(conds []Condition) error {
	for _, c := range conds {
		if c.IsGroup() {
			if err := ValidateConditions(c.AnyOf); err != nil {
				return err
			}
			continue
		}
		if !ValidIdent(c.Column) {
			return Errorf(KindInvalid, "invalid column name %q", c.Column)
		}
		switch c.Op {
		case OpEq, OpNeq, OpGte, OpLte, OpIsNull:
		case OpILike:
			if _, ok := c.Value.(string); !ok {
				return Errorf(KindInvalid, "ilike on %s needs a string pattern", c.Column)
			}
		case OpIn:
			if _, ok := c.Value.([]string); !ok {
				return Errorf(KindInvalid, "in on %s needs a []string", c.Column)
			}
		default:
			return Errorf(KindInvalid, "unsupported operator %q", c.Op)
		}
	}
	return nil
}
