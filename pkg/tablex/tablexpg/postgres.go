// Package tablexpg implements tablex.Client on PostgreSQL through sqlx
package tablexpg

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"slices"
	"strings"

	"github.com/growindia/jobs/pkg/tablex"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Client implements tablex.Client using PostgreSQL
type Client struct {
	db *sqlx.DB
}

var _ tablex.Client = (*Client)(nil)

// New creates a PostgreSQL table client
func New(db *sqlx.DB) *Client {
	return &Client{db: db}
}

// ============================================================================
// Client Implementation
// ============================================================================

// Select runs the count and/or row query described by q
func (c *Client) Select(ctx context.Context, q tablex.Query) (*tablex.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &tablex.Result{}

	if q.Count {
		countQuery, args := buildCount(q)
		if err := c.db.GetContext(ctx, &result.Count, countQuery, args...); err != nil {
			return nil, mapError(ctx, err, "count "+q.Table)
		}
	}

	if q.Head {
		return result, nil
	}

	query, args := buildSelect(q)
	rows, err := c.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(ctx, err, "select "+q.Table)
	}
	defer rows.Close()

	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, mapError(ctx, err, "scan "+q.Table)
		}
		result.Rows = append(result.Rows, tablex.Row(row))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(ctx, err, "iterate "+q.Table)
	}

	return result, nil
}

// Insert writes one row and returns it as stored
func (c *Client) Insert(ctx context.Context, table string, row tablex.Row) (tablex.Row, error) {
	query, args, err := buildInsert(table, row)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]any)
	if err := c.db.QueryRowxContext(ctx, query, args...).MapScan(stored); err != nil {
		return nil, mapError(ctx, err, "insert "+table)
	}
	return tablex.Row(stored), nil
}

// Update sets values on every row matching where
func (c *Client) Update(ctx context.Context, table string, values tablex.Row, where []tablex.Condition) (int64, error) {
	query, args, err := buildUpdate(table, values, where)
	if err != nil {
		return 0, err
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(ctx, err, "update "+table)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, mapError(ctx, err, "rows affected "+table)
	}
	return rows, nil
}

// Delete removes every row matching where
func (c *Client) Delete(ctx context.Context, table string, where []tablex.Condition) (int64, error) {
	query, args, err := buildDelete(table, where)
	if err != nil {
		return 0, err
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(ctx, err, "delete "+table)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, mapError(ctx, err, "rows affected "+table)
	}
	return rows, nil
}

// ============================================================================
// SQL Building
// ============================================================================

type argList struct {
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

func buildWhere(conds []tablex.Condition, args *argList) string {
	if len(conds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, buildCondition(c, args))
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

func buildCondition(c tablex.Condition, args *argList) string {
	if c.IsGroup() {
		alts := make([]string, 0, len(c.AnyOf))
		for _, alt := range c.AnyOf {
			alts = append(alts, buildCondition(alt, args))
		}
		return "(" + strings.Join(alts, " OR ") + ")"
	}

	col := pq.QuoteIdentifier(c.Column)
	switch c.Op {
	case tablex.OpEq:
		return col + " = " + args.add(c.Value)
	case tablex.OpNeq:
		return col + " <> " + args.add(c.Value)
	case tablex.OpGte:
		return col + " >= " + args.add(c.Value)
	case tablex.OpLte:
		return col + " <= " + args.add(c.Value)
	case tablex.OpILike:
		return col + " ILIKE " + args.add(c.Value)
	case tablex.OpIn:
		return col + " = ANY(" + args.add(pq.Array(c.Value)) + ")"
	case tablex.OpIsNull:
		if isNull, _ := c.Value.(bool); isNull {
			return col + " IS NULL"
		}
		return col + " IS NOT NULL"
	}
	// unreachable after Validate
	return "FALSE"
}

func buildColumns(cols []string) string {
	if len(cols) == 0 {
		return "*"
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

func buildOrder(order []tablex.Order) string {
	if len(order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(order))
	for _, o := range order {
		part := pq.QuoteIdentifier(o.Column)
		if o.Desc {
			part += " DESC"
		} else {
			part += " ASC"
		}
		if o.NullsLast {
			part += " NULLS LAST"
		}
		parts = append(parts, part)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func buildCount(q tablex.Query) (string, []any) {
	args := &argList{}
	query := "SELECT COUNT(*) FROM " + pq.QuoteIdentifier(q.Table) + buildWhere(q.Where, args)
	return query, args.args
}

func buildSelect(q tablex.Query) (string, []any) {
	args := &argList{}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(buildColumns(q.Columns))
	b.WriteString(" FROM ")
	b.WriteString(pq.QuoteIdentifier(q.Table))
	b.WriteString(buildWhere(q.Where, args))
	b.WriteString(buildOrder(q.Order))
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + args.add(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET " + args.add(q.Offset))
	}
	return b.String(), args.args
}

func sortedKeys(row tablex.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func buildInsert(table string, row tablex.Row) (string, []any, error) {
	if !tablex.ValidIdent(table) {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "invalid table name %q", table)
	}
	if len(row) == 0 {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "insert into %s without values", table)
	}

	args := &argList{}
	cols := sortedKeys(row)
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		if !tablex.ValidIdent(c) {
			return "", nil, tablex.Errorf(tablex.KindInvalid, "invalid column name %q", c)
		}
		placeholders[i] = args.add(row[c])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(table), buildColumns(cols), strings.Join(placeholders, ", "))
	return query, args.args, nil
}

func buildUpdate(table string, values tablex.Row, where []tablex.Condition) (string, []any, error) {
	if !tablex.ValidIdent(table) {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "invalid table name %q", table)
	}
	if len(values) == 0 {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "update of %s without values", table)
	}
	if len(where) == 0 {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "update of %s without a filter", table)
	}
	if err := tablex.ValidateConditions(where); err != nil {
		return "", nil, err
	}

	args := &argList{}
	cols := sortedKeys(values)
	sets := make([]string, len(cols))
	for i, c := range cols {
		if !tablex.ValidIdent(c) {
			return "", nil, tablex.Errorf(tablex.KindInvalid, "invalid column name %q", c)
		}
		sets[i] = pq.QuoteIdentifier(c) + " = " + args.add(values[c])
	}

	query := "UPDATE " + pq.QuoteIdentifier(table) + " SET " + strings.Join(sets, ", ") + buildWhere(where, args)
	return query, args.args, nil
}

func buildDelete(table string, where []tablex.Condition) (string, []any, error) {
	if !tablex.ValidIdent(table) {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "invalid table name %q", table)
	}
	if len(where) == 0 {
		return "", nil, tablex.Errorf(tablex.KindInvalid, "delete from %s without a filter", table)
	}
	if err := tablex.ValidateConditions(where); err != nil {
		return "", nil, err
	}

	args := &argList{}
	query := "DELETE FROM " + pq.QuoteIdentifier(table) + buildWhere(where, args)
	return query, args.args, nil
}

// ============================================================================
// Error Mapping
// ============================================================================

var undefinedColumnPattern = regexp.MustCompile(`column "?(?:[A-Za-z0-9_]+\.)?([A-Za-z0-9_]+)"? does not exist`)

func mapError(ctx context.Context, err error, op string) error {
	if ctxErr := tablex.FromContext(ctx); ctxErr != nil {
		var te *tablex.Error
		errors.As(ctxErr, &te)
		te.Message = op + ": " + te.Message
		te.Err = err
		return te
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		e := &tablex.Error{
			Kind:    kindForCode(pqErr.Code),
			Code:    string(pqErr.Code),
			Message: op + ": " + pqErr.Message,
			Err:     err,
		}
		if e.Kind == tablex.KindUnknownColumn {
			if m := undefinedColumnPattern.FindStringSubmatch(pqErr.Message); m != nil {
				e.Column = m[1]
			}
		}
		return e
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return &tablex.Error{Kind: tablex.KindUnavailable, Message: op, Err: err}
	}

	return &tablex.Error{Kind: tablex.KindInternal, Message: op, Err: err}
}

func kindForCode(code pq.ErrorCode) tablex.Kind {
	switch code {
	case "42703": // undefined_column
		return tablex.KindUnknownColumn
	case "42501": // insufficient_privilege
		return tablex.KindPermissionDenied
	case "42P01": // undefined_table
		return tablex.KindNotFound
	case "23505": // unique_violation
		return tablex.KindConflict
	case "23503", "23502", "23514", "22P02": // fk, not null, check, invalid text representation
		return tablex.KindInvalid
	case "57014": // query_canceled, raised by statement_timeout
		return tablex.KindTimeout
	}
	if code.Class() == "08" || code.Class() == "53" || code.Class() == "57" {
		return tablex.KindUnavailable
	}
	return tablex.KindInternal
}
