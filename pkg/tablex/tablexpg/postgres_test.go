package tablexpg

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/growindia/jobs/pkg/tablex"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelect(t *testing.T) {
	q := tablex.Query{
		Table:   "jobs",
		Columns: []string{"id", "title"},
		Where: []tablex.Condition{
			tablex.Eq("published", true),
			tablex.Or(tablex.ILike("title", "%go%"), tablex.ILike("description", "%go%")),
			tablex.In("company_id", []string{"a", "b"}),
		},
		Order:  []tablex.Order{{Column: "max_salary", Desc: true, NullsLast: true}, {Column: "id"}},
		Offset: 20,
		Limit:  10,
	}

	query, args := buildSelect(q)
	assert.Equal(t,
		`SELECT "id", "title" FROM "jobs" WHERE "published" = $1 AND ("title" ILIKE $2 OR "description" ILIKE $3)`+
			` AND "company_id" = ANY($4) ORDER BY "max_salary" DESC NULLS LAST, "id" ASC LIMIT $5 OFFSET $6`,
		query)
	require.Len(t, args, 6)
	assert.Equal(t, true, args[0])
	assert.Equal(t, "%go%", args[1])
	assert.Equal(t, 10, args[4])
	assert.Equal(t, 20, args[5])
}

func TestBuildSelect_NoColumnsNoLimit(t *testing.T) {
	query, args := buildSelect(tablex.Query{Table: "admins"})
	assert.Equal(t, `SELECT * FROM "admins"`, query)
	assert.Empty(t, args)
}

func TestBuildCount(t *testing.T) {
	query, args := buildCount(tablex.Query{
		Table: "applications",
		Where: []tablex.Condition{{Column: "message", Op: tablex.OpIsNull, Value: false}},
		Limit: 5,
	})
	assert.Equal(t, `SELECT COUNT(*) FROM "applications" WHERE "message" IS NOT NULL`, query)
	assert.Empty(t, args)
}

func TestBuildInsert(t *testing.T) {
	query, args, err := buildInsert("companies", tablex.Row{"name": "Acme", "id": "c1"})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "companies" ("id", "name") VALUES ($1, $2) RETURNING *`, query)
	assert.Equal(t, []any{"c1", "Acme"}, args)

	_, _, err = buildInsert("companies", tablex.Row{})
	assert.Equal(t, tablex.KindInvalid, tablex.KindOf(err))

	_, _, err = buildInsert("companies", tablex.Row{"bad-col": 1})
	assert.Equal(t, tablex.KindInvalid, tablex.KindOf(err))
}

func TestBuildUpdate(t *testing.T) {
	query, args, err := buildUpdate("jobs",
		tablex.Row{"published": false, "description": nil},
		[]tablex.Condition{tablex.Eq("id", "j1")},
	)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "jobs" SET "description" = $1, "published" = $2 WHERE "id" = $3`, query)
	assert.Equal(t, []any{nil, false, "j1"}, args)

	_, _, err = buildUpdate("jobs", tablex.Row{"title": "x"}, nil)
	assert.Equal(t, tablex.KindInvalid, tablex.KindOf(err))
}

func TestBuildDelete(t *testing.T) {
	query, args, err := buildDelete("jobs", []tablex.Condition{tablex.Eq("id", "j1")})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "jobs" WHERE "id" = $1`, query)
	assert.Equal(t, []any{"j1"}, args)

	_, _, err = buildDelete("jobs", nil)
	assert.Equal(t, tablex.KindInvalid, tablex.KindOf(err))

	_, _, err = buildDelete("Jobs;", []tablex.Condition{tablex.Eq("id", "j1")})
	assert.Equal(t, tablex.KindInvalid, tablex.KindOf(err))
}

func TestMapError(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		kind tablex.Kind
		code string
	}{
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key"}, tablex.KindConflict, "23505"},
		{"privilege", &pq.Error{Code: "42501", Message: "permission denied"}, tablex.KindPermissionDenied, "42501"},
		{"missing table", &pq.Error{Code: "42P01", Message: "relation does not exist"}, tablex.KindNotFound, "42P01"},
		{"not null", &pq.Error{Code: "23502", Message: "null value"}, tablex.KindInvalid, "23502"},
		{"statement timeout", &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"}, tablex.KindTimeout, "57014"},
		{"connection class", &pq.Error{Code: "08006", Message: "connection failure"}, tablex.KindUnavailable, "08006"},
		{"bad conn", driver.ErrBadConn, tablex.KindUnavailable, ""},
		{"other", errors.New("boom"), tablex.KindInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(ctx, tt.err, "select jobs")

			var te *tablex.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, tt.code, te.Code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMapError_UnknownColumn(t *testing.T) {
	for _, msg := range []string{
		`column "currency" does not exist`,
		`column jobs.currency does not exist`,
	} {
		err := mapError(context.Background(), &pq.Error{Code: "42703", Message: msg}, "select jobs")
		assert.True(t, tablex.IsUnknownColumn(err), msg)

		var te *tablex.Error
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "currency", te.Column, msg)
	}
}

func TestMapError_ContextWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mapError(ctx, &pq.Error{Code: "57014"}, "select jobs")
	assert.Equal(t, tablex.KindCanceled, tablex.KindOf(err))
	assert.Contains(t, err.Error(), "select jobs")
}
