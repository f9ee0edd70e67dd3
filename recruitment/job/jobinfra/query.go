package jobinfra

import (
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/recruitment/job"
)

// searchPredicates builds the predicate list shared by the count and the
// data query of a public search
func searchPredicates(f job.FilterSet, v variant) []tablex.Condition {
	where := []tablex.Condition{tablex.Eq("published", true)}

	if loc := f.LocationFilter(); loc != "" {
		where = append(where, tablex.ILike("location", tablex.Contains(loc)))
	}

	if et := f.EmploymentTypeFilter(); et != "" {
		where = append(where, tablex.ILike("employment_type", tablex.EscapeLike(string(et))))
	}

	if q := tablex.SearchText(f.Query); q != "" {
		pattern := tablex.Contains(q)
		alts := make([]tablex.Condition, 0, 3)
		for _, col := range v.searchColumns() {
			alts = append(alts, tablex.ILike(col, pattern))
		}
		where = append(where, tablex.Or(alts...))
	}

	return where
}

// searchOrder maps a sort onto sort keys. id is the final key so pages
// partition the result even when timestamps tie.
func searchOrder(s job.Sort) []tablex.Order {
	newest := tablex.Order{Column: "created_at", Desc: true}
	byID := tablex.Order{Column: "id"}

	switch s {
	case job.SortPayMax:
		return []tablex.Order{{Column: "max_salary", Desc: true, NullsLast: true}, newest, byID}
	case job.SortPayMin:
		return []tablex.Order{{Column: "min_salary", Desc: true, NullsLast: true}, newest, byID}
	default:
		return []tablex.Order{newest, byID}
	}
}

// composeSearch builds the count and data descriptors of one search from a
// single predicate list
func composeSearch(f job.FilterSet, opts kernel.PaginationOptions, v variant) (count, data tablex.Query) {
	where := searchPredicates(f, v)

	count = tablex.Query{
		Table: jobsTable,
		Where: where,
		Count: true,
		Head:  true,
	}

	data = tablex.Query{
		Table:   jobsTable,
		Columns: v.columns(),
		Where:   where,
		Order:   searchOrder(f.Sort),
		Offset:  opts.Offset(),
		Limit:   opts.PageSize,
	}
	return count, data
}
