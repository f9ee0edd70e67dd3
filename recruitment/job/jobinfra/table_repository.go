package jobinfra

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/recruitment/job"
)

// TableJobRepository implements job.Repository on a tablex.Client
type TableJobRepository struct {
	store tablex.Client
}

var _ job.Repository = (*TableJobRepository)(nil)

// NewTableJobRepository creates a new job repository
func NewTableJobRepository(store tablex.Client) *TableJobRepository {
	return &TableJobRepository{
		store: store,
	}
}

// withFallback runs fn with the full variant and, on a schema-shape error,
// once more with the reduced variant
func withFallback[T any](op string, fn func(v variant) (T, error)) (T, error) {
	out, err := fn(variantFull)
	if !tablex.IsUnknownColumn(err) {
		return out, err
	}
	logx.Warnf("jobs %s: optional column missing (%v), retrying with %s selection", op, err, variantReduced)
	return fn(variantReduced)
}

// ============================================================================
// Reads
// ============================================================================

// Search implements job.Repository
func (r *TableJobRepository) Search(ctx context.Context, filters job.FilterSet, opts kernel.PaginationOptions) (*kernel.Paginated[job.Job], error) {
	page, err := withFallback("search", func(v variant) (*kernel.Paginated[job.Job], error) {
		return r.search(ctx, filters, opts, v)
	})
	if err != nil {
		return nil, job.ErrQuery(err)
	}
	return page, nil
}

func (r *TableJobRepository) search(ctx context.Context, filters job.FilterSet, opts kernel.PaginationOptions, v variant) (*kernel.Paginated[job.Job], error) {
	countQuery, dataQuery := composeSearch(filters, opts, v)

	counted, err := r.store.Select(ctx, countQuery)
	if err != nil {
		return nil, err
	}

	rows, err := r.store.Select(ctx, dataQuery)
	if err != nil {
		return nil, err
	}

	return kernel.NewPaginated(toEntities(rows.Rows), opts, counted.Count), nil
}

// SampleFacets implements job.Repository
func (r *TableJobRepository) SampleFacets(ctx context.Context, sampleSize int) (job.Facets, error) {
	res, err := r.store.Select(ctx, tablex.Query{
		Table:   jobsTable,
		Columns: []string{"location", "employment_type"},
		Where:   []tablex.Condition{tablex.Eq("published", true)},
		Order:   []tablex.Order{{Column: "created_at", Desc: true}},
		Limit:   sampleSize,
	})
	if err != nil {
		return job.Facets{}, job.ErrQuery(err)
	}

	locations := make([]string, 0, len(res.Rows))
	types := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		locations = append(locations, row.String("location"))
		types = append(types, string(kernel.NormalizeEmploymentType(row.String("employment_type"))))
	}

	return job.Facets{
		Locations:       kernel.UniqueSorted(locations),
		EmploymentTypes: kernel.UniqueSorted(types),
	}, nil
}

// GetByID implements job.Repository
func (r *TableJobRepository) GetByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	res, err := withFallback("get", func(v variant) (*tablex.Result, error) {
		return r.store.Select(ctx, tablex.Query{
			Table:   jobsTable,
			Columns: v.columns(),
			Where:   []tablex.Condition{tablex.Eq("id", id.String())},
			Limit:   1,
		})
	})
	if err != nil {
		return nil, job.ErrQuery(err)
	}
	if len(res.Rows) == 0 {
		return nil, job.ErrJobNotFound().WithDetail("job_id", id.String())
	}

	j := toEntity(res.Rows[0])
	return &j, nil
}

// ListByCompanyIDs implements job.Repository
func (r *TableJobRepository) ListByCompanyIDs(ctx context.Context, companyIDs []kernel.CompanyID) ([]job.Job, error) {
	if len(companyIDs) == 0 {
		return []job.Job{}, nil
	}

	res, err := withFallback("list by company", func(v variant) (*tablex.Result, error) {
		return r.store.Select(ctx, tablex.Query{
			Table:   jobsTable,
			Columns: v.columns(),
			Where:   []tablex.Condition{tablex.In("company_id", kernel.CompanyIDStrings(companyIDs))},
			Order:   searchOrder(job.SortNewest),
		})
	})
	if err != nil {
		return nil, job.ErrQuery(err)
	}
	return toEntities(res.Rows), nil
}

// ============================================================================
// Writes
// ============================================================================

// Create implements job.Repository
func (r *TableJobRepository) Create(ctx context.Context, j *job.Job) error {
	row := fromEntity(j)
	_, err := withFallback("create", func(v variant) (tablex.Row, error) {
		if v == variantReduced {
			return r.store.Insert(ctx, jobsTable, withoutOptional(row))
		}
		return r.store.Insert(ctx, jobsTable, row)
	})
	if err != nil {
		return job.ErrQuery(err)
	}
	return nil
}

// Update implements job.Repository
func (r *TableJobRepository) Update(ctx context.Context, id kernel.JobID, patch job.Patch) (bool, error) {
	values := fromPatch(patch)
	where := []tablex.Condition{tablex.Eq("id", id.String())}

	n, err := r.store.Update(ctx, jobsTable, values, where)
	if tablex.IsUnknownColumn(err) {
		// only optional columns can be dropped; a patch made of nothing
		// else keeps the original error
		if reduced := withoutOptional(values); len(reduced) > 0 && len(reduced) < len(values) {
			logx.Warnf("jobs update: optional column missing (%v), retrying without optional columns", err)
			n, err = r.store.Update(ctx, jobsTable, reduced, where)
		}
	}
	if err != nil {
		return false, job.ErrQuery(err)
	}
	return n > 0, nil
}

// Delete implements job.Repository
func (r *TableJobRepository) Delete(ctx context.Context, id kernel.JobID) (bool, error) {
	n, err := r.store.Delete(ctx, jobsTable, []tablex.Condition{tablex.Eq("id", id.String())})
	if err != nil {
		return false, job.ErrQuery(err)
	}
	return n > 0, nil
}
