package applicationinfra

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/recruitment/application"
)

const applicationsTable = "applications"

var applicationColumns = []string{"id", "job_id", "candidate_name", "email", "message", "created_at"}

// searchColumns are matched by the employer's free-text filter
var searchColumns = []string{"candidate_name", "email", "message"}

// TableApplicationRepository implements application.Repository on a tablex.Client
type TableApplicationRepository struct {
	store tablex.Client
}

var _ application.Repository = (*TableApplicationRepository)(nil)

// NewTableApplicationRepository creates a new application repository
func NewTableApplicationRepository(store tablex.Client) *TableApplicationRepository {
	return &TableApplicationRepository{
		store: store,
	}
}

// Schema returns the applications table name and its column set
func Schema() (string, []string) {
	return applicationsTable, append([]string{}, applicationColumns...)
}

// Create implements application.Repository
func (r *TableApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	var message any
	if a.Message != nil {
		message = *a.Message
	}

	_, err := r.store.Insert(ctx, applicationsTable, tablex.Row{
		"id":             a.ID.String(),
		"job_id":         a.JobID.String(),
		"candidate_name": string(a.CandidateName),
		"email":          a.Email.String(),
		"message":        message,
		"created_at":     a.CreatedAt.UTC(),
	})
	if err != nil {
		return application.ErrQuery(err)
	}
	return nil
}

// ExistsByJobAndEmail implements application.Repository
func (r *TableApplicationRepository) ExistsByJobAndEmail(ctx context.Context, jobID kernel.JobID, email kernel.Email) (bool, error) {
	res, err := r.store.Select(ctx, tablex.Query{
		Table:   applicationsTable,
		Columns: []string{"id"},
		Where: []tablex.Condition{
			tablex.Eq("job_id", jobID.String()),
			tablex.Eq("email", email.String()),
		},
		Limit: 1,
	})
	if err != nil {
		return false, application.ErrQuery(err)
	}
	return len(res.Rows) > 0, nil
}

// ListByJobIDs implements application.Repository
func (r *TableApplicationRepository) ListByJobIDs(ctx context.Context, jobIDs []kernel.JobID, searchText string, opts kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	if len(jobIDs) == 0 {
		return kernel.NewPaginated([]application.Application{}, opts, 0), nil
	}

	where := []tablex.Condition{tablex.In("job_id", kernel.JobIDStrings(jobIDs))}
	if q := tablex.SearchText(searchText); q != "" {
		pattern := tablex.Contains(q)
		alts := make([]tablex.Condition, 0, len(searchColumns))
		for _, col := range searchColumns {
			alts = append(alts, tablex.ILike(col, pattern))
		}
		where = append(where, tablex.Or(alts...))
	}

	counted, err := r.store.Select(ctx, tablex.Query{
		Table: applicationsTable,
		Where: where,
		Count: true,
		Head:  true,
	})
	if err != nil {
		return nil, application.ErrQuery(err)
	}

	res, err := r.store.Select(ctx, tablex.Query{
		Table:   applicationsTable,
		Columns: applicationColumns,
		Where:   where,
		Order:   []tablex.Order{{Column: "created_at", Desc: true}, {Column: "id"}},
		Offset:  opts.Offset(),
		Limit:   opts.PageSize,
	})
	if err != nil {
		return nil, application.ErrQuery(err)
	}

	apps := make([]application.Application, 0, len(res.Rows))
	for _, row := range res.Rows {
		apps = append(apps, toEntity(row))
	}
	return kernel.NewPaginated(apps, opts, counted.Count), nil
}

func toEntity(row tablex.Row) application.Application {
	return application.Application{
		ID:            kernel.NewApplicationID(row.String("id")),
		JobID:         kernel.NewJobID(row.String("job_id")),
		CandidateName: kernel.CandidateName(row.String("candidate_name")),
		Email:         kernel.Email(row.String("email")),
		Message:       row.StringPtr("message"),
		CreatedAt:     row.Time("created_at"),
	}
}
