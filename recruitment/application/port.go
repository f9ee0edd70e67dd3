package application

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
)

type Repository interface {
	// Create stores a new application
	Create(ctx context.Context, application *Application) error

	// ExistsByJobAndEmail checks if the email already applied to the job
	ExistsByJobAndEmail(ctx context.Context, jobID kernel.JobID, email kernel.Email) (bool, error)

	// ListByJobIDs returns one page of applications to any of jobIDs, newest
	// first. opts must already be normalized.
	ListByJobIDs(ctx context.Context, jobIDs []kernel.JobID, searchText string, opts kernel.PaginationOptions) (*kernel.Paginated[Application], error)
}
