package job

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
)

type Repository interface {
	// Search returns one page of published listings matching filters.
	// opts must already be normalized.
	Search(ctx context.Context, filters FilterSet, opts kernel.PaginationOptions) (*kernel.Paginated[Job], error)

	// SampleFacets derives facets from at most sampleSize published listings
	SampleFacets(ctx context.Context, sampleSize int) (Facets, error)

	// Create stores a new listing
	Create(ctx context.Context, job *Job) error

	// GetByID retrieves a listing by ID regardless of visibility
	GetByID(ctx context.Context, id kernel.JobID) (*Job, error)

	// Update writes the present fields of patch; false when no row matched
	Update(ctx context.Context, id kernel.JobID, patch Patch) (bool, error)

	// Delete hard-deletes a listing; false when no row matched
	Delete(ctx context.Context, id kernel.JobID) (bool, error)

	// ListByCompanyIDs returns every listing of the given companies, newest first
	ListByCompanyIDs(ctx context.Context, companyIDs []kernel.CompanyID) ([]Job, error)
}

// FacetCache stores computed facets between requests
type FacetCache interface {
	Get(ctx context.Context) (*Facets, error)
	Set(ctx context.Context, facets Facets) error
}
