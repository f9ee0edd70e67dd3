package jobsrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/recruitment/job"
)

// Config tunes the job service
type Config struct {
	QueryTimeout    time.Duration
	DefaultPageSize int
	MaxPageSize     int
	FacetSampleSize int
}

func (c Config) withDefaults() Config {
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 10 * time.Second
	}
	if c.DefaultPageSize < 1 {
		c.DefaultPageSize = kernel.DefaultPageSize
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = max(kernel.MaxPageSize, c.DefaultPageSize)
	}
	if c.FacetSampleSize < 1 {
		c.FacetSampleSize = 500
	}
	return c
}

// JobService provides business operations for jobs
type JobService struct {
	jobRepo    job.Repository
	facetCache job.FacetCache
	searches   *Superseder
	cfg        Config
	now        func() time.Time
}

// NewJobService creates a new instance of the job service. facetCache may be nil.
func NewJobService(jobRepo job.Repository, facetCache job.FacetCache, cfg Config) *JobService {
	return &JobService{
		jobRepo:    jobRepo,
		facetCache: facetCache,
		searches:   NewSuperseder(),
		cfg:        cfg.withDefaults(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *JobService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.QueryTimeout)
}

// ============================================================================
// Search
// ============================================================================

// ListJobsPaged returns one page of published listings matching filters
func (s *JobService) ListJobsPaged(ctx context.Context, filters job.FilterSet) (*job.PaginatedJobsResponse, error) {
	opts := filters.Pagination().Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	filters.Sort = job.ParseSort(string(filters.Sort))
	filters.Page, filters.PageSize = opts.Page, opts.PageSize

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, err := s.jobRepo.Search(ctx, filters, opts)
	if err != nil {
		return nil, err
	}

	return kernel.MapPaginated(page, func(j job.Job) job.JobResponse {
		return j.ToResponse()
	}), nil
}

// SearchLatest runs ListJobsPaged as the latest search for key. Starting
// another search for the same key cancels this one, and a canceled search
// never returns rows. An empty key disables the guard.
func (s *JobService) SearchLatest(ctx context.Context, key string, filters job.FilterSet) (*job.PaginatedJobsResponse, error) {
	ctx, done := s.searches.Begin(ctx, key)
	defer done()

	page, err := s.ListJobsPaged(ctx, filters)
	if err != nil {
		return nil, err
	}
	if ctxErr := tablex.FromContext(ctx); ctxErr != nil {
		return nil, job.ErrQuery(ctxErr).WithDetail("reason", context.Cause(ctx).Error())
	}
	return page, nil
}

// DistinctJobFilters returns facets for the search UI. It never fails: on
// any error the result is empty.
func (s *JobService) DistinctJobFilters(ctx context.Context) job.Facets {
	if s.facetCache != nil {
		cached, err := s.facetCache.Get(ctx)
		if err != nil {
			logx.Warnf("facet cache read failed: %v", err)
		} else if cached != nil {
			return *cached
		}
	}

	facets, err := s.computeFacets(ctx)
	if err != nil {
		logx.Warnf("facet computation failed: %v", err)
		return emptyFacets()
	}

	s.storeFacets(ctx, facets)
	return facets
}

// RefreshFacets recomputes facets and replaces the cached copy
func (s *JobService) RefreshFacets(ctx context.Context) error {
	facets, err := s.computeFacets(ctx)
	if err != nil {
		return err
	}
	s.storeFacets(ctx, facets)
	return nil
}

func (s *JobService) computeFacets(ctx context.Context) (job.Facets, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.jobRepo.SampleFacets(ctx, s.cfg.FacetSampleSize)
}

func (s *JobService) storeFacets(ctx context.Context, facets job.Facets) {
	if s.facetCache == nil {
		return
	}
	if err := s.facetCache.Set(ctx, facets); err != nil {
		logx.Warnf("facet cache write failed: %v", err)
	}
}

func emptyFacets() job.Facets {
	return job.Facets{Locations: []string{}, EmploymentTypes: []string{}}
}

// ============================================================================
// Reads
// ============================================================================

// GetJob retrieves any listing by ID
func (s *JobService) GetJob(ctx context.Context, id kernel.JobID) (*job.JobResponse, error) {
	if id.IsEmpty() {
		return nil, job.ErrJobNotFound().WithDetail("id", "missing or empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	j, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := j.ToResponse()
	return &resp, nil
}

// MyJobsByCompanyIDs lists every listing of the given companies, newest
// first. An empty list returns immediately.
func (s *JobService) MyJobsByCompanyIDs(ctx context.Context, companyIDs []kernel.CompanyID) ([]job.JobResponse, error) {
	if len(companyIDs) == 0 {
		return []job.JobResponse{}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	jobs, err := s.jobRepo.ListByCompanyIDs(ctx, companyIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]job.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		responses = append(responses, j.ToResponse())
	}
	return responses, nil
}

// ============================================================================
// Mutations
// ============================================================================

// CreateJob normalizes and stores a new listing
func (s *JobService) CreateJob(ctx context.Context, req job.CreateJobRequest) (kernel.JobID, error) {
	newJob, err := job.NewJob(kernel.NewJobID(uuid.NewString()), req, s.now())
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.jobRepo.Create(ctx, newJob); err != nil {
		return "", err
	}

	logx.Infof("job %s created for company %s", newJob.ID, newJob.CompanyID)
	return newJob.ID, nil
}

// UpdateJob writes only the fields present in req
func (s *JobService) UpdateJob(ctx context.Context, id kernel.JobID, req job.UpdateJobRequest) (kernel.JobID, error) {
	patch, err := req.Normalize()
	if err != nil {
		return "", err
	}
	if patch.IsEmpty() {
		return id, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// a bound may be written alone, so check the range against the stored row
	if patch.TouchesSalary() {
		current, err := s.jobRepo.GetByID(ctx, id)
		if err != nil {
			return "", errx.Wrap(err, "load job for salary check", errx.TypeInternal)
		}
		current.ApplyPatch(patch)
		if !current.SalaryRangeValid() {
			return "", job.ErrValidation("min_salary", "must not exceed max_salary")
		}
	}

	updated, err := s.jobRepo.Update(ctx, id, patch)
	if err != nil {
		return "", err
	}
	if !updated {
		return "", job.ErrJobNotFound().WithDetail("job_id", id.String())
	}
	return id, nil
}

// DeleteJob hard-deletes a listing
func (s *JobService) DeleteJob(ctx context.Context, id kernel.JobID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	deleted, err := s.jobRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return job.ErrJobNotFound().WithDetail("job_id", id.String())
	}

	logx.Infof("job %s deleted", id)
	return nil
}

// ToggleJobPublished moves a listing to live or draft. Repeating the same
// transition leaves the listing unchanged.
func (s *JobService) ToggleJobPublished(ctx context.Context, id kernel.JobID, published bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := s.jobRepo.Update(ctx, id, job.Patch{Published: &published})
	if err != nil {
		return err
	}
	if !updated {
		return job.ErrJobNotFound().WithDetail("job_id", id.String())
	}
	return nil
}
