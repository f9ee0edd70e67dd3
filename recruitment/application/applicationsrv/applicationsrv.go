package applicationsrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/recruitment/application"
	"github.com/growindia/jobs/recruitment/job"
)

// Config tunes the application service
type Config struct {
	QueryTimeout    time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

// ApplicationService provides business operations for applications
type ApplicationService struct {
	applicationRepo application.Repository
	jobRepo         job.Repository
	cfg             Config
	now             func() time.Time
}

// NewApplicationService creates a new instance of the application service
func NewApplicationService(applicationRepo application.Repository, jobRepo job.Repository, cfg Config) *ApplicationService {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	if cfg.DefaultPageSize < 1 {
		cfg.DefaultPageSize = kernel.DefaultPageSize
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = max(kernel.MaxPageSize, cfg.DefaultPageSize)
	}
	return &ApplicationService{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		cfg:             cfg,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// ApplyToJob stores a submission to a published listing. One email may
// apply to a listing once.
func (s *ApplicationService) ApplyToJob(ctx context.Context, req application.ApplyRequest) (kernel.ApplicationID, error) {
	app, err := application.NewApplication(kernel.NewApplicationID(uuid.NewString()), req, s.now())
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	// Validate job exists and is live
	jobEntity, err := s.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return "", errx.Wrap(err, "load job for application", errx.TypeInternal)
	}
	if !jobEntity.IsLive() {
		return "", application.ErrJobNotPublished().WithDetail("job_id", app.JobID.String())
	}

	// Business rule: Check for duplicate application
	exists, err := s.applicationRepo.ExistsByJobAndEmail(ctx, app.JobID, app.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", application.ErrApplicationAlreadyExists().
			WithDetail("job_id", app.JobID.String()).
			WithDetail("email", app.Email.String())
	}

	// a concurrent duplicate still fails on the unique index
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return "", err
	}

	logx.Infof("application %s submitted to job %s", app.ID, app.JobID)
	return app.ID, nil
}

// AppsForJobIDs pages through the applications to jobIDs, newest first. An
// empty list returns an empty page without a store call.
func (s *ApplicationService) AppsForJobIDs(ctx context.Context, jobIDs []kernel.JobID, q application.AppsQuery) (*application.PaginatedApplicationsResponse, error) {
	opts := q.Pagination().Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	if len(jobIDs) == 0 {
		return kernel.NewPaginated([]application.Application{}, opts, 0), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	return s.applicationRepo.ListByJobIDs(ctx, jobIDs, q.SearchText, opts)
}
