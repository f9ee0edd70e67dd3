package jobapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/iam/auth"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/recruitment/company/companysrv"
	"github.com/growindia/jobs/recruitment/job"
	"github.com/growindia/jobs/recruitment/job/jobsrv"
)

// HeaderSearchKey identifies a search box; a newer search from the same
// caller with the same key cancels the older one
const HeaderSearchKey = "X-Search-Key"

// Handlers provides HTTP handlers for job operations
type Handlers struct {
	service   *jobsrv.JobService
	companies *companysrv.CompanyService
	admins    *auth.AdminChecker
}

// NewHandlers creates a new job handlers instance
func NewHandlers(service *jobsrv.JobService, companies *companysrv.CompanyService, admins *auth.AdminChecker) *Handlers {
	return &Handlers{
		service:   service,
		companies: companies,
		admins:    admins,
	}
}

// ============================================================================
// Public routes
// ============================================================================

// ListJobs searches published listings
// GET /api/jobs?q=&location=&type=&sort=&page=&page_size=
func (h *Handlers) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.service.SearchLatest(c.UserContext(), searchKey(c), parseFilterSet(c))
	if err != nil {
		return err
	}

	return c.JSON(jobs)
}

// GetFilters returns the facets of the search UI
// GET /api/jobs/filters
func (h *Handlers) GetFilters(c *fiber.Ctx) error {
	return c.JSON(h.service.DistinctJobFilters(c.UserContext()))
}

// GetJobByID retrieves a listing. Drafts are visible to their employer only.
// GET /api/jobs/:id
func (h *Handlers) GetJobByID(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return job.ErrJobNotFound().WithDetail("id", "missing or empty")
	}

	jobResp, err := h.service.GetJob(c.UserContext(), jobID)
	if err != nil {
		return err
	}

	if !jobResp.Published {
		if err := h.authorize(c, jobResp.CompanyID); err != nil {
			return job.ErrJobNotFound().WithDetail("job_id", jobID.String())
		}
	}

	return c.JSON(jobResp)
}

// ============================================================================
// Employer routes
// ============================================================================

// CreateJob creates a listing for one of the caller's companies
// POST /api/jobs
func (h *Handlers) CreateJob(c *fiber.Ctx) error {
	var req job.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return job.ErrValidation("body", err.Error())
	}
	if req.CompanyID.IsEmpty() {
		return job.ErrValidation("company_id", "required")
	}

	if err := h.authorize(c, req.CompanyID); err != nil {
		return err
	}

	id, err := h.service.CreateJob(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(job.CreateJobResponse{ID: id})
}

// UpdateJob writes the fields present in the body
// PATCH /api/jobs/:id
func (h *Handlers) UpdateJob(c *fiber.Ctx) error {
	jobID, err := h.ownedJob(c)
	if err != nil {
		if errx.IsCode(err, job.CodeInsufficientPermissions) {
			return job.ErrUnauthorizedUpdate().WithDetail("job_id", c.Params("id"))
		}
		return err
	}

	var req job.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return job.ErrValidation("body", err.Error())
	}

	id, err := h.service.UpdateJob(c.UserContext(), jobID, req)
	if err != nil {
		return err
	}

	return c.JSON(job.CreateJobResponse{ID: id})
}

// DeleteJob hard-deletes a listing
// DELETE /api/jobs/:id
func (h *Handlers) DeleteJob(c *fiber.Ctx) error {
	jobID, err := h.ownedJob(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteJob(c.UserContext(), jobID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// TogglePublished moves a listing between draft and live
// POST /api/jobs/:id/publish
func (h *Handlers) TogglePublished(c *fiber.Ctx) error {
	jobID, err := h.ownedJob(c)
	if err != nil {
		return err
	}

	var req job.TogglePublishedRequest
	if err := c.BodyParser(&req); err != nil {
		return job.ErrValidation("published", err.Error())
	}

	if err := h.service.ToggleJobPublished(c.UserContext(), jobID, req.Published); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":        jobID,
		"published": req.Published,
	})
}

// ListMyJobs lists every listing of the caller's companies, drafts included
// GET /api/employer/jobs
func (h *Handlers) ListMyJobs(c *fiber.Ctx) error {
	session, ok := auth.GetSession(c)
	if !ok {
		return auth.ErrAuthRequired()
	}

	companyIDs, err := h.companies.MyCompanyIDs(c.UserContext(), session.UserID)
	if err != nil {
		return err
	}

	jobs, err := h.service.MyJobsByCompanyIDs(c.UserContext(), companyIDs)
	if err != nil {
		return err
	}

	return c.JSON(jobs)
}

// ============================================================================
// Helper Functions
// ============================================================================

// ownedJob resolves the :id listing and checks that the caller may manage it
func (h *Handlers) ownedJob(c *fiber.Ctx) (kernel.JobID, error) {
	jobID := kernel.JobID(c.Params("id"))
	if jobID.IsEmpty() {
		return "", job.ErrJobNotFound().WithDetail("id", "missing or empty")
	}

	current, err := h.service.GetJob(c.UserContext(), jobID)
	if err != nil {
		return "", err
	}
	if err := h.authorize(c, current.CompanyID); err != nil {
		return "", err
	}
	return jobID, nil
}

// authorize passes company owners and admins
func (h *Handlers) authorize(c *fiber.Ctx, companyID kernel.CompanyID) error {
	session, ok := auth.GetSession(c)
	if !ok {
		return auth.ErrAuthRequired()
	}

	ok, err := h.canManage(c.UserContext(), session, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return job.ErrInsufficientPermissions().WithDetail("company_id", companyID.String())
	}
	return nil
}

func (h *Handlers) canManage(ctx context.Context, session *auth.Session, companyID kernel.CompanyID) (bool, error) {
	owns, err := h.companies.OwnsCompany(ctx, session.UserID, companyID)
	if err != nil {
		return false, err
	}
	return owns || h.admins.IsAdminSession(ctx, session), nil
}

// searchKey scopes the client's search key to the caller: the signed-in user,
// else the client IP. No header means no supersede.
func searchKey(c *fiber.Ctx) string {
	key := c.Get(HeaderSearchKey)
	if key == "" {
		return ""
	}
	if session, ok := auth.GetSession(c); ok {
		return "user:" + session.UserID.String() + "|" + key
	}
	return "ip:" + c.IP() + "|" + key
}

// parseFilterSet extracts the search filters from query parameters. Paging
// is clamped by the service.
func parseFilterSet(c *fiber.Ctx) job.FilterSet {
	return job.FilterSet{
		Query:          c.Query("q"),
		Location:       c.Query("location"),
		EmploymentType: c.Query("type"),
		Sort:           job.Sort(c.Query("sort")),
		Page:           c.QueryInt("page", 1),
		PageSize:       c.QueryInt("page_size", 0),
	}
}

// RegisterRoutes registers all job routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.Middleware) {
	api := app.Group("/api/jobs", authMiddleware.Authenticate())

	// Public routes
	api.Get("/", handlers.ListJobs)
	api.Get("/filters", handlers.GetFilters)
	api.Get("/:id", handlers.GetJobByID)

	// Employer routes
	api.Post("/",
		authMiddleware.RequireScope(auth.ScopeJobsWrite),
		handlers.CreateJob,
	)

	api.Patch("/:id",
		authMiddleware.RequireScope(auth.ScopeJobsWrite),
		handlers.UpdateJob,
	)

	api.Delete("/:id",
		authMiddleware.RequireScope(auth.ScopeJobsDelete),
		handlers.DeleteJob,
	)

	api.Post("/:id/publish",
		authMiddleware.RequireScope(auth.ScopeJobsPublish),
		handlers.TogglePublished,
	)

	employer := app.Group("/api/employer", authMiddleware.Authenticate(), authMiddleware.RequireAuth())
	employer.Get("/jobs", handlers.ListMyJobs)
}
