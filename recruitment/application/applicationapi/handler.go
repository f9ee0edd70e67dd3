package applicationapi

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/growindia/jobs/pkg/iam/auth"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/recruitment/application"
	"github.com/growindia/jobs/recruitment/application/applicationsrv"
	"github.com/growindia/jobs/recruitment/company/companysrv"
	"github.com/growindia/jobs/recruitment/job/jobsrv"
)

// Handlers provides HTTP handlers for application operations
type Handlers struct {
	service   *applicationsrv.ApplicationService
	jobs      *jobsrv.JobService
	companies *companysrv.CompanyService
	admins    *auth.AdminChecker
}

// NewHandlers creates a new application handlers instance
func NewHandlers(
	service *applicationsrv.ApplicationService,
	jobs *jobsrv.JobService,
	companies *companysrv.CompanyService,
	admins *auth.AdminChecker,
) *Handlers {
	return &Handlers{
		service:   service,
		jobs:      jobs,
		companies: companies,
		admins:    admins,
	}
}

// Apply submits an application to a published listing. No account is needed.
// POST /api/jobs/:id/apply
func (h *Handlers) Apply(c *fiber.Ctx) error {
	var req application.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return application.ErrValidation("body", err.Error())
	}
	req.JobID = kernel.JobID(utils.CopyString(c.Params("id")))

	id, err := h.service.ApplyToJob(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(application.ApplyResponse{ID: id})
}

// ListApplications pages through applications to the caller's listings
// GET /api/employer/applications?job_id=&q=&page=&page_size=
func (h *Handlers) ListApplications(c *fiber.Ctx) error {
	session, ok := auth.GetSession(c)
	if !ok {
		return auth.ErrAuthRequired()
	}
	ctx := c.UserContext()

	jobIDs, err := h.myJobIDs(c, session)
	if err != nil {
		return err
	}

	if only := kernel.JobID(c.Query("job_id")); !only.IsEmpty() {
		if !slices.Contains(jobIDs, only) && !h.admins.IsAdminSession(ctx, session) {
			return application.ErrInsufficientPermissions().WithDetail("job_id", only.String())
		}
		jobIDs = []kernel.JobID{only}
	}

	apps, err := h.service.AppsForJobIDs(ctx, jobIDs, application.AppsQuery{
		SearchText: c.Query("q"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 0),
	})
	if err != nil {
		return err
	}

	return c.JSON(apps)
}

func (h *Handlers) myJobIDs(c *fiber.Ctx, session *auth.Session) ([]kernel.JobID, error) {
	companyIDs, err := h.companies.MyCompanyIDs(c.UserContext(), session.UserID)
	if err != nil {
		return nil, err
	}

	jobs, err := h.jobs.MyJobsByCompanyIDs(c.UserContext(), companyIDs)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.JobID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

// RegisterRoutes registers all application routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.Middleware) {
	app.Post("/api/jobs/:id/apply", handlers.Apply)

	app.Get("/api/employer/applications",
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(auth.ScopeApplicationsRead),
		handlers.ListApplications,
	)
}
