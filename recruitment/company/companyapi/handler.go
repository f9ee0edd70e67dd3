package companyapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/growindia/jobs/pkg/iam/auth"
	"github.com/growindia/jobs/recruitment/company"
	"github.com/growindia/jobs/recruitment/company/companysrv"
)

// Handlers provides HTTP handlers for company operations
type Handlers struct {
	service *companysrv.CompanyService
}

// NewHandlers creates a new company handlers instance
func NewHandlers(service *companysrv.CompanyService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateCompany registers a company owned by the caller
// POST /api/companies
func (h *Handlers) CreateCompany(c *fiber.Ctx) error {
	session, ok := auth.GetSession(c)
	if !ok {
		return auth.ErrAuthRequired()
	}

	var req company.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return company.ErrValidation("body", err.Error())
	}

	id, err := h.service.CreateCompany(c.UserContext(), session.UserID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(company.CreateCompanyResponse{ID: id})
}

// ListMyCompanies lists the caller's companies
// GET /api/companies/mine
func (h *Handlers) ListMyCompanies(c *fiber.Ctx) error {
	session, ok := auth.GetSession(c)
	if !ok {
		return auth.ErrAuthRequired()
	}

	companies, err := h.service.ListMyCompanies(c.UserContext(), session.UserID)
	if err != nil {
		return err
	}

	return c.JSON(companies)
}

// RegisterRoutes registers all company routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.Middleware) {
	api := app.Group("/api/companies", authMiddleware.Authenticate(), authMiddleware.RequireAuth())

	api.Post("/",
		authMiddleware.RequireScope(auth.ScopeCompaniesWrite),
		handlers.CreateCompany,
	)

	api.Get("/mine", handlers.ListMyCompanies)
}
