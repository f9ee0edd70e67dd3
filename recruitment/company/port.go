package company

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
)

type Repository interface {
	// Create stores a new company
	Create(ctx context.Context, company *Company) error

	// GetByID retrieves a company by ID
	GetByID(ctx context.Context, id kernel.CompanyID) (*Company, error)

	// ListByOwner returns the companies owned by a user, newest first
	ListByOwner(ctx context.Context, owner kernel.UserID) ([]Company, error)
}
