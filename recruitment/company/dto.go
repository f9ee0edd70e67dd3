package company

import (
	"time"

	"github.com/growindia/jobs/pkg/kernel"
)

// CreateCompanyRequest - DTO for registering an employer company
type CreateCompanyRequest struct {
	Name    string  `json:"name"`
	Website *string `json:"website"`
}

// NewCompany normalizes req into a company owned by owner
func NewCompany(id kernel.CompanyID, owner kernel.UserID, req CreateCompanyRequest, now time.Time) (*Company, error) {
	c := &Company{
		ID:        id,
		Name:      kernel.CompanyName(kernel.Trim(req.Name)),
		Website:   kernel.TrimOrNil(req.Website),
		OwnerID:   owner,
		CreatedAt: now,
	}
	if owner.IsEmpty() {
		return nil, ErrValidation("owner_id", "required")
	}
	if c.Name == "" {
		return nil, ErrValidation("name", "required")
	}
	return c, nil
}

// CompanyResponse - DTO for returning company data
type CompanyResponse struct {
	ID        kernel.CompanyID   `json:"id"`
	Name      kernel.CompanyName `json:"name"`
	Website   *string            `json:"website"`
	CreatedAt time.Time          `json:"created_at"`
}

// ToResponse converts the entity to its response DTO
func (c *Company) ToResponse() CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Website:   c.Website,
		CreatedAt: c.CreatedAt,
	}
}

// CreateCompanyResponse - DTO returned after registration
type CreateCompanyResponse struct {
	ID kernel.CompanyID `json:"id"`
}
