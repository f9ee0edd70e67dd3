package company

import (
	"time"

	"github.com/growindia/jobs/pkg/kernel"
)

// Company is an employer that owns listings
type Company struct {
	ID        kernel.CompanyID   `json:"id"`
	Name      kernel.CompanyName `json:"name"`
	Website   *string            `json:"website,omitempty"`
	OwnerID   kernel.UserID      `json:"owner_id"`
	CreatedAt time.Time          `json:"created_at"`
}

// IsOwnedBy reports whether userID owns the company
func (c *Company) IsOwnedBy(userID kernel.UserID) bool {
	return !userID.IsEmpty() && c.OwnerID == userID
}
