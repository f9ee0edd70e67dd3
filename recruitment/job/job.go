package job

import (
	"strings"
	"time"

	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
)

type Job struct {
	ID             kernel.JobID          `json:"id"`
	Title          kernel.JobTitle       `json:"title"`
	Location       kernel.Location       `json:"location"`
	EmploymentType kernel.EmploymentType `json:"employment_type"`
	MinSalary      *float64              `json:"min_salary,omitempty"`
	MaxSalary      *float64              `json:"max_salary,omitempty"`
	Currency       kernel.Currency       `json:"currency"`
	Description    *string               `json:"description,omitempty"`
	Published      bool                  `json:"published"`
	CreatedAt      time.Time             `json:"created_at"`
	CompanyID      kernel.CompanyID      `json:"company_id"`

	// Denormalized company fields; absent on older schemas
	CompanyName    *string `json:"company_name,omitempty"`
	CompanyWebsite *string `json:"company_website,omitempty"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsPublished checks if the listing is visible to public search
func (j *Job) IsPublished() bool {
	return j.Published
}

// IsLive checks if the listing is published under a company and so can take
// applications
func (j *Job) IsLive() bool {
	return j.IsPublished() && !j.CompanyID.IsEmpty()
}

// HasSalaryRange checks if both salary bounds are stated
func (j *Job) HasSalaryRange() bool {
	return j.MinSalary != nil && j.MaxSalary != nil
}

// SalaryRangeValid checks min <= max when both are stated
func (j *Job) SalaryRangeValid() bool {
	return !j.HasSalaryRange() || *j.MinSalary <= *j.MaxSalary
}

// ApplyPatch writes the present fields of p onto j
func (j *Job) ApplyPatch(p Patch) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.EmploymentType != nil {
		j.EmploymentType = *p.EmploymentType
	}
	if p.Currency != nil {
		j.Currency = *p.Currency
	}
	if p.Published != nil {
		j.Published = *p.Published
	}
	if p.MinSalary.Set {
		j.MinSalary = p.MinSalary.Value
	}
	if p.MaxSalary.Set {
		j.MaxSalary = p.MaxSalary.Value
	}
	if p.Description.Set {
		j.Description = p.Description.Value
	}
}

// ============================================================================
// Search
// ============================================================================

// Sort orders public search results
type Sort string

const (
	SortNewest Sort = "newest"
	SortPayMax Sort = "pay-max"
	SortPayMin Sort = "pay-min"
)

// ParseSort maps unknown or empty values to SortNewest
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortPayMax:
		return SortPayMax
	case SortPayMin:
		return SortPayMin
	default:
		return SortNewest
	}
}

// FilterAll is the sentinel meaning "do not constrain this dimension"
const FilterAll = "all"

// FilterSet is one public search request
type FilterSet struct {
	Query          string `json:"q,omitempty"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"type,omitempty"`
	Sort           Sort   `json:"sort,omitempty"`
	Page           int    `json:"page,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
}

// Pagination returns the paging part of the filter set
func (f FilterSet) Pagination() kernel.PaginationOptions {
	return kernel.PaginationOptions{Page: f.Page, PageSize: f.PageSize}
}

// LocationFilter returns the trimmed location constraint, "" when unconstrained
func (f FilterSet) LocationFilter() string {
	return constraint(f.Location)
}

// EmploymentTypeFilter returns the normalized employment type constraint,
// "" when unconstrained
func (f FilterSet) EmploymentTypeFilter() kernel.EmploymentType {
	return kernel.NormalizeEmploymentType(constraint(f.EmploymentType))
}

func constraint(v string) string {
	v = strings.TrimSpace(tablex.ValidText(v))
	if strings.EqualFold(v, FilterAll) {
		return ""
	}
	return v
}

// Facets are the distinct filter values offered to the search UI. They are
// computed from a bounded sample and may be incomplete.
type Facets struct {
	Locations       []string `json:"locations"`
	EmploymentTypes []string `json:"employment_types"`
}
