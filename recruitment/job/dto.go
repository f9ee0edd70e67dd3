package job

import (
	"strings"
	"time"

	"github.com/growindia/jobs/pkg/kernel"
)

// CreateJobRequest - DTO for creating a new listing. Numeric fields accept
// numbers or form strings; blank means not stated.
type CreateJobRequest struct {
	Title          string            `json:"title"`
	Location       string            `json:"location"`
	EmploymentType string            `json:"employment_type"`
	MinSalary      kernel.FormNumber `json:"min_salary"`
	MaxSalary      kernel.FormNumber `json:"max_salary"`
	Currency       string            `json:"currency"`
	Description    *string           `json:"description"`
	Published      kernel.FormBool   `json:"published"`
	CompanyID      kernel.CompanyID  `json:"company_id"`
	CompanyName    *string           `json:"company_name"`
	CompanyWebsite *string           `json:"company_website"`
}

// UpdateJobRequest - DTO for a sparse update; absent fields stay untouched
type UpdateJobRequest struct {
	Title          *string                            `json:"title"`
	Location       *string                            `json:"location"`
	EmploymentType *string                            `json:"employment_type"`
	MinSalary      kernel.Optional[kernel.FormNumber] `json:"min_salary"`
	MaxSalary      kernel.Optional[kernel.FormNumber] `json:"max_salary"`
	Currency       *string                            `json:"currency"`
	Description    kernel.Optional[string]            `json:"description"`
	Published      *kernel.FormBool                   `json:"published"`
}

// TogglePublishedRequest - DTO for moving a listing between draft and live
type TogglePublishedRequest struct {
	Published bool `json:"published"`
}

// Patch is a normalized sparse update
type Patch struct {
	Title          *kernel.JobTitle
	Location       *kernel.Location
	EmploymentType *kernel.EmploymentType
	Currency       *kernel.Currency
	Published      *bool
	MinSalary      kernel.Optional[float64]
	MaxSalary      kernel.Optional[float64]
	Description    kernel.Optional[string]
}

// IsEmpty reports a patch without fields
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Location == nil && p.EmploymentType == nil &&
		p.Currency == nil && p.Published == nil &&
		!p.MinSalary.Set && !p.MaxSalary.Set && !p.Description.Set
}

// TouchesSalary reports whether either salary bound is written
func (p Patch) TouchesSalary() bool {
	return p.MinSalary.Set || p.MaxSalary.Set
}

// ============================================================================
// Normalization
// ============================================================================

func normalizeCurrency(s string) kernel.Currency {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return kernel.DefaultCurrency
	}
	return kernel.Currency(s)
}

// NewJob normalizes req into a listing ready to be stored
func NewJob(id kernel.JobID, req CreateJobRequest, now time.Time) (*Job, error) {
	j := &Job{
		ID:             id,
		Title:          kernel.JobTitle(kernel.Trim(req.Title)),
		Location:       kernel.Location(kernel.Trim(req.Location)),
		EmploymentType: kernel.NormalizeEmploymentType(req.EmploymentType),
		MinSalary:      req.MinSalary.Value,
		MaxSalary:      req.MaxSalary.Value,
		Currency:       normalizeCurrency(req.Currency),
		Description:    kernel.TrimOrNil(req.Description),
		Published:      bool(req.Published),
		CreatedAt:      now,
		CompanyID:      kernel.CompanyID(kernel.Trim(req.CompanyID.String())),
		CompanyName:    kernel.TrimOrNil(req.CompanyName),
		CompanyWebsite: kernel.TrimOrNil(req.CompanyWebsite),
	}

	if j.Title == "" {
		return nil, ErrValidation("title", "required")
	}
	if j.CompanyID.IsEmpty() {
		return nil, ErrValidation("company_id", "required")
	}
	if !j.SalaryRangeValid() {
		return nil, ErrValidation("min_salary", "must not exceed max_salary")
	}
	return j, nil
}

// Normalize turns the request into a Patch. A present title must not be blank.
func (r UpdateJobRequest) Normalize() (Patch, error) {
	var p Patch

	if r.Title != nil {
		title := kernel.JobTitle(kernel.Trim(*r.Title))
		if title == "" {
			return Patch{}, ErrValidation("title", "must not be blank")
		}
		p.Title = &title
	}
	if r.Location != nil {
		loc := kernel.Location(kernel.Trim(*r.Location))
		p.Location = &loc
	}
	if r.EmploymentType != nil {
		et := kernel.NormalizeEmploymentType(*r.EmploymentType)
		p.EmploymentType = &et
	}
	if r.Currency != nil {
		cur := normalizeCurrency(*r.Currency)
		p.Currency = &cur
	}
	if r.Published != nil {
		pub := bool(*r.Published)
		p.Published = &pub
	}
	p.MinSalary = formNumberPatch(r.MinSalary)
	p.MaxSalary = formNumberPatch(r.MaxSalary)
	if r.Description.Set {
		p.Description = kernel.Optional[string]{Value: kernel.TrimOrNil(r.Description.Value), Set: true}
	}

	if p.MinSalary.Value != nil && p.MaxSalary.Value != nil && *p.MinSalary.Value > *p.MaxSalary.Value {
		return Patch{}, ErrValidation("min_salary", "must not exceed max_salary")
	}
	return p, nil
}

func formNumberPatch(o kernel.Optional[kernel.FormNumber]) kernel.Optional[float64] {
	if !o.Set {
		return kernel.Optional[float64]{}
	}
	if o.Value == nil {
		return kernel.Null[float64]()
	}
	return kernel.Optional[float64]{Value: o.Value.Value, Set: true}
}

// ============================================================================
// Responses
// ============================================================================

// Response type alias for paginated jobs
type PaginatedJobsResponse = kernel.Paginated[JobResponse]

// JobResponse - DTO for returning listing data
type JobResponse struct {
	ID             kernel.JobID          `json:"id"`
	Title          kernel.JobTitle       `json:"title"`
	Location       kernel.Location       `json:"location"`
	EmploymentType kernel.EmploymentType `json:"employment_type"`
	MinSalary      *float64              `json:"min_salary"`
	MaxSalary      *float64              `json:"max_salary"`
	Currency       kernel.Currency       `json:"currency"`
	Description    *string               `json:"description"`
	Published      bool                  `json:"published"`
	CreatedAt      time.Time             `json:"created_at"`
	CompanyID      kernel.CompanyID      `json:"company_id"`
	CompanyName    *string               `json:"company_name,omitempty"`
	CompanyWebsite *string               `json:"company_website,omitempty"`
}

// ToResponse converts the entity to its response DTO
func (j *Job) ToResponse() JobResponse {
	return JobResponse{
		ID:             j.ID,
		Title:          j.Title,
		Location:       j.Location,
		EmploymentType: j.EmploymentType,
		MinSalary:      j.MinSalary,
		MaxSalary:      j.MaxSalary,
		Currency:       j.Currency,
		Description:    j.Description,
		Published:      j.Published,
		CreatedAt:      j.CreatedAt,
		CompanyID:      j.CompanyID,
		CompanyName:    j.CompanyName,
		CompanyWebsite: j.CompanyWebsite,
	}
}

// CreateJobResponse - DTO returned by create and update
type CreateJobResponse struct {
	ID kernel.JobID `json:"id"`
}
