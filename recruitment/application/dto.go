package application

import (
	"strings"
	"time"

	"github.com/growindia/jobs/pkg/kernel"
)

// ApplyRequest - DTO for submitting an application
type ApplyRequest struct {
	JobID         kernel.JobID `json:"job_id"`
	CandidateName string       `json:"candidate_name"`
	Email         string       `json:"email"`
	Message       *string      `json:"message"`
}

// NewApplication normalizes req: name and email are trimmed, email is
// lower-cased and a blank message becomes nil
func NewApplication(id kernel.ApplicationID, req ApplyRequest, now time.Time) (*Application, error) {
	a := &Application{
		ID:            id,
		JobID:         kernel.NewJobID(kernel.Trim(req.JobID.String())),
		CandidateName: kernel.CandidateName(kernel.Trim(req.CandidateName)),
		Email:         kernel.Email(strings.ToLower(kernel.Trim(req.Email))),
		Message:       kernel.TrimOrNil(req.Message),
		CreatedAt:     now,
	}

	switch {
	case a.JobID.IsEmpty():
		return nil, ErrValidation("job_id", "required")
	case a.CandidateName == "":
		return nil, ErrValidation("candidate_name", "required")
	case a.Email == "":
		return nil, ErrValidation("email", "required")
	case !a.Email.IsPlausible():
		return nil, ErrValidation("email", "must be an email address")
	}
	return a, nil
}

// ApplyResponse - DTO returned after a submission
type ApplyResponse struct {
	ID kernel.ApplicationID `json:"id"`
}

// Response type alias for paginated applications
type PaginatedApplicationsResponse = kernel.Paginated[Application]
