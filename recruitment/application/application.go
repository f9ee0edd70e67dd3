package application

import (
	"time"

	"github.com/growindia/jobs/pkg/kernel"
)

// Application is a candidate's submission to one listing
type Application struct {
	ID            kernel.ApplicationID `json:"id"`
	JobID         kernel.JobID         `json:"job_id"`
	CandidateName kernel.CandidateName `json:"candidate_name"`
	Email         kernel.Email         `json:"email"`
	Message       *string              `json:"message"`
	CreatedAt     time.Time            `json:"created_at"`
}

// AppsQuery narrows an employer's application list
type AppsQuery struct {
	SearchText string `json:"q,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
}

// Pagination returns the paging part of the query
func (q AppsQuery) Pagination() kernel.PaginationOptions {
	return kernel.PaginationOptions{Page: q.Page, PageSize: q.PageSize}
}
