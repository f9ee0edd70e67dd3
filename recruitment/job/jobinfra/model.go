package jobinfra

import (
	"slices"

	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/recruitment/job"
)

const jobsTable = "jobs"

// ============================================================================
// Table Model
// ============================================================================

// variant selects how much of the jobs schema a query may reference
type variant int

const (
	variantFull    variant = iota // every column
	variantReduced                // optional columns omitted
)

func (v variant) String() string {
	if v == variantReduced {
		return "reduced"
	}
	return "full"
}

var (
	requiredColumns = []string{
		"id", "title", "location", "employment_type", "min_salary", "max_salary",
		"description", "published", "created_at", "company_id",
	}

	// optionalColumns may be missing from older schemas
	optionalColumns = []string{"currency", "company_name", "company_website"}
)

func (v variant) columns() []string {
	if v == variantReduced {
		return slices.Clone(requiredColumns)
	}
	return append(slices.Clone(requiredColumns), optionalColumns...)
}

// searchColumns are matched by free-text search
func (v variant) searchColumns() []string {
	if v == variantReduced {
		return []string{"title", "description"}
	}
	return []string{"title", "description", "company_name"}
}

// Schema returns the jobs table name and its full column set
func Schema() (string, []string) {
	return jobsTable, variantFull.columns()
}

func isOptional(column string) bool {
	return slices.Contains(optionalColumns, column)
}

// withoutOptional drops optional columns from a row
func withoutOptional(r tablex.Row) tablex.Row {
	out := make(tablex.Row, len(r))
	for k, v := range r {
		if !isOptional(k) {
			out[k] = v
		}
	}
	return out
}

// toEntity converts a table row to a domain entity
func toEntity(r tablex.Row) job.Job {
	currency := kernel.Currency(r.String("currency"))
	if currency == "" {
		currency = kernel.DefaultCurrency
	}

	return job.Job{
		ID:             kernel.JobID(r.String("id")),
		Title:          kernel.JobTitle(r.String("title")),
		Location:       kernel.Location(r.String("location")),
		EmploymentType: kernel.EmploymentType(r.String("employment_type")),
		MinSalary:      r.Float("min_salary"),
		MaxSalary:      r.Float("max_salary"),
		Currency:       currency,
		Description:    r.StringPtr("description"),
		Published:      r.Bool("published"),
		CreatedAt:      r.Time("created_at"),
		CompanyID:      kernel.CompanyID(r.String("company_id")),
		CompanyName:    r.StringPtr("company_name"),
		CompanyWebsite: r.StringPtr("company_website"),
	}
}

func toEntities(rows []tablex.Row) []job.Job {
	jobs := make([]job.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, toEntity(r))
	}
	return jobs
}

// fromEntity converts a domain entity to a table row
func fromEntity(j *job.Job) tablex.Row {
	return tablex.Row{
		"id":              j.ID.String(),
		"title":           string(j.Title),
		"location":        string(j.Location),
		"employment_type": string(j.EmploymentType),
		"min_salary":      nullableFloat(j.MinSalary),
		"max_salary":      nullableFloat(j.MaxSalary),
		"currency":        string(j.Currency),
		"description":     nullableString(j.Description),
		"published":       j.Published,
		"created_at":      j.CreatedAt.UTC(),
		"company_id":      j.CompanyID.String(),
		"company_name":    nullableString(j.CompanyName),
		"company_website": nullableString(j.CompanyWebsite),
	}
}

// fromPatch converts the present fields of a patch to column values
func fromPatch(p job.Patch) tablex.Row {
	r := tablex.Row{}
	if p.Title != nil {
		r["title"] = string(*p.Title)
	}
	if p.Location != nil {
		r["location"] = string(*p.Location)
	}
	if p.EmploymentType != nil {
		r["employment_type"] = string(*p.EmploymentType)
	}
	if p.Currency != nil {
		r["currency"] = string(*p.Currency)
	}
	if p.Published != nil {
		r["published"] = *p.Published
	}
	if p.MinSalary.Set {
		r["min_salary"] = nullableFloat(p.MinSalary.Value)
	}
	if p.MaxSalary.Set {
		r["max_salary"] = nullableFloat(p.MaxSalary.Value)
	}
	if p.Description.Set {
		r["description"] = nullableString(p.Description.Value)
	}
	return r
}

// nullableFloat unwraps so every backend sees a plain value or nil
func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
