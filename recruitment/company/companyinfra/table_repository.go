package companyinfra

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/recruitment/company"
)

const companiesTable = "companies"

var companyColumns = []string{"id", "name", "website", "owner_id", "created_at"}

// TableCompanyRepository implements company.Repository on a tablex.Client
type TableCompanyRepository struct {
	store tablex.Client
}

var _ company.Repository = (*TableCompanyRepository)(nil)

// NewTableCompanyRepository creates a new company repository
func NewTableCompanyRepository(store tablex.Client) *TableCompanyRepository {
	return &TableCompanyRepository{
		store: store,
	}
}

// Schema returns the companies table name and its column set
func Schema() (string, []string) {
	return companiesTable, append([]string{}, companyColumns...)
}

// Create implements company.Repository
func (r *TableCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	_, err := r.store.Insert(ctx, companiesTable, tablex.Row{
		"id":         c.ID.String(),
		"name":       string(c.Name),
		"website":    nullableString(c.Website),
		"owner_id":   c.OwnerID.String(),
		"created_at": c.CreatedAt.UTC(),
	})
	if err != nil {
		return company.ErrQuery(err)
	}
	return nil
}

// GetByID implements company.Repository
func (r *TableCompanyRepository) GetByID(ctx context.Context, id kernel.CompanyID) (*company.Company, error) {
	res, err := r.store.Select(ctx, tablex.Query{
		Table:   companiesTable,
		Columns: companyColumns,
		Where:   []tablex.Condition{tablex.Eq("id", id.String())},
		Limit:   1,
	})
	if err != nil {
		return nil, company.ErrQuery(err)
	}
	if len(res.Rows) == 0 {
		return nil, company.ErrCompanyNotFound().WithDetail("company_id", id.String())
	}

	c := toEntity(res.Rows[0])
	return &c, nil
}

// ListByOwner implements company.Repository
func (r *TableCompanyRepository) ListByOwner(ctx context.Context, owner kernel.UserID) ([]company.Company, error) {
	res, err := r.store.Select(ctx, tablex.Query{
		Table:   companiesTable,
		Columns: companyColumns,
		Where:   []tablex.Condition{tablex.Eq("owner_id", owner.String())},
		Order:   []tablex.Order{{Column: "created_at", Desc: true}, {Column: "id"}},
	})
	if err != nil {
		return nil, company.ErrQuery(err)
	}

	companies := make([]company.Company, 0, len(res.Rows))
	for _, row := range res.Rows {
		companies = append(companies, toEntity(row))
	}
	return companies, nil
}

func toEntity(row tablex.Row) company.Company {
	return company.Company{
		ID:        kernel.NewCompanyID(row.String("id")),
		Name:      kernel.CompanyName(row.String("name")),
		Website:   row.StringPtr("website"),
		OwnerID:   kernel.NewUserID(row.String("owner_id")),
		CreatedAt: row.Time("created_at"),
	}
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
