package companysrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/recruitment/company"
)

// CompanyService provides business operations for employer companies
type CompanyService struct {
	companyRepo company.Repository
	timeout     time.Duration
	now         func() time.Time
}

// NewCompanyService creates a new instance of the company service
func NewCompanyService(companyRepo company.Repository, timeout time.Duration) *CompanyService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CompanyService{
		companyRepo: companyRepo,
		timeout:     timeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateCompany registers a company owned by owner
func (s *CompanyService) CreateCompany(ctx context.Context, owner kernel.UserID, req company.CreateCompanyRequest) (kernel.CompanyID, error) {
	c, err := company.NewCompany(kernel.NewCompanyID(uuid.NewString()), owner, req, s.now())
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.companyRepo.Create(ctx, c); err != nil {
		return "", err
	}

	logx.Infof("company %s created by %s", c.ID, owner)
	return c.ID, nil
}

// ListMyCompanies returns the caller's companies, newest first
func (s *CompanyService) ListMyCompanies(ctx context.Context, owner kernel.UserID) ([]company.CompanyResponse, error) {
	companies, err := s.list(ctx, owner)
	if err != nil {
		return nil, err
	}

	responses := make([]company.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		responses = append(responses, c.ToResponse())
	}
	return responses, nil
}

// MyCompanyIDs returns the IDs of the caller's companies
func (s *CompanyService) MyCompanyIDs(ctx context.Context, owner kernel.UserID) ([]kernel.CompanyID, error) {
	companies, err := s.list(ctx, owner)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.CompanyID, 0, len(companies))
	for _, c := range companies {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// OwnsCompany reports whether owner owns companyID. A missing company is
// not owned by anyone.
func (s *CompanyService) OwnsCompany(ctx context.Context, owner kernel.UserID, companyID kernel.CompanyID) (bool, error) {
	if owner.IsEmpty() || companyID.IsEmpty() {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.companyRepo.GetByID(ctx, companyID)
	if errx.IsCode(err, company.CodeCompanyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.IsOwnedBy(owner), nil
}

func (s *CompanyService) list(ctx context.Context, owner kernel.UserID) ([]company.Company, error) {
	if owner.IsEmpty() {
		return []company.Company{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.companyRepo.ListByOwner(ctx, owner)
}
