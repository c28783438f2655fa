package companies

import (
	"context"
	"fmt"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, fmt.Errorf("%w: invalid company id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Register(ctx context.Context, req RegisterCompanyRequest) (Company, error) {
	company := req.toModel()
	if err := s.validate(company); err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, company)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCompanyRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid company id", httpx.ErrValidation)
	}
	company := Company{
		Name:          req.Name,
		CEOName:       req.CEOName,
		ManagerName:   req.ManagerName,
		ManagerPhone:  req.ManagerPhone,
		Zip:           req.Zip,
		Address:       req.Address,
		AddressDetail: req.AddressDetail,
		Remark:        req.Remark,
	}
	if err := s.validateName(company.Name); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, company)
}

// SetTrading ends or resumes trading with the company. Companies are never
// hard-deleted; this toggle is the only lifecycle exit.
func (s *Service) SetTrading(ctx context.Context, id int64, trading bool) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid company id", httpx.ErrValidation)
	}
	return s.repo.SetTrading(ctx, id, trading)
}
