package materials

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Material, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Material, error) {
	if id <= 0 {
		return Material{}, fmt.Errorf("%w: invalid material id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Register(ctx context.Context, req RegisterMaterialRequest) (Material, error) {
	if strings.TrimSpace(req.Code) == "" {
		return Material{}, fmt.Errorf("%w: material code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return Material{}, fmt.Errorf("%w: material name is required", httpx.ErrValidation)
	}
	if req.CompanyID <= 0 {
		return Material{}, fmt.Errorf("%w: supplying company is required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Material{
		Code:         req.Code,
		Name:         req.Name,
		CompanyID:    req.CompanyID,
		Category:     req.Category,
		Color:        req.Color,
		Spec:         req.Spec,
		Manufacturer: req.Manufacturer,
		Remark:       req.Remark,
		IsTrading:    true,
	})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateMaterialRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid material id", httpx.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: material name is required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, Material{
		Name:         req.Name,
		Category:     req.Category,
		Color:        req.Color,
		Spec:         req.Spec,
		Manufacturer: req.Manufacturer,
		Remark:       req.Remark,
	})
}

func (s *Service) SetTrading(ctx context.Context, id int64, trading bool) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid material id", httpx.ErrValidation)
	}
	return s.repo.SetTrading(ctx, id, trading)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid material id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id)
}
