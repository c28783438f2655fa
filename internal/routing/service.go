package routing

import (
	"context"
	"fmt"
	"math"
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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]RoutingStep, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (RoutingStep, error) {
	if id <= 0 {
		return RoutingStep{}, fmt.Errorf("%w: invalid routing step id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// RegisterBatch validates and inserts a grid submission as one unit. Rows
// with every field blank are dropped first, so trailing filler rows from the
// grid never fail validation. Row numbers in errors count the kept rows from
// 1 in submission order.
func (s *Service) RegisterBatch(ctx context.Context, req RegisterBatchRequest) ([]RoutingStep, error) {
	rows := dropEmptyRows(req.Rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to register", httpx.ErrValidation)
	}

	seen := make(map[string]int, len(rows))
	steps := make([]RoutingStep, 0, len(rows))
	for i, row := range rows {
		code := strings.TrimSpace(row.ProcessCode)
		name := strings.TrimSpace(row.ProcessName)
		if code == "" {
			return nil, fmt.Errorf("%w: row %d: process code is required", httpx.ErrValidation, i+1)
		}
		if name == "" {
			return nil, fmt.Errorf("%w: row %d: process name is required", httpx.ErrValidation, i+1)
		}
		if row.StandardTime <= 0 || math.IsInf(row.StandardTime, 0) || math.IsNaN(row.StandardTime) {
			return nil, fmt.Errorf("%w: row %d: standard time must be a positive number of minutes", httpx.ErrValidation, i+1)
		}
		if first, dup := seen[code]; dup {
			return nil, fmt.Errorf("%w: process code %q appears in rows %d and %d", httpx.ErrValidation, code, first+1, i+1)
		}
		seen[code] = i
		steps = append(steps, RoutingStep{
			ProcessCode:  code,
			ProcessName:  name,
			StandardTime: row.StandardTime,
			Remark:       row.Remark,
		})
	}
	return s.repo.CreateBatch(ctx, steps)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateStepRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid routing step id", httpx.ErrValidation)
	}
	if strings.TrimSpace(req.ProcessName) == "" {
		return fmt.Errorf("%w: process name is required", httpx.ErrValidation)
	}
	if req.StandardTime <= 0 || math.IsInf(req.StandardTime, 0) || math.IsNaN(req.StandardTime) {
		return fmt.Errorf("%w: standard time must be a positive number of minutes", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, RoutingStep{
		ProcessName:  strings.TrimSpace(req.ProcessName),
		StandardTime: req.StandardTime,
		Remark:       req.Remark,
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid routing step id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func dropEmptyRows(rows []BatchRow) []BatchRow {
	kept := make([]BatchRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.ProcessCode) == "" &&
			strings.TrimSpace(row.ProcessName) == "" &&
			row.StandardTime == 0 &&
			strings.TrimSpace(row.Remark) == "" {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}
