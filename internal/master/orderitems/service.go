package orderitems

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]OrderItem, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (OrderItem, error) {
	if id <= 0 {
		return OrderItem{}, fmt.Errorf("%w: invalid order item id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Register(ctx context.Context, req RegisterOrderItemRequest) (OrderItem, error) {
	if strings.TrimSpace(req.Code) == "" {
		return OrderItem{}, fmt.Errorf("%w: item code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return OrderItem{}, fmt.Errorf("%w: item name is required", httpx.ErrValidation)
	}
	method := CoatingMethod(req.CoatingMethod)
	if !method.IsValid() {
		return OrderItem{}, fmt.Errorf("%w: unknown coating method %q", httpx.ErrValidation, req.CoatingMethod)
	}
	return s.repo.Create(ctx, OrderItem{
		Code:          req.Code,
		Name:          req.Name,
		CompanyID:     req.CompanyID,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		Color:         req.Color,
		CoatingMethod: method,
		Routing:       routingRefs(req.RoutingStepIDs),
		Remark:        req.Remark,
		IsTrading:     true,
	})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderItemRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid order item id", httpx.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: item name is required", httpx.ErrValidation)
	}
	method := CoatingMethod(req.CoatingMethod)
	if !method.IsValid() {
		return fmt.Errorf("%w: unknown coating method %q", httpx.ErrValidation, req.CoatingMethod)
	}
	return s.repo.Update(ctx, id, OrderItem{
		Name:          req.Name,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		Color:         req.Color,
		CoatingMethod: method,
		Routing:       routingRefs(req.RoutingStepIDs),
		Remark:        req.Remark,
	})
}

func (s *Service) SetTrading(ctx context.Context, id int64, trading bool) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid order item id", httpx.ErrValidation)
	}
	return s.repo.SetTrading(ctx, id, trading)
}

// UpdateImages reconciles the stored image set against the manifest from one
// multipart submission. Manifest order is display order; entries with an id
// keep their persisted bytes, entries without one consume an uploaded file
// part. Persisted images absent from the manifest are removed, files
// included.
func (s *Service) UpdateImages(ctx context.Context, itemID int64, manifest []ImageManifestEntry, uploads map[string]io.Reader) ([]ItemImage, error) {
	if itemID <= 0 {
		return nil, fmt.Errorf("%w: invalid order item id", httpx.ErrValidation)
	}
	existing, err := s.repo.ListImages(ctx, itemID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]ItemImage, len(existing))
	for _, img := range existing {
		byID[img.ID] = img
	}

	var stored []string
	set := NewImageSet(nil)
	for _, entry := range manifest {
		if entry.ID > 0 {
			img, ok := byID[entry.ID]
			if !ok {
				s.discard(stored)
				return nil, fmt.Errorf("%w: image %d does not belong to item %d", httpx.ErrValidation, entry.ID, itemID)
			}
			set.Append(img)
			continue
		}
		upload, ok := uploads[entry.FileName]
		if !ok {
			s.discard(stored)
			return nil, fmt.Errorf("%w: missing file part %q", httpx.ErrValidation, entry.FileName)
		}
		path, err := s.files.Save(entry.FileName, upload)
		if err != nil {
			s.discard(stored)
			return nil, err
		}
		stored = append(stored, path)
		set.Append(ItemImage{Path: path, FileName: entry.FileName})
	}

	removed, err := s.repo.ReplaceImages(ctx, itemID, set.Images())
	if err != nil {
		s.discard(stored)
		return nil, err
	}
	s.discard(removed)
	return s.repo.ListImages(ctx, itemID)
}

// discard deletes stored files best-effort.
func (s *Service) discard(paths []string) {
	for _, path := range paths {
		_ = s.files.Remove(path)
	}
}

func routingRefs(stepIDs []int64) []RoutingRef {
	refs := make([]RoutingRef, 0, len(stepIDs))
	for i, id := range stepIDs {
		refs = append(refs, RoutingRef{RoutingStepID: id, Position: i})
	}
	return refs
}
