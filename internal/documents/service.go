package documents

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
)

// Renderer turns document HTML into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// pdfCacheTTL bounds how stale a cached print can be after an inline amend.
const pdfCacheTTL = 5 * time.Minute

type Service struct {
	repo     Repository
	renderer Renderer
	cache    *redis.Client
	renders  singleflight.Group
}

// NewService wires the document reads, the PDF renderer and an optional
// redis client caching rendered PDFs.
func NewService(repo Repository, renderer Renderer, cache *redis.Client) *Service {
	return &Service{repo: repo, renderer: renderer, cache: cache}
}

// WorkOrder assembles the printable work order. The routing lines and the
// representative image are independent reads, so they are fetched
// concurrently under the header's context.
func (s *Service) WorkOrder(ctx context.Context, itemID int64) (WorkOrder, error) {
	if itemID <= 0 {
		return WorkOrder{}, fmt.Errorf("%w: invalid order item id", httpx.ErrValidation)
	}
	wo, err := s.repo.WorkOrderHeader(ctx, itemID)
	if err != nil {
		return WorkOrder{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		steps, err := s.repo.WorkOrderSteps(gctx, itemID)
		if err != nil {
			return err
		}
		wo.Steps = steps
		return nil
	})
	g.Go(func() error {
		image, err := s.repo.RepresentativeImage(gctx, itemID)
		if err != nil {
			return err
		}
		wo.RepresentativeImage = image
		return nil
	})
	if err := g.Wait(); err != nil {
		return WorkOrder{}, err
	}

	wo.IssuedAt = time.Now()
	return wo, nil
}

func (s *Service) ShipmentInvoice(ctx context.Context, movementID int64) (ShipmentInvoice, error) {
	if movementID <= 0 {
		return ShipmentInvoice{}, fmt.Errorf("%w: invalid movement id", httpx.ErrValidation)
	}
	inv, err := s.repo.ShipmentInvoice(ctx, movementID)
	if err != nil {
		return ShipmentInvoice{}, err
	}
	inv.IssuedAt = time.Now()
	return inv, nil
}

// WorkOrderPDF renders the work order. A recently rendered copy is served
// from the cache; concurrent renders of the same item collapse into one
// Gotenberg call.
func (s *Service) WorkOrderPDF(ctx context.Context, itemID int64) ([]byte, error) {
	return s.renderPDF(ctx, "workorder:"+strconv.FormatInt(itemID, 10), func() ([]byte, error) {
		wo, err := s.WorkOrder(ctx, itemID)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := workOrderTemplate.Execute(&buf, wo); err != nil {
			return nil, err
		}
		return s.renderer.RenderHTML(ctx, buf.String())
	})
}

// ShipmentInvoicePDF renders the shipment invoice with the same caching and
// collapsing.
func (s *Service) ShipmentInvoicePDF(ctx context.Context, movementID int64) ([]byte, error) {
	return s.renderPDF(ctx, "invoice:"+strconv.FormatInt(movementID, 10), func() ([]byte, error) {
		inv, err := s.ShipmentInvoice(ctx, movementID)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := shipmentInvoiceTemplate.Execute(&buf, inv); err != nil {
			return nil, err
		}
		return s.renderer.RenderHTML(ctx, buf.String())
	})
}

func (s *Service) renderPDF(ctx context.Context, key string, render func() ([]byte, error)) ([]byte, error) {
	cacheKey := "documents:pdf:" + key
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}
	pdf, err, _ := s.renders.Do(key, func() (any, error) {
		out, err := render()
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			// Cache failures never fail the request.
			_ = s.cache.Set(ctx, cacheKey, out, pdfCacheTTL).Err()
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return pdf.([]byte), nil
}
