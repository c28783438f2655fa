package documents

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-mes/meridian-mes/internal/platform/cache"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type fakeRepo struct {
	header WorkOrder
	steps  []WorkOrderStep
	image  string
	inv    ShipmentInvoice
	known  bool
}

func (f *fakeRepo) WorkOrderHeader(_ context.Context, _ int64) (WorkOrder, error) {
	if !f.known {
		return WorkOrder{}, shared.ErrNotFound
	}
	return f.header, nil
}

func (f *fakeRepo) WorkOrderSteps(_ context.Context, _ int64) ([]WorkOrderStep, error) {
	return f.steps, nil
}

func (f *fakeRepo) RepresentativeImage(_ context.Context, _ int64) (string, error) {
	return f.image, nil
}

func (f *fakeRepo) ShipmentInvoice(_ context.Context, _ int64) (ShipmentInvoice, error) {
	if !f.known {
		return ShipmentInvoice{}, shared.ErrNotFound
	}
	return f.inv, nil
}

type fakeRenderer struct {
	calls   atomic.Int64
	release chan struct{}
}

func (f *fakeRenderer) RenderHTML(_ context.Context, html string) ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return []byte("%PDF " + html[:20]), nil
}

func TestWorkOrderAssemblesParts(t *testing.T) {
	repo := &fakeRepo{
		known:  true,
		header: WorkOrder{ItemID: 1, ItemCode: "OI-100", ItemName: "브라켓", CompanyName: "한성기업"},
		steps: []WorkOrderStep{
			{ProcessCode: "P-10", ProcessName: "전처리", StandardTime: 30, Position: 0},
			{ProcessCode: "P-20", ProcessName: "도장", StandardTime: 45, Position: 1},
		},
		image: "/images/rep.jpg",
	}
	svc := NewService(repo, &fakeRenderer{}, nil)

	wo, err := svc.WorkOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "OI-100", wo.ItemCode)
	assert.Len(t, wo.Steps, 2)
	assert.Equal(t, "/images/rep.jpg", wo.RepresentativeImage)
	assert.False(t, wo.IssuedAt.IsZero())
}

func TestWorkOrderUnknownItem(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeRenderer{}, nil)

	_, err := svc.WorkOrder(context.Background(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestWorkOrderPDFRendersTemplate(t *testing.T) {
	repo := &fakeRepo{known: true, header: WorkOrder{ItemID: 1, ItemCode: "OI-100", ItemName: "브라켓"}}
	renderer := &fakeRenderer{}
	svc := NewService(repo, renderer, nil)

	pdf, err := svc.WorkOrderPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
	assert.Equal(t, int64(1), renderer.calls.Load())
}

func TestConcurrentRendersCollapse(t *testing.T) {
	repo := &fakeRepo{known: true, header: WorkOrder{ItemID: 1, ItemCode: "OI-100"}}
	renderer := &fakeRenderer{release: make(chan struct{})}
	svc := NewService(repo, renderer, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.WorkOrderPDF(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	// Give the goroutines time to pile onto the in-flight render.
	time.Sleep(50 * time.Millisecond)
	close(renderer.release)
	wg.Wait()

	assert.Equal(t, int64(1), renderer.calls.Load(), "concurrent renders of one document share a single call")
}

func TestCachedRenderSkipsRenderer(t *testing.T) {
	srv := miniredis.RunT(t)
	client, err := cache.New(context.Background(), srv.Addr())
	require.NoError(t, err)
	defer func() {
		_ = client.Close()
	}()

	repo := &fakeRepo{known: true, header: WorkOrder{ItemID: 1, ItemCode: "OI-100", ItemName: "브라켓"}}
	renderer := &fakeRenderer{}
	svc := NewService(repo, renderer, client)

	first, err := svc.WorkOrderPDF(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), renderer.calls.Load())

	// Second request within the TTL is served from redis.
	second, err := svc.WorkOrderPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), renderer.calls.Load())

	// After the TTL expires the document is rendered again.
	srv.FastForward(pdfCacheTTL + time.Second)
	_, err = svc.WorkOrderPDF(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), renderer.calls.Load())
}

func TestShipmentInvoice(t *testing.T) {
	repo := &fakeRepo{known: true, inv: ShipmentInvoice{
		MovementID: 7, MovementNo: "OUT-20240115-0001", LotNo: "LOT-20240101-0001",
		ItemName: "브라켓", Quantity: 80,
	}}
	svc := NewService(repo, &fakeRenderer{}, nil)

	inv, err := svc.ShipmentInvoice(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "LOT-20240101-0001", inv.LotNo)
	assert.False(t, inv.IssuedAt.IsZero())

	pdf, err := svc.ShipmentInvoicePDF(context.Background(), 7)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
