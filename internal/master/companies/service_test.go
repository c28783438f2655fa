package companies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type memoryRepo struct {
	companies map[int64]Company
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{companies: make(map[int64]Company)}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	out := make([]Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return Company{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) Create(ctx context.Context, company Company) (Company, error) {
	r.nextID++
	company.ID = r.nextID
	r.companies[company.ID] = company
	return company, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, company Company) error {
	existing, ok := r.companies[id]
	if !ok {
		return shared.ErrNotFound
	}
	company.ID = id
	company.Type = existing.Type
	company.RegistrationNo = existing.RegistrationNo
	company.IsTrading = existing.IsTrading
	r.companies[id] = company
	return nil
}

func (r *memoryRepo) SetTrading(ctx context.Context, id int64, trading bool) error {
	c, ok := r.companies[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.IsTrading = trading
	r.companies[id] = c
	return nil
}

func TestRegisterDefaultsToTrading(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Register(context.Background(), RegisterCompanyRequest{
		Name:           "한진코팅",
		Type:           "CLIENT",
		RegistrationNo: "123-45-67890",
	})
	require.NoError(t, err)
	require.True(t, created.IsTrading)
	require.Equal(t, TypeClient, created.Type)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterCompanyRequest{Type: "CLIENT", RegistrationNo: "123"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterCompanyRequest{Name: "업체", Type: "OTHER", RegistrationNo: "123"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterCompanyRequest{Name: "업체", Type: "SUPPLIER"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTradingToggle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterCompanyRequest{Name: "업체", Type: "SUPPLIER", RegistrationNo: "111-22-33333"})
	require.NoError(t, err)

	require.NoError(t, svc.SetTrading(ctx, created.ID, false))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.IsTrading)

	require.NoError(t, svc.SetTrading(ctx, created.ID, true))
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, got.IsTrading)

	require.ErrorIs(t, svc.SetTrading(ctx, 999, false), shared.ErrNotFound)
}
