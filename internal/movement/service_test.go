package movement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/search"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type memoryRepo struct {
	eligible    []EligibleRow
	movements   map[int64]Movement
	batchCalls  int
	lastBatch   []SubmissionRow
	nextID      int64
	failBatches bool
}

func newMemoryRepo(eligible ...EligibleRow) *memoryRepo {
	return &memoryRepo{eligible: eligible, movements: map[int64]Movement{}, nextID: 100}
}

func (m *memoryRepo) ListEligible(_ context.Context, _ Subject, _ Direction) ([]EligibleRow, error) {
	return m.eligible, nil
}

func (m *memoryRepo) List(_ context.Context, subject Subject, direction Direction) ([]Movement, error) {
	var out []Movement
	for _, mv := range m.movements {
		if mv.Subject == subject && mv.Direction == direction {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Movement, error) {
	mv, ok := m.movements[id]
	if !ok {
		return Movement{}, shared.ErrNotFound
	}
	return mv, nil
}

func (m *memoryRepo) CreateBatch(_ context.Context, subject Subject, direction Direction, rows []SubmissionRow) ([]Movement, error) {
	m.batchCalls++
	m.lastBatch = rows
	if m.failBatches {
		return nil, assert.AnError
	}
	created := make([]Movement, 0, len(rows))
	for i, row := range rows {
		mv := Movement{
			ID:         m.nextID,
			Subject:    subject,
			Direction:  direction,
			ItemID:     row.SourceID,
			MovementNo: formatMovementNo(numberPrefix(subject, direction), row.Date, i+1),
			Quantity:   row.Amount,
			Date:       row.Date,
		}
		m.nextID++
		m.movements[mv.ID] = mv
		created = append(created, mv)
	}
	return created, nil
}

func (m *memoryRepo) Amend(_ context.Context, id int64, quantity float64, date time.Time, remark string) error {
	mv, ok := m.movements[id]
	if !ok {
		return shared.ErrNotFound
	}
	mv.Quantity = quantity
	mv.Date = date
	mv.Remark = remark
	m.movements[id] = mv
	return nil
}

func (m *memoryRepo) SoftDelete(_ context.Context, id int64) error {
	if _, ok := m.movements[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.movements, id)
	return nil
}

func (m *memoryRepo) SetProcessCompleted(_ context.Context, id int64, flag string) error {
	mv, ok := m.movements[id]
	if !ok {
		return shared.ErrNotFound
	}
	mv.IsProcessCompleted = flag
	m.movements[id] = mv
	return nil
}

type memoryKeys struct {
	keys     map[string]string
	released []string
}

func newMemoryKeys() *memoryKeys { return &memoryKeys{keys: map[string]string{}} }

func (m *memoryKeys) CheckAndInsert(_ context.Context, key, module string) error {
	if _, ok := m.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = module
	return nil
}

func (m *memoryKeys) Delete(_ context.Context, key string) error {
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (m *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func outboundEligible() []EligibleRow {
	return []EligibleRow{
		{SourceID: 1, ItemName: "브라켓", ItemCode: "OI-100", InAmount: 100, InDate: day("2024-01-01"), IsProcessCompleted: "Y"},
		{SourceID: 2, ItemName: "커버", ItemCode: "OI-200", InAmount: 50, InDate: day("2024-01-10"), IsProcessCompleted: "N"},
	}
}

func TestRegisterOutboundScenario(t *testing.T) {
	ctx := context.Background()

	// Row 2 cannot be edited, so a batch touching it never reaches the store.
	repo := newMemoryRepo(outboundEligible()...)
	svc := NewService(repo, nil, nil)
	_, err := svc.Register(ctx, SubjectOrderItem, DirectionOut, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 2, Amount: 10, Date: "2024-01-15"},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.batchCalls)

	// Over-quantity on row 1 is rejected before any store call.
	_, err = svc.Register(ctx, SubjectOrderItem, DirectionOut, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 120, Date: "2024-01-15"},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "브라켓")
	assert.Zero(t, repo.batchCalls)

	// A date preceding the inbound date is rejected too.
	_, err = svc.Register(ctx, SubjectOrderItem, DirectionOut, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 80, Date: "2024-01-05"},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.batchCalls)

	// The corrected batch commits with exactly one store call.
	created, err := svc.Register(ctx, SubjectOrderItem, DirectionOut, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 80, Date: "2024-01-15"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.batchCalls)
	require.Len(t, repo.lastBatch, 1)
	assert.Equal(t, int64(1), repo.lastBatch[0].SourceID)
	assert.Equal(t, 80.0, repo.lastBatch[0].Amount)
	assert.Equal(t, day("2024-01-15"), repo.lastBatch[0].Date)
	require.Len(t, created, 1)
	assert.Equal(t, "OUT-20240115-0001", created[0].MovementNo)
}

func TestRegisterAcceptsSlashDates(t *testing.T) {
	repo := newMemoryRepo(EligibleRow{SourceID: 5, ItemName: "도료", ItemCode: "MT-1"})
	svc := NewService(repo, nil, nil)

	created, err := svc.Register(context.Background(), SubjectMaterial, DirectionIn, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 5, Amount: 40, Date: "2024/02/03"},
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "IN-20240203-0001", created[0].MovementNo)
}

func TestRegisterRejectsUnknownDateFormat(t *testing.T) {
	repo := newMemoryRepo(EligibleRow{SourceID: 5, ItemName: "도료"})
	svc := NewService(repo, nil, nil)

	_, err := svc.Register(context.Background(), SubjectMaterial, DirectionIn, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 5, Amount: 40, Date: "03.02.2024"},
	}})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRegisterEmptyBatch(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Register(context.Background(), SubjectMaterial, DirectionIn, "", RegisterBatchRequest{})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestListFiltersByCriteria(t *testing.T) {
	repo := newMemoryRepo(outboundEligible()...)
	svc := NewService(repo, nil, nil)

	_, err := svc.Register(context.Background(), SubjectOrderItem, DirectionOut, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 80, Date: "2024-03-05"},
	}})
	require.NoError(t, err)

	// Date criteria matches the MM-DD partial form.
	got, err := svc.List(context.Background(), SubjectOrderItem, DirectionOut, search.CriteriaDate, "03-05")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(context.Background(), SubjectOrderItem, DirectionOut, search.CriteriaDate, "04-01")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.List(context.Background(), SubjectOrderItem, DirectionOut, search.CriteriaNumber, "OUT-20240305")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAmendAndDelete(t *testing.T) {
	repo := newMemoryRepo(EligibleRow{SourceID: 5, ItemName: "도료"})
	svc := NewService(repo, nil, nil)

	created, err := svc.Register(context.Background(), SubjectMaterial, DirectionIn, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 5, Amount: 40, Date: "2024-02-03"},
	}})
	require.NoError(t, err)
	id := created[0].ID

	require.NoError(t, svc.Amend(context.Background(), id, AmendRequest{Quantity: 35, Date: "2024-02-04"}))
	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.Quantity)

	require.NoError(t, svc.Delete(context.Background(), id))
	_, err = svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAmendRejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	err := svc.Amend(context.Background(), 1, AmendRequest{Quantity: 0, Date: "2024-02-03"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRegisterRejectsReplayedKey(t *testing.T) {
	repo := newMemoryRepo(outboundEligible()...)
	keys := newMemoryKeys()
	audit := &memoryAudit{}
	svc := NewService(repo, audit, keys)

	rows := RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 80, Date: "2024-01-15"},
	}}
	created, err := svc.Register(context.Background(), SubjectOrderItem, DirectionOut, "batch-1", rows)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 1, repo.batchCalls)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "register", audit.logs[0].Action)

	// The same key resubmitted must not reach the store again.
	_, err = svc.Register(context.Background(), SubjectOrderItem, DirectionOut, "batch-1", rows)
	require.ErrorIs(t, err, httpx.ErrConflict)
	assert.Equal(t, 1, repo.batchCalls)
	assert.Len(t, audit.logs, 1)
}

func TestRegisterFailureReleasesKey(t *testing.T) {
	repo := newMemoryRepo(outboundEligible()...)
	keys := newMemoryKeys()
	svc := NewService(repo, nil, keys)

	// Over-quantity fails validation; the key must be freed for a retry.
	_, err := svc.Register(context.Background(), SubjectOrderItem, DirectionOut, "batch-2", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 120, Date: "2024-01-15"},
	}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, keys.released, "batch-2")

	// The corrected batch reuses the key and commits.
	created, err := svc.Register(context.Background(), SubjectOrderItem, DirectionOut, "batch-2", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 80, Date: "2024-01-15"},
	}})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestRegisterStoreFailureReleasesKey(t *testing.T) {
	repo := newMemoryRepo(outboundEligible()...)
	repo.failBatches = true
	keys := newMemoryKeys()
	svc := NewService(repo, nil, keys)

	_, err := svc.Register(context.Background(), SubjectOrderItem, DirectionOut, "batch-3", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 1, Amount: 80, Date: "2024-01-15"},
	}})
	require.Error(t, err)
	assert.Equal(t, 1, repo.batchCalls)
	assert.Contains(t, keys.released, "batch-3")
	assert.Empty(t, keys.keys)
}

func TestSetProcessCompleted(t *testing.T) {
	repo := newMemoryRepo(EligibleRow{SourceID: 9, ItemName: "브라켓"})
	svc := NewService(repo, nil, nil)

	created, err := svc.Register(context.Background(), SubjectOrderItem, DirectionIn, "", RegisterBatchRequest{Rows: []RegisterRow{
		{SourceID: 9, Amount: 100, Date: "2024-01-01"},
	}})
	require.NoError(t, err)

	require.NoError(t, svc.SetProcessCompleted(context.Background(), created[0].ID, true))
	got, err := svc.Get(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", got.IsProcessCompleted)
}
