package movement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func outboundBatch(rows ...EligibleRow) *Batch {
	b := NewBatch(SubjectOrderItem, DirectionOut)
	b.Load(rows)
	return b
}

func TestLoadReadiesBatch(t *testing.T) {
	b := NewBatch(SubjectMaterial, DirectionIn)
	assert.Equal(t, StateLoading, b.State())

	b.Load([]EligibleRow{{SourceID: 1, ItemName: "아연도금강판"}})
	assert.Equal(t, StateReady, b.State())
	assert.Len(t, b.Rows(), 1)
}

func TestLoadDiscardsPriorState(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-01"), IsProcessCompleted: "Y",
	})
	require.NoError(t, b.EditAmount(1, 80))
	require.True(t, b.Selected(1))

	// A reload replaces the row set entirely; the old row is gone and its
	// selection and edits with it.
	b.Load([]EligibleRow{{SourceID: 2, ItemName: "커버", InAmount: 50, InDate: day("2024-01-10"), IsProcessCompleted: "Y"}})
	assert.Equal(t, StateReady, b.State())
	assert.Len(t, b.Rows(), 1)
	assert.False(t, b.Selected(1))

	err := b.EditAmount(1, 10)
	assert.ErrorIs(t, err, ErrRowUnknown)
	amount, date := b.Edit(1)
	assert.Zero(t, amount)
	assert.True(t, date.IsZero())
}

func TestEditIneligibleRowRejected(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 2, ItemName: "프레임", InAmount: 50,
		InDate: day("2024-01-10"), IsProcessCompleted: "N",
	})

	err := b.EditAmount(2, 10)
	require.ErrorIs(t, err, ErrRowIneligible)
	assert.Contains(t, err.Error(), "프레임")

	err = b.EditDate(2, day("2024-01-20"))
	require.ErrorIs(t, err, ErrRowIneligible)

	// Values untouched, row not selected.
	amount, date := b.Edit(2)
	assert.Zero(t, amount)
	assert.True(t, date.IsZero())
	assert.False(t, b.Selected(2))
}

func TestSelectIneligibleRowRejected(t *testing.T) {
	b := outboundBatch(EligibleRow{SourceID: 2, ItemName: "프레임", IsProcessCompleted: "N"})

	err := b.Select(2)
	require.ErrorIs(t, err, ErrRowIneligible)
	assert.False(t, b.Selected(2))
}

func TestEditAutoSelectsEligibleRow(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-01"), IsProcessCompleted: "Y",
	})

	require.NoError(t, b.EditAmount(1, 80))
	assert.True(t, b.Selected(1))
}

func TestInboundRowsAlwaysEligible(t *testing.T) {
	b := NewBatch(SubjectOrderItem, DirectionIn)
	b.Load([]EligibleRow{{SourceID: 7, ItemName: "브라켓"}})

	require.NoError(t, b.EditAmount(7, 100))
	assert.True(t, b.Selected(7))
}

func TestValidateRequiresQuantityAndDate(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-01"), IsProcessCompleted: "Y",
	})
	require.NoError(t, b.EditAmount(1, 80))

	_, err := b.Validate()
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "브라켓")
	assert.Equal(t, StateError, b.State())
}

func TestValidateOverQuantityNamesItem(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-01"), IsProcessCompleted: "Y",
	})
	require.NoError(t, b.EditAmount(1, 120))
	require.NoError(t, b.EditDate(1, day("2024-01-15")))

	_, err := b.Validate()
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "브라켓")
	assert.Contains(t, err.Error(), "exceeds its inbound quantity")
}

func TestValidateDateBeforeInboundNamesItem(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-10"), IsProcessCompleted: "Y",
	})
	require.NoError(t, b.EditAmount(1, 80))
	require.NoError(t, b.EditDate(1, day("2024-01-05")))

	_, err := b.Validate()
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "precedes its inbound date")
}

func TestValidateFirstFailureWinsInLoadOrder(t *testing.T) {
	b := outboundBatch(
		EligibleRow{SourceID: 1, ItemName: "브라켓", InAmount: 100, InDate: day("2024-01-01"), IsProcessCompleted: "Y"},
		EligibleRow{SourceID: 2, ItemName: "커버", InAmount: 50, InDate: day("2024-01-01"), IsProcessCompleted: "Y"},
	)
	require.NoError(t, b.EditAmount(1, 200))
	require.NoError(t, b.EditDate(1, day("2024-01-15")))
	require.NoError(t, b.EditAmount(2, 60))
	require.NoError(t, b.EditDate(2, day("2024-01-15")))

	_, err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "브라켓")
	assert.NotContains(t, err.Error(), "커버")
}

func TestValidatePassingBatchCarriesAllSelectedRows(t *testing.T) {
	b := outboundBatch(
		EligibleRow{SourceID: 1, ItemName: "브라켓", InAmount: 100, InDate: day("2024-01-01"), IsProcessCompleted: "Y"},
		EligibleRow{SourceID: 2, ItemName: "커버", InAmount: 50, InDate: day("2024-01-01"), IsProcessCompleted: "Y"},
		EligibleRow{SourceID: 3, ItemName: "힌지", InAmount: 30, InDate: day("2024-01-01"), IsProcessCompleted: "Y"},
	)
	require.NoError(t, b.EditAmount(1, 80))
	require.NoError(t, b.EditDate(1, day("2024-01-15")))
	require.NoError(t, b.EditAmount(3, 30))
	require.NoError(t, b.EditDate(3, day("2024-01-20")))

	rows, err := b.Validate()
	require.NoError(t, err)
	require.Len(t, rows, 2, "unselected rows stay out of the submission")
	assert.Equal(t, int64(1), rows[0].SourceID)
	assert.Equal(t, int64(3), rows[1].SourceID)
	assert.Equal(t, StateSubmitting, b.State())
}

func TestValidateEmptySelection(t *testing.T) {
	b := outboundBatch(EligibleRow{SourceID: 1, ItemName: "브라켓", IsProcessCompleted: "Y"})

	_, err := b.Validate()
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCompleteFailureKeepsEdits(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-01"), IsProcessCompleted: "Y",
	})
	require.NoError(t, b.EditAmount(1, 80))
	require.NoError(t, b.EditDate(1, day("2024-01-15")))
	_, err := b.Validate()
	require.NoError(t, err)

	b.Complete(assert.AnError)
	assert.Equal(t, StateError, b.State())
	assert.True(t, b.Selected(1), "failed submission keeps the selection")
	amount, _ := b.Edit(1)
	assert.Equal(t, 80.0, amount)

	b.Complete(nil)
	assert.Equal(t, StateReady, b.State())
	assert.False(t, b.Selected(1), "successful submission clears the selection")
}

func TestDeselectKeepsEdits(t *testing.T) {
	b := outboundBatch(EligibleRow{
		SourceID: 1, ItemName: "브라켓", InAmount: 100,
		InDate: day("2024-01-01"), IsProcessCompleted: "Y",
	})
	require.NoError(t, b.EditAmount(1, 80))

	b.Deselect(1)
	assert.False(t, b.Selected(1))
	amount, _ := b.Edit(1)
	assert.Equal(t, 80.0, amount)
}

func TestEditUnknownRow(t *testing.T) {
	b := outboundBatch()

	err := b.EditAmount(99, 10)
	assert.ErrorIs(t, err, ErrRowUnknown)
}
