package movement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatMovementNo(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "LOT-20240115-0003", formatMovementNo("LOT", day, 3))
	require.Equal(t, "OUT-20240115-0012", formatMovementNo("OUT", day, 12))
}

func TestNumberingLockKeyIsPerPrefixAndDay(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "movement_no:LOT:20240115", numberingLockKey("LOT", day))

	// Distinct screens and distinct days must never share a lock.
	require.NotEqual(t, numberingLockKey("LOT", day), numberingLockKey("OUT", day))
	require.NotEqual(t, numberingLockKey("IN", day), numberingLockKey("IN", day.AddDate(0, 0, 1)))

	// Same screen, same day always maps to the same lock.
	require.Equal(t, numberingLockKey("OUT", day), numberingLockKey("OUT", day.Add(5*time.Hour)))
}
