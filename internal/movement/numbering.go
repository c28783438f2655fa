package movement

import (
	"fmt"
	"time"
)

// numberPrefix returns the movement-number prefix for one screen. Inbound
// order-item movements are the LOTs the rest of the system tracks.
func numberPrefix(subject Subject, direction Direction) string {
	if direction == DirectionOut {
		return "OUT"
	}
	if subject == SubjectOrderItem {
		return "LOT"
	}
	return "IN"
}

// formatMovementNo builds a movement number from the prefix, the movement
// date and the per-day sequence, e.g. LOT-20240115-0003.
func formatMovementNo(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("20060102"), seq)
}

// numberingLockKey identifies one per-day sequence. Transactions assigning a
// number take an advisory lock on this key so two same-day batches cannot
// read the same count.
func numberingLockKey(prefix string, date time.Time) string {
	return "movement_no:" + prefix + ":" + date.Format("20060102")
}
