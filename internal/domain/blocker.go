package domain

import "time"

// Blocker closed interval during which no reservation may be placed
type Blocker struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
	Comment   *string
}

// Blocks reports whether the blocker strictly contains [start, end]
func (b *Blocker) Blocks(start, end time.Time) bool {
	return b.StartDate.Before(start) && b.EndDate.After(end)
}
