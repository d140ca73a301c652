package domain

// Company tenant organisation; DailyLimit in capacity units, 0 disables per-company tracking
type Company struct {
	Name       string
	DailyLimit int
}

// TracksDailyLimit returns true when the company has its own daily budget
func (c *Company) TracksDailyLimit() bool {
	return c.DailyLimit > 0
}
