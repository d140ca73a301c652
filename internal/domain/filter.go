package domain

import "time"

// ReservationFilter selection criteria shared by listing and aggregate queries.
// Nil fields are not applied.
type ReservationFilter struct {
	UserID      *string
	Company     *string    // owner's company
	StartAt     *time.Time // exact slot start
	StartFrom   *time.Time // inclusive
	StartBefore *time.Time // exclusive
	PlateNumber *string
	States      []State
	ExcludeID   *int64
	Limit       uint64
}

// Matches evaluates the filter in memory; ownerCompany is the company of r's owner
func (f ReservationFilter) Matches(r *Reservation, ownerCompany string) bool {
	switch {
	case f.UserID != nil && r.UserID != *f.UserID:
		return false
	case f.Company != nil && ownerCompany != *f.Company:
		return false
	case f.StartAt != nil && !r.StartDate.Equal(*f.StartAt):
		return false
	case f.StartFrom != nil && r.StartDate.Before(*f.StartFrom):
		return false
	case f.StartBefore != nil && !r.StartDate.Before(*f.StartBefore):
		return false
	case f.PlateNumber != nil && r.VehiclePlateNumber != *f.PlateNumber:
		return false
	case f.ExcludeID != nil && r.ID == *f.ExcludeID:
		return false
	case len(f.States) > 0 && !containsState(f.States, r.State):
		return false
	}
	return true
}
