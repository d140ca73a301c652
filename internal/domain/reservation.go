package domain

import (
	"strings"
	"time"
)

// State lifecycle state of a reservation
type State string

const (
	StateSubmittedNotActual          State = "submitted_not_actual"
	StateReminderSentWaitingForKey   State = "reminder_sent_waiting_for_key"
	StateDropoffAndLocationConfirmed State = "dropoff_and_location_confirmed"
	StateWashInProgress              State = "wash_in_progress"
	StateNotYetPaid                  State = "not_yet_paid"
	StateDone                        State = "done"
)

// AllStates in lifecycle order
var AllStates = []State{
	StateSubmittedNotActual,
	StateReminderSentWaitingForKey,
	StateDropoffAndLocationConfirmed,
	StateWashInProgress,
	StateNotYetPaid,
	StateDone,
}

// IsValid returns true for known states
func (s State) IsValid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// ServiceType wash service code
type ServiceType string

const (
	ServiceExterior       ServiceType = "exterior"
	ServiceInterior       ServiceType = "interior"
	ServiceCarpet         ServiceType = "carpet"
	ServiceSpotCleaning   ServiceType = "spot_cleaning"
	ServiceVignette       ServiceType = "vignette"
	ServiceAcFragrance    ServiceType = "ac_fragrance"
	ServiceLeatherCare    ServiceType = "leather_care"
	ServiceWindshieldWash ServiceType = "windshield_wash"
)

var knownServices = map[ServiceType]struct{}{
	ServiceExterior:       {},
	ServiceInterior:       {},
	ServiceCarpet:         {},
	ServiceSpotCleaning:   {},
	ServiceVignette:       {},
	ServiceAcFragrance:    {},
	ServiceLeatherCare:    {},
	ServiceWindshieldWash: {},
}

// IsValid returns true for known service codes
func (s ServiceType) IsValid() bool {
	_, ok := knownServices[s]
	return ok
}

// CommentRole who wrote a comment
type CommentRole string

const (
	CommentRoleUser    CommentRole = "user"
	CommentRoleCarwash CommentRole = "carwash"
)

// Comment entry in a reservation's conversation
type Comment struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Role      CommentRole `json:"role"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
}

// Reservation a booked wash in one slot.
// StartDate and EndDate are UTC instants matching a configured slot's bounds.
type Reservation struct {
	ID                 int64
	UserID             string
	CreatedByID        string
	VehiclePlateNumber string
	Services           []ServiceType
	StartDate          time.Time
	EndDate            *time.Time
	TimeRequirement    int // minutes
	State              State
	Private            bool
	Mpv                bool
	Location           *string // "building/floor/spot"
	Comments           []Comment
	KeyLockerBoxID     *string
	CalendarEventID    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDone returns true once the reservation left the active lifecycle
func (r *Reservation) IsDone() bool {
	return r.State == StateDone
}

// InitialState state a newly created reservation starts in
func InitialState(dropoffPreConfirmed bool, location *string) State {
	if dropoffPreConfirmed && location != nil && strings.TrimSpace(*location) != "" {
		return StateDropoffAndLocationConfirmed
	}
	return StateSubmittedNotActual
}

// NormalizePlate uppercases and strips spaces and dashes
func NormalizePlate(plate string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(plate)))
}
