package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/pkg/ptr"
	"github.com/mark-szabo/carwash/pkg/types"
)

func TestTimeRequirement(t *testing.T) {
	cfg := ReservationConfig{TimeUnit: 12, CarpetCleaningMultiplier: 3}

	tests := []struct {
		name     string
		services []ServiceType
		want     int
	}{
		{"exterior only", []ServiceType{ServiceExterior}, 12},
		{"with carpet", []ServiceType{ServiceExterior, ServiceCarpet}, 36},
		{"carpet only", []ServiceType{ServiceCarpet}, 36},
		{"empty", nil, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.TimeRequirement(tt.services))
		})
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizePlate(" abc-123 "))
	assert.Equal(t, "MSX001", NormalizePlate("m s x - 0 0 1"))
}

func TestInitialState(t *testing.T) {
	assert.Equal(t, StateSubmittedNotActual, InitialState(false, ptr.Ptr("B/-1/12")))
	assert.Equal(t, StateSubmittedNotActual, InitialState(true, nil))
	assert.Equal(t, StateSubmittedNotActual, InitialState(true, ptr.Ptr("  ")))
	assert.Equal(t, StateDropoffAndLocationConfirmed, InitialState(true, ptr.Ptr("B/-1/12")))
}

func TestUser_CanActFor(t *testing.T) {
	owner := &User{ID: "u1", Company: "contoso"}
	colleagueAdmin := &User{ID: "a1", Company: "contoso", IsAdmin: true}
	foreignAdmin := &User{ID: "a2", Company: "fabrikam", IsAdmin: true}
	carwash := &User{ID: "c1", Company: "carwash", IsCarwashAdmin: true}
	stranger := &User{ID: "u2", Company: "contoso"}

	assert.True(t, owner.CanActFor(owner))
	assert.True(t, colleagueAdmin.CanActFor(owner))
	assert.False(t, foreignAdmin.CanActFor(owner))
	assert.True(t, carwash.CanActFor(owner))
	assert.False(t, stranger.CanActFor(owner))
}

func TestBlocker_Blocks(t *testing.T) {
	b := Blocker{
		StartDate: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC),
	}

	assert.True(t, b.Blocks(time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC), time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)))
	// strict containment: coinciding bounds are not blocked
	assert.False(t, b.Blocks(b.StartDate, time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)))
	assert.False(t, b.Blocks(time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 11, 11, 0, 0, 0, time.UTC)))
}

func TestTransitions(t *testing.T) {
	t.Run("complete wash on private goes to not yet paid", func(t *testing.T) {
		next, err := TransitionCompleteWash.Apply(&Reservation{State: StateWashInProgress, Private: true})
		require.NoError(t, err)
		assert.Equal(t, StateNotYetPaid, next)
	})

	t.Run("complete wash on company car is done", func(t *testing.T) {
		next, err := TransitionCompleteWash.Apply(&Reservation{State: StateWashInProgress})
		require.NoError(t, err)
		assert.Equal(t, StateDone, next)
	})

	t.Run("confirm payment requires not yet paid", func(t *testing.T) {
		_, err := TransitionConfirmPayment.Apply(&Reservation{State: StateWashInProgress})
		assert.ErrorIs(t, err, ErrInvalidTransition)

		next, err := TransitionConfirmPayment.Apply(&Reservation{State: StateNotYetPaid})
		require.NoError(t, err)
		assert.Equal(t, StateDone, next)
	})

	t.Run("done is terminal for forward edges", func(t *testing.T) {
		for _, tr := range []Transition{TransitionConfirmDropoff, TransitionStartWash, TransitionCompleteWash, TransitionConfirmPayment} {
			_, err := tr.Apply(&Reservation{State: StateDone})
			assert.ErrorIs(t, err, ErrInvalidTransition, tr.Name)
		}
	})
}

func TestSlotCalendar(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	cal := &SlotCalendar{
		Location: loc,
		Slots: []Slot{
			{StartTime: "08:00", EndTime: "11:00", Capacity: 4},
			{StartTime: "11:00", EndTime: "14:00", Capacity: 4},
			{StartTime: "14:00", EndTime: "17:00", Capacity: 2},
		},
	}

	assert.Equal(t, 10, cal.TotalCapacity())

	s, ok := cal.FindByStart(time.Date(2024, 1, 10, 11, 0, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, 4, s.Capacity)

	_, ok = cal.FindByStart(time.Date(2024, 1, 10, 11, 0, 30, 0, loc))
	assert.False(t, ok, "sub-minute offset must not match a slot")

	s, ok = cal.FindByBounds(time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC), time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, types.TimeString("08:00"), s.StartTime)

	_, ok = cal.FindByBounds(time.Date(2024, 1, 10, 8, 0, 0, 0, loc), time.Date(2024, 1, 10, 14, 0, 0, 0, loc))
	assert.False(t, ok)

	_, ok = cal.FindByBounds(time.Date(2024, 1, 10, 8, 0, 0, 0, loc), time.Date(2024, 1, 10, 11, 0, 0, 1, loc))
	assert.False(t, ok)

	start, end := cal.DayBounds(time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 11, 23, 0, 0, 0, time.UTC), end)
}

func TestServiceType_IsValid(t *testing.T) {
	assert.True(t, ServiceCarpet.IsValid())
	assert.True(t, ServiceWindshieldWash.IsValid())
	assert.False(t, ServiceType("teleport").IsValid())
}
