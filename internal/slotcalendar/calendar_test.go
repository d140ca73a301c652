package slotcalendar

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/domain"
)

const sample = `
slots:
  - start: "11:00"
    end: "14:00"
    capacity: 4
  - start: "08:00"
    end: "11:00"
    capacity: 4
  - start: "14:00"
    end: "17:00"
    capacity: 2
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cal, err := Load(path, "Europe/Budapest")
	require.NoError(t, err)

	require.Len(t, cal.Slots, 3)
	assert.Equal(t, "08:00", cal.Slots[0].StartTime.String())
	assert.Equal(t, "14:00", cal.Slots[2].StartTime.String())
	assert.Equal(t, 10, cal.TotalCapacity())
	assert.Equal(t, "Europe/Budapest", cal.Location.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "UTC")
	assert.ErrorIs(t, err, ErrRead)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		tz   string
		want error
	}{
		{"bad yaml", "slots: [", "UTC", ErrParse},
		{"unknown zone", sample, "Mars/Olympus", ErrInvalid},
		{"empty", "slots: []", "UTC", ErrInvalid},
		{"overlap", "slots:\n  - {start: \"08:00\", end: \"11:00\", capacity: 1}\n  - {start: \"10:00\", end: \"12:00\", capacity: 1}\n", "UTC", ErrInvalid},
		{"reversed", "slots:\n  - {start: \"11:00\", end: \"08:00\", capacity: 1}\n", "UTC", ErrInvalid},
		{"zero capacity", "slots:\n  - {start: \"08:00\", end: \"11:00\", capacity: 0}\n", "UTC", ErrInvalid},
		{"bad time", "slots:\n  - {start: \"8am\", end: \"11:00\", capacity: 1}\n", "UTC", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.tz)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_AdjacentSlotsAllowed(t *testing.T) {
	err := Validate([]domain.Slot{
		{StartTime: "08:00", EndTime: "11:00", Capacity: 1},
		{StartTime: "11:00", EndTime: "14:00", Capacity: 1},
	})
	assert.NoError(t, err)
}
