package slotcalendar

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mark-szabo/carwash/internal/domain"
)

// File on-disk shape of a tenant's slot calendar
type File struct {
	Slots []domain.Slot `yaml:"slots"`
}

// Load reads the YAML slot list at path and binds it to the provider time zone
func Load(path string, timeZoneID string) (*domain.SlotCalendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	return Parse(data, timeZoneID)
}

// Parse decodes and validates a slot calendar document
func Parse(data []byte, timeZoneID string) (*domain.SlotCalendar, error) {
	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	loc, err := time.LoadLocation(timeZoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q: %v", ErrInvalid, timeZoneID, err)
	}

	slots := append([]domain.Slot(nil), f.Slots...)
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.IsBefore(slots[j].StartTime)
	})

	if err := Validate(slots); err != nil {
		return nil, err
	}

	return &domain.SlotCalendar{Slots: slots, Location: loc}, nil
}

// Validate checks that slots are well-formed, ordered and non-overlapping
func Validate(slots []domain.Slot) error {
	if len(slots) == 0 {
		return fmt.Errorf("%w: no slots configured", ErrInvalid)
	}

	for i, s := range slots {
		if err := s.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: slot %d start: %v", ErrInvalid, i, err)
		}
		if err := s.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: slot %d end: %v", ErrInvalid, i, err)
		}
		if !s.EndTime.IsAfter(s.StartTime) {
			return fmt.Errorf("%w: slot %s-%s ends before it starts", ErrInvalid, s.StartTime, s.EndTime)
		}
		if s.Capacity <= 0 {
			return fmt.Errorf("%w: slot %s-%s has capacity %d", ErrInvalid, s.StartTime, s.EndTime, s.Capacity)
		}
		if i > 0 && s.StartTime.IsBefore(slots[i-1].EndTime) {
			return fmt.Errorf("%w: slot %s-%s overlaps %s-%s", ErrInvalid,
				s.StartTime, s.EndTime, slots[i-1].StartTime, slots[i-1].EndTime)
		}
	}
	return nil
}
