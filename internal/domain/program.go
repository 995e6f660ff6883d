package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// ScheduleType defines how the eligible dates of a program are derived
type ScheduleType string

const (
	// ScheduleRecurring - weekly pattern over Weekdays
	ScheduleRecurring ScheduleType = "recurring"
	// ScheduleDateRange - every day between StartDate and EndDate inclusive
	ScheduleDateRange ScheduleType = "date_range"
)

// IsValid returns true for known schedule types
func (s ScheduleType) IsValid() bool {
	return s == ScheduleRecurring || s == ScheduleDateRange
}

// Slot is a time of day at which a session starts
type Slot struct {
	Time    types.TimeString `json:"time"`
	Enabled bool             `json:"enabled"`
}

// Program is a bookable offering of a tenant
type Program struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	Description string
	Category    string
	Color       string
	Icon        string
	ImageURL    *string

	ScheduleType ScheduleType
	Weekdays     []int      // 0=Sunday..6=Saturday, recurring only
	StartDate    *time.Time // date_range only, inclusive
	EndDate      *time.Time // date_range only, inclusive
	Slots        []Slot

	SessionMinutes int // informational
	SeatsPerSlot   int
	HorizonDays    int

	// nil = unlimited
	MaxPerUser       *int
	MaxPerUserPerDay *int

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDateEligible reports whether sessions of the program take place on date.
// Only the calendar day of date is considered.
func (p *Program) IsDateEligible(date time.Time) bool {
	switch p.ScheduleType {
	case ScheduleRecurring:
		wd := int(date.Weekday())
		for _, d := range p.Weekdays {
			if d == wd {
				return true
			}
		}
		return false
	case ScheduleDateRange:
		if p.StartDate == nil || p.EndDate == nil {
			return false
		}
		day := types.DateOnly(date)
		return !day.Before(types.DateOnly(*p.StartDate)) && !day.After(types.DateOnly(*p.EndDate))
	default:
		return false
	}
}

// IsWithinHorizon reports whether date lies in [today, today+HorizonDays-1]
func (p *Program) IsWithinHorizon(date, today time.Time) bool {
	day := types.DateOnly(date)
	first := types.DateOnly(today)
	last := first.AddDate(0, 0, p.HorizonDays-1)
	return !day.Before(first) && !day.After(last)
}

// EnabledSlots returns the distinct enabled slot times in ascending order
func (p *Program) EnabledSlots() []types.TimeString {
	seen := make(map[types.TimeString]struct{}, len(p.Slots))
	result := make([]types.TimeString, 0, len(p.Slots))
	for _, s := range p.Slots {
		if !s.Enabled {
			continue
		}
		if _, ok := seen[s.Time]; ok {
			continue
		}
		seen[s.Time] = struct{}{}
		result = append(result, s.Time)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IsBefore(result[j]) })
	return result
}

// HasEnabledSlot returns true if slot is one of the enabled slots
func (p *Program) HasEnabledSlot(slot types.TimeString) bool {
	for _, s := range p.Slots {
		if s.Enabled && s.Time == slot {
			return true
		}
	}
	return false
}

// HasUserCap returns true if the program limits confirmed bookings per user
func (p *Program) HasUserCap() bool {
	return p.MaxPerUser != nil && *p.MaxPerUser > 0
}

// HasUserDayCap returns true if the program limits confirmed bookings per user per day
func (p *Program) HasUserDayCap() bool {
	return p.MaxPerUserPerDay != nil && *p.MaxPerUserPerDay > 0
}

// Validate checks the structural invariants of a program
func (p *Program) Validate() error {
	if !p.ScheduleType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidScheduleType, p.ScheduleType)
	}
	if p.SeatsPerSlot < MinSeatsPerSlot {
		return fmt.Errorf("%w: got %d", ErrInvalidSeats, p.SeatsPerSlot)
	}
	if !IsAllowedHorizon(p.HorizonDays) {
		return fmt.Errorf("%w: got %d", ErrInvalidHorizon, p.HorizonDays)
	}

	switch p.ScheduleType {
	case ScheduleRecurring:
		if len(p.Weekdays) == 0 {
			return ErrNoWeekdays
		}
		for _, d := range p.Weekdays {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
			}
		}
	case ScheduleDateRange:
		if p.StartDate == nil || p.EndDate == nil {
			return ErrMissingDateRange
		}
		if types.DateOnly(*p.StartDate).After(types.DateOnly(*p.EndDate)) {
			return ErrInvalidDateRange
		}
	}

	for _, s := range p.Slots {
		if err := s.Time.Validate(); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidSlotTime, s.Time)
		}
	}

	if p.MaxPerUser != nil && *p.MaxPerUser < 1 {
		return fmt.Errorf("%w: max per user %d", ErrInvalidCap, *p.MaxPerUser)
	}
	if p.MaxPerUserPerDay != nil && *p.MaxPerUserPerDay < 1 {
		return fmt.Errorf("%w: max per user per day %d", ErrInvalidCap, *p.MaxPerUserPerDay)
	}

	return nil
}

// IsAllowedHorizon returns true if days is one of the supported booking horizons
func IsAllowedHorizon(days int) bool {
	for _, h := range AllowedHorizons {
		if h == days {
			return true
		}
	}
	return false
}
