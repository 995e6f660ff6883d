package domain

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// AvailableSlot represents a time slot that still has free seats
type AvailableSlot struct {
	Time           types.TimeString
	SeatsRemaining int
	SeatsTotal     int
}

// IsFullyAvailable returns true if no seat is taken yet
func (s *AvailableSlot) IsFullyAvailable() bool {
	return s.SeatsRemaining == s.SeatsTotal
}

// AvailableDate is an eligible date with at least one free seat
type AvailableDate struct {
	Date           time.Time
	SeatsRemaining int // sum over all slots of the date
}

// CalculateAvailableSlots derives the free seats of every enabled slot from the
// confirmed counts per slot. Slots without free seats are left out.
// Slots missing from confirmed are treated as empty.
func CalculateAvailableSlots(program *Program, confirmed map[types.TimeString]int) []AvailableSlot {
	enabled := program.EnabledSlots()
	result := make([]AvailableSlot, 0, len(enabled))

	for _, slot := range enabled {
		remaining := program.SeatsPerSlot - confirmed[slot]
		if remaining <= 0 {
			continue
		}
		result = append(result, AvailableSlot{
			Time:           slot,
			SeatsRemaining: remaining,
			SeatsTotal:     program.SeatsPerSlot,
		})
	}

	return result
}

// TotalRemaining sums free seats over slots
func TotalRemaining(slots []AvailableSlot) int {
	total := 0
	for _, s := range slots {
		total += s.SeatsRemaining
	}
	return total
}
