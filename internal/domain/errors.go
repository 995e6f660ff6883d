package domain

import "errors"

var (
	ErrInvalidScheduleType = errors.New("domain: invalid schedule type")
	ErrInvalidSeats        = errors.New("domain: seats per slot must be at least 1")
	ErrInvalidHorizon      = errors.New("domain: horizon must be one of 7, 14, 30, 180")
	ErrNoWeekdays          = errors.New("domain: recurring program requires at least one weekday")
	ErrInvalidWeekday      = errors.New("domain: weekday must be within 0..6")
	ErrMissingDateRange    = errors.New("domain: date range program requires start and end dates")
	ErrInvalidDateRange    = errors.New("domain: start date is after end date")
	ErrInvalidSlotTime     = errors.New("domain: slot time must be HH:MM")
	ErrInvalidCap          = errors.New("domain: per-user caps must be positive")
)
