package domain

// AllowedHorizons booking horizons in days (1 week, 2 weeks, 1 month, 6 months)
var AllowedHorizons = []int{7, 14, 30, 180}

// Default program values
const (
	DefaultSessionMinutes = 60
	DefaultHorizonDays    = 30
	DefaultSeatsPerSlot   = 1
)

// Business validation constants
const (
	MinSeatsPerSlot   = 1
	MaxSeatsPerSlot   = 1000
	MaxNameLength     = 200
	MaxSessionMinutes = 480 // 8 hours
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
