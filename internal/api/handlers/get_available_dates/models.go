package get_available_dates

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	getAvailableDates "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_dates"
)

// AvailableDatesResponse HTTP response model
type AvailableDatesResponse struct {
	ProgramID uuid.UUID       `json:"programId"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Dates     []AvailableDate `json:"dates"`
}

// AvailableDate дата со свободными местами
type AvailableDate struct {
	Date           string `json:"date"`
	SeatsRemaining int    `json:"seatsRemaining"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableDates.Response) *AvailableDatesResponse {
	dates := make([]AvailableDate, len(resp.Dates))
	for i, d := range resp.Dates {
		dates[i] = AvailableDate{
			Date:           d.Date.Format(domain.DateFormat),
			SeatsRemaining: d.SeatsRemaining,
		}
	}

	return &AvailableDatesResponse{
		ProgramID: resp.ProgramID,
		From:      resp.From.Format(domain.DateFormat),
		To:        resp.To.Format(domain.DateFormat),
		Dates:     dates,
	}
}
