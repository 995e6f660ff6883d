package get_available_slots

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ProgramID uuid.UUID       `json:"programId"`
	Date      string          `json:"date"`
	Eligible  bool            `json:"eligible"`
	Slots     []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Time           string `json:"time"`
	SeatsRemaining int    `json:"seatsRemaining"`
	SeatsTotal     int    `json:"seatsTotal"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Time:           slot.Time.String(),
			SeatsRemaining: slot.SeatsRemaining,
			SeatsTotal:     slot.SeatsTotal,
		}
	}

	return &AvailableSlotsResponse{
		ProgramID: resp.ProgramID,
		Date:      resp.Date.Format(domain.DateFormat),
		Eligible:  resp.Eligible,
		Slots:     slots,
	}
}
