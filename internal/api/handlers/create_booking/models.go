package create_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

var (
	errInvalidProgramID = errors.New("invalid program id")
	errInvalidDate      = errors.New("invalid booking date")
	errInvalidSlot      = errors.New("invalid slot time")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProgramID string `json:"programId"`
	Date      string `json:"date"` // "2024-06-03"
	Slot      string `json:"slot"` // "09:00"
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"companyId"`
	ProgramID uuid.UUID `json:"programId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Компания и пользователь берутся из токена, а не из тела запроса; имя заполняет обработчик
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor, idempotencyKey string) (*createBooking.Request, error) {
	programID, err := uuid.Parse(r.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidProgramID, err)
	}

	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	slot := types.TimeString(r.Slot)
	if err := slot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSlot, err)
	}

	return &createBooking.Request{
		UserID:         actor.UserID,
		TenantID:       actor.TenantID,
		UserEmail:      actor.Email,
		ProgramID:      programID,
		Date:           date,
		Slot:           slot,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:        resp.ID,
		TenantID:  resp.TenantID,
		ProgramID: resp.ProgramID,
		UserID:    resp.UserID,
		UserName:  resp.UserName,
		UserEmail: resp.UserEmail,
		Date:      resp.BookingDate.Format(domain.DateFormat),
		Slot:      resp.SlotTime.String(),
		Status:    resp.Status,
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
