package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    uuid.UUID        // ID пользователя
	TenantID  uuid.UUID        // ID компании пользователя
	UserName  string           // Имя для снимка в бронировании
	UserEmail string           // E-mail для снимка в бронировании
	ProgramID uuid.UUID        // ID программы
	Date      time.Time        // Дата занятия (время суток игнорируется)
	Slot      types.TimeString // Время слота (например, "09:00")

	// IdempotencyKey ключ клиента для безопасного повтора запроса (опционально)
	IdempotencyKey string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	ProgramID   uuid.UUID
	UserID      uuid.UUID
	UserName    string
	UserEmail   string
	BookingDate time.Time
	SlotTime    types.TimeString
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Replayed true, если бронирование было создано ранее запросом с тем же Idempotency-Key
	Replayed bool
}
