package get_available_slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// ProgramRepository интерфейс каталога программ
type ProgramRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Program, error)
}

// BookingRepository интерфейс журнала бронирований
type BookingRepository interface {
	// CountConfirmedBySlot возвращает число подтверждённых бронирований по слотам даты
	CountConfirmedBySlot(ctx context.Context, programID uuid.UUID, date time.Time) (map[types.TimeString]int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
