package get_available_dates

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
	CountConfirmedBySlotInRange(ctx context.Context, programID uuid.UUID, from, to time.Time) (map[string]map[types.TimeString]int, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
