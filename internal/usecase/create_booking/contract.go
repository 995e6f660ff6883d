package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// ProgramRepository интерфейс каталога программ
type ProgramRepository interface {
	// GetByID внутри транзакции блокирует строку программы
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Program, error)
}

// BookingRepository интерфейс журнала бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Booking, error)
	FindConfirmed(ctx context.Context, programID, userID uuid.UUID, date time.Time, slot types.TimeString) (*domain.Booking, error)
	CountConfirmed(ctx context.Context, programID uuid.UUID, date time.Time, slot types.TimeString) (int, error)
	CountConfirmedByUser(ctx context.Context, programID, userID uuid.UUID) (int, error)
	CountConfirmedByUserAndDate(ctx context.Context, programID, userID uuid.UUID, date time.Time) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyStore хранилище ключей идемпотентности (Idempotency-Key -> ID бронирования)
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error)
	Remember(ctx context.Context, userID uuid.UUID, key string, bookingID uuid.UUID) error
}

// Metrics интерфейс для учёта результатов допуска
type Metrics interface {
	IncAdmission(result string)
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
