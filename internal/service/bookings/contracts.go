package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error)
	ListByTenant(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error)
	SetStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.BookingStatus) error
	CountConfirmedOn(ctx context.Context, tenantID uuid.UUID, date time.Time) (int, error)
	CountConfirmedFrom(ctx context.Context, tenantID uuid.UUID, from time.Time) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс для учёта отмен
type Metrics interface {
	IncCancellation()
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

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }
