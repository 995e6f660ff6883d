package programs

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// ProgramRepository интерфейс репозитория программ
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (*domain.Program, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Program, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*domain.Program, error)
	Update(ctx context.Context, program *domain.Program) (*domain.Program, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
