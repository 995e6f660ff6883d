package delete_program

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

type ProgramService interface {
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
