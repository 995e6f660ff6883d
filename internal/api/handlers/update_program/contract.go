package update_program

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs/models"
)

type ProgramService interface {
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *models.UpdateProgramRequest) (*models.ProgramResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
