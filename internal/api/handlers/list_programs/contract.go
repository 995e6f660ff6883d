package list_programs

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs/models"
)

type ProgramService interface {
	List(ctx context.Context, actor domain.Actor, includeInactive bool) (*models.ProgramListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
