package create_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/profileservice"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
)

type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

// ProfileClient источник отображаемого имени, когда в токене его нет
type ProfileClient interface {
	GetProfileWithGracefulDegradation(ctx context.Context, userID uuid.UUID) (*profileservice.Profile, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
