package delete_program

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidProgramID   = "некорректный ID программы"
	msgNotFound           = "программа не найдена"
	msgForbidden          = "доступ запрещен"
	msgStorageUnavailable = "хранилище временно недоступно, программа не удалена"
)

type Handler struct {
	service ProgramService
	logger  Logger
}

func NewHandler(service ProgramService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/programs/{programId}
// Бронирования программы удаляются вместе с ней
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	programID, err := handlers.PathUUID(r, "programId")
	if err != nil {
		h.logger.Warn("DELETE /programs/{id} - Invalid program ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProgramID)
		return
	}

	if err := h.service.Delete(r.Context(), actor, programID); err != nil {
		switch {
		case errors.Is(err, programs.ErrProgramNotFound):
			h.logger.Warn("DELETE /programs/{id} - Program not found: program_id=%s", programID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, programs.ErrAccessDenied):
			h.logger.Warn("DELETE /programs/{id} - Access denied: program_id=%s, user_id=%s", programID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, programs.ErrStorageUnavailable):
			h.logger.Error("DELETE /programs/{id} - Storage unavailable: program_id=%s, error=%v", programID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("DELETE /programs/{id} - Failed to delete program: program_id=%s, error=%v", programID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /programs/{id} - Program deleted successfully: program_id=%s", programID)
	handlers.RespondNoContent(w)
}
