package get_program

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
	msgStorageUnavailable = "хранилище временно недоступно, повторите запрос позже"
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

// Handle GET /api/v1/programs/{programId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	programID, err := handlers.PathUUID(r, "programId")
	if err != nil {
		h.logger.Warn("GET /programs/{id} - Invalid program ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProgramID)
		return
	}

	result, err := h.service.GetByID(r.Context(), actor, programID)
	if err != nil {
		switch {
		case errors.Is(err, programs.ErrProgramNotFound):
			h.logger.Warn("GET /programs/{id} - Program not found: program_id=%s", programID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, programs.ErrStorageUnavailable):
			h.logger.Error("GET /programs/{id} - Storage unavailable: program_id=%s, error=%v", programID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /programs/{id} - Failed to get program: program_id=%s, error=%v", programID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /programs/{id} - Program retrieved successfully: program_id=%s", programID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
