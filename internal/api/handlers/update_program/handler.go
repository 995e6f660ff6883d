package update_program

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs/models"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidProgramID   = "некорректный ID программы"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "программа не найдена"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные программы"
	msgStorageUnavailable = "хранилище временно недоступно, программа не обновлена"
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

// Handle PATCH /api/v1/programs/{programId}
// Обновляются только переданные поля
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	programID, err := handlers.PathUUID(r, "programId")
	if err != nil {
		h.logger.Warn("PATCH /programs/{id} - Invalid program ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProgramID)
		return
	}

	var req models.UpdateProgramRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /programs/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Сервис сам проверит права администратора
	result, err := h.service.Update(r.Context(), actor, programID, &req)
	if err != nil {
		switch {
		case errors.Is(err, programs.ErrProgramNotFound):
			h.logger.Warn("PATCH /programs/{id} - Program not found: program_id=%s", programID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, programs.ErrAccessDenied):
			h.logger.Warn("PATCH /programs/{id} - Access denied: program_id=%s, user_id=%s", programID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, programs.ErrInvalidInput):
			h.logger.Warn("PATCH /programs/{id} - Invalid data: program_id=%s, error=%v", programID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, programs.ErrStorageUnavailable):
			h.logger.Error("PATCH /programs/{id} - Storage unavailable: program_id=%s, error=%v", programID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("PATCH /programs/{id} - Failed to update program: program_id=%s, error=%v", programID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /programs/{id} - Program updated successfully: program_id=%s", result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
