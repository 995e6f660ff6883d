package create_program

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
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные программы"
	msgStorageUnavailable = "хранилище временно недоступно, программа не создана"
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

// Handle POST /api/v1/programs
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.CreateProgramRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /programs - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Сервис сам проверит права администратора
	result, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, programs.ErrAccessDenied):
			h.logger.Warn("POST /programs - Access denied: tenant_id=%s, user_id=%s", actor.TenantID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, programs.ErrInvalidInput):
			h.logger.Warn("POST /programs - Invalid data: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, programs.ErrStorageUnavailable):
			h.logger.Error("POST /programs - Storage unavailable: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("POST /programs - Failed to create program: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /programs - Program created successfully: tenant_id=%s, program_id=%s", actor.TenantID, result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
