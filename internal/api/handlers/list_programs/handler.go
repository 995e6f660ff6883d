package list_programs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidAll         = "некорректное значение параметра all"
	msgForbidden          = "неактивные программы доступны только администраторам"
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

// Handle GET /api/v1/programs
// Query params: all (опционально, только для администраторов)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	includeInactive := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		var err error
		includeInactive, err = strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /programs - Invalid all value: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidAll)
			return
		}
	}

	result, err := h.service.List(r.Context(), actor, includeInactive)
	if err != nil {
		switch {
		case errors.Is(err, programs.ErrAccessDenied):
			h.logger.Warn("GET /programs - Access denied: tenant_id=%s, user_id=%s", actor.TenantID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, programs.ErrStorageUnavailable):
			h.logger.Error("GET /programs - Storage unavailable: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /programs - Failed to list programs: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /programs - Programs retrieved successfully: tenant_id=%s, count=%d",
		actor.TenantID, len(result.Programs))
	handlers.RespondJSON(w, http.StatusOK, result.Programs)
}
