package get_company_stats

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgForbidden          = "доступ запрещен"
	msgStorageUnavailable = "хранилище временно недоступно, повторите запрос позже"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/company/stats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	stats, err := h.service.Stats(r.Context(), actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /company/stats - Access denied: tenant_id=%s, user_id=%s", actor.TenantID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrStorageUnavailable):
			h.logger.Error("GET /company/stats - Storage unavailable: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /company/stats - Failed to get stats: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /company/stats - Stats retrieved: tenant_id=%s, today=%d, upcoming=%d",
		actor.TenantID, stats.ConfirmedToday, stats.ConfirmedUpcoming)
	handlers.RespondJSON(w, http.StatusOK, stats)
}
