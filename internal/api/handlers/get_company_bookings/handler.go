package get_company_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidParams      = "некорректные параметры запроса"
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

// Handle GET /api/v1/company/bookings
// Query params: programId, status, from, to (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	serviceReq, err := ToServiceRequest(r)
	if err != nil {
		h.logger.Warn("GET /company/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит права администратора
	result, err := h.service.GetTenantBookings(r.Context(), actor, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /company/bookings - Access denied: tenant_id=%s, user_id=%s", actor.TenantID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /company/bookings - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, bookings.ErrStorageUnavailable):
			h.logger.Error("GET /company/bookings - Storage unavailable: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /company/bookings - Failed to get bookings: tenant_id=%s, error=%v", actor.TenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /company/bookings - Bookings retrieved successfully: tenant_id=%s, count=%d",
		actor.TenantID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
