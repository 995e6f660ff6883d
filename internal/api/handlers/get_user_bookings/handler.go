package get_user_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidStatus      = "некорректный статус, ожидается confirmed или cancelled"
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

// Handle GET /api/v1/me/bookings
// Query params: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	// Получаем status из query параметров (опционально)
	var serviceReq models.GetUserBookingsRequest
	if status := r.URL.Query().Get("status"); status != "" {
		serviceReq.Status = &status
	}

	result, err := h.service.GetUserBookings(r.Context(), actor, &serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /me/bookings - Invalid status: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, bookings.ErrStorageUnavailable):
			h.logger.Error("GET /me/bookings - Storage unavailable: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /me/bookings - Failed to get bookings: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /me/bookings - Bookings retrieved successfully: user_id=%s, count=%d",
		actor.UserID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
