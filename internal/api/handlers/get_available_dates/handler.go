package get_available_dates

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	getAvailableDates "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_dates"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidProgramID   = "некорректный ID программы"
	msgInvalidFrom        = "некорректный формат даты начала, ожидается YYYY-MM-DD"
	msgInvalidHorizon     = "горизонт должен быть положительным числом дней"
	msgInvalidInput       = "некорректные параметры запроса"
	msgProgramNotFound    = "программа не найдена"
	msgStorageUnavailable = "хранилище временно недоступно, повторите запрос позже"
)

type Handler struct {
	useCase GetAvailableDatesUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableDatesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/programs/{programId}/available-dates
// Query params: from (optional, YYYY-MM-DD), horizon (optional, дней)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	programID, err := handlers.PathUUID(r, "programId")
	if err != nil {
		h.logger.Warn("GET /programs/{id}/available-dates - Invalid program ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProgramID)
		return
	}

	from, err := handlers.QueryDate(r, "from")
	if err != nil {
		h.logger.Warn("GET /programs/{id}/available-dates - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFrom)
		return
	}

	var horizon int
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		horizon, err = strconv.Atoi(raw)
		if err != nil || horizon <= 0 {
			h.logger.Warn("GET /programs/{id}/available-dates - Invalid horizon: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidHorizon)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableDates.Request{
		TenantID:    actor.TenantID,
		ProgramID:   programID,
		From:        from,
		HorizonDays: horizon,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableDates.ErrProgramNotFound):
			h.logger.Warn("GET /programs/{id}/available-dates - Program not found: program_id=%s", programID)
			handlers.RespondNotFound(w, msgProgramNotFound)

		case errors.Is(err, getAvailableDates.ErrInvalidInput):
			h.logger.Warn("GET /programs/{id}/available-dates - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableDates.ErrStorageUnavailable):
			h.logger.Error("GET /programs/{id}/available-dates - Storage unavailable: program_id=%s, error=%v", programID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /programs/{id}/available-dates - Failed to get dates: program_id=%s, error=%v", programID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /programs/{id}/available-dates - Dates retrieved successfully: program_id=%s, dates_count=%d",
		programID, len(result.Dates))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
