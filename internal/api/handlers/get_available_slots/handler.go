package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_slots"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidProgramID   = "некорректный ID программы"
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные параметры запроса"
	msgProgramNotFound    = "программа не найдена"
	msgStorageUnavailable = "хранилище временно недоступно, повторите запрос позже"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/programs/{programId}/available-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	// Извлекаем programId из URL
	programID, err := handlers.PathUUID(r, "programId")
	if err != nil {
		h.logger.Warn("GET /programs/{id}/available-slots - Invalid program ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProgramID)
		return
	}

	// Извлекаем date из query параметров
	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		h.logger.Warn("GET /programs/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if date == nil {
		h.logger.Warn("GET /programs/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		UserID:    actor.UserID,
		TenantID:  actor.TenantID,
		ProgramID: programID,
		Date:      *date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrProgramNotFound):
			h.logger.Warn("GET /programs/{id}/available-slots - Program not found: program_id=%s", programID)
			handlers.RespondNotFound(w, msgProgramNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /programs/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrStorageUnavailable):
			h.logger.Error("GET /programs/{id}/available-slots - Storage unavailable: program_id=%s, error=%v", programID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("GET /programs/{id}/available-slots - Failed to get slots: program_id=%s, error=%v", programID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /programs/{id}/available-slots - Slots retrieved successfully: program_id=%s, date=%s, slots_count=%d",
		programID, date.Format(domain.DateFormat), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
