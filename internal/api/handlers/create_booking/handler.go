package create_booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
)

// IdempotencyKeyHeader заголовок с ключом идемпотентности клиента
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProgramID   = "некорректный ID программы"
	msgInvalidDate        = "некорректный формат даты занятия, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени слота, ожидается HH:MM"
	msgInvalidInput       = "некорректные данные бронирования"
	msgProgramNotFound    = "программа не найдена"
	msgInvalidSlot        = "программа не проводится в это время"
	msgDateNotBookable    = "на эту дату запись недоступна"
	msgUserCapExceeded    = "достигнут лимит бронирований в этой программе"
	msgUserDayCapExceeded = "достигнут дневной лимит бронирований в этой программе"
	msgSlotFull           = "в выбранном слоте не осталось мест"
	msgDuplicateBooking   = "вы уже записаны на этот слот"
	msgOutcomeUnknown     = "не удалось подтвердить результат бронирования, проверьте свои записи или повторите запрос с тем же Idempotency-Key"
	msgStorageUnavailable = "хранилище временно недоступно, бронирование не создано"
)

type Handler struct {
	useCase  CreateBookingUseCase
	profiles ProfileClient
	logger   Logger
}

// NewHandler создает обработчик; profiles может быть nil
func NewHandler(useCase CreateBookingUseCase, profiles ProfileClient, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		profiles: profiles,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings
// Header: Idempotency-Key (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(actor, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		switch {
		case errors.Is(err, errInvalidProgramID):
			handlers.RespondBadRequest(w, msgInvalidProgramID)
		case errors.Is(err, errInvalidSlot):
			handlers.RespondBadRequest(w, msgInvalidTime)
		default:
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	// Сервис профилей вызывается только для корректного запроса
	useCaseReq.UserName = h.displayName(r.Context(), actor)

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Порядок важен: ErrOutcomeUnknown оборачивает ErrStorageUnavailable
		switch {
		case errors.Is(err, createBooking.ErrProgramNotFound):
			h.logger.Warn("POST /bookings - Program not found: user_id=%s, program_id=%s", actor.UserID, req.ProgramID)
			handlers.RespondNotFound(w, msgProgramNotFound)

		case errors.Is(err, createBooking.ErrInvalidSlot):
			h.logger.Warn("POST /bookings - Invalid slot: user_id=%s, program_id=%s, slot=%s", actor.UserID, req.ProgramID, req.Slot)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, createBooking.ErrDateNotBookable):
			h.logger.Warn("POST /bookings - Date not bookable: user_id=%s, program_id=%s, date=%s", actor.UserID, req.ProgramID, req.Date)
			handlers.RespondBadRequest(w, msgDateNotBookable)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrUserCapExceeded):
			h.logger.Warn("POST /bookings - User cap exceeded: user_id=%s, program_id=%s", actor.UserID, req.ProgramID)
			handlers.RespondConflict(w, msgUserCapExceeded)

		case errors.Is(err, createBooking.ErrUserDayCapExceeded):
			h.logger.Warn("POST /bookings - User day cap exceeded: user_id=%s, program_id=%s, date=%s", actor.UserID, req.ProgramID, req.Date)
			handlers.RespondConflict(w, msgUserDayCapExceeded)

		case errors.Is(err, createBooking.ErrSlotFull):
			h.logger.Warn("POST /bookings - Slot full: program_id=%s, date=%s, slot=%s", req.ProgramID, req.Date, req.Slot)
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, createBooking.ErrDuplicateBooking):
			h.logger.Warn("POST /bookings - Duplicate booking: user_id=%s, program_id=%s, date=%s, slot=%s",
				actor.UserID, req.ProgramID, req.Date, req.Slot)
			handlers.RespondConflict(w, msgDuplicateBooking)

		case errors.Is(err, createBooking.ErrOutcomeUnknown):
			h.logger.Error("POST /bookings - Outcome unknown: user_id=%s, program_id=%s, error=%v", actor.UserID, req.ProgramID, err)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgOutcomeUnknown)

		case errors.Is(err, createBooking.ErrStorageUnavailable):
			h.logger.Error("POST /bookings - Storage unavailable: user_id=%s, program_id=%s, error=%v", actor.UserID, req.ProgramID, err)
			handlers.RespondServiceUnavailable(w, msgStorageUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%s, program_id=%s, error=%v",
				actor.UserID, req.ProgramID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	if result.Replayed {
		h.logger.Info("POST /bookings - Replayed booking: booking_id=%s, user_id=%s", result.ID, actor.UserID)
		handlers.RespondJSON(w, http.StatusOK, response)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%s, program_id=%s",
		result.ID, actor.UserID, result.ProgramID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

// displayName имя для снимка в бронировании: из токена, иначе из профиля, иначе email
func (h *Handler) displayName(ctx context.Context, actor domain.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	if h.profiles == nil {
		return actor.Email
	}

	profile, err := h.profiles.GetProfileWithGracefulDegradation(ctx, actor.UserID)
	if err != nil {
		h.logger.Warn("POST /bookings - Profile lookup failed, using email: user_id=%s, error=%v", actor.UserID, err)
		return actor.Email
	}

	return profile.DisplayName()
}
