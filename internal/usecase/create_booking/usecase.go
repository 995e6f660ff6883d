package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	programRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/program"
	"github.com/m04kA/SMC-WellnessBooking/pkg/txmanager"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Результаты допуска для метрик
const (
	resultAdmitted           = "admitted"
	resultReplayed           = "replayed"
	resultInvalidInput       = "invalid_input"
	resultProgramNotFound    = "program_not_found"
	resultInvalidSlot        = "invalid_slot"
	resultDateNotBookable    = "date_not_bookable"
	resultUserCapExceeded    = "user_cap_exceeded"
	resultUserDayCapExceeded = "user_day_cap_exceeded"
	resultSlotFull           = "slot_full"
	resultDuplicate          = "duplicate"
	resultStorageUnavailable = "storage_unavailable"
	resultOutcomeUnknown     = "outcome_unknown"
)

// UseCase use case допуска бронирования
type UseCase struct {
	programRepo  ProgramRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	idempotency  IdempotencyStore
	metrics      Metrics
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// idempotency и metrics могут быть nil, если соответствующие компоненты выключены
func NewUseCase(
	programRepo ProgramRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	idempotency IdempotencyStore,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		programRepo:  programRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		idempotency:  idempotency,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет допуск бронирования
// Все проверки и вставка выполняются в одной транзакции READ COMMITTED, которая начинается
// с блокировки строки программы: допуски в одну программу идут строго по очереди, и каждый
// следующий считает места уже с учётом зафиксированных. Проверки идут в фиксированном
// порядке, первая неудачная определяет ошибку
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%s, tenant=%s, program=%s, date=%s, slot=%s",
		req.UserID, req.TenantID, req.ProgramID, req.Date.Format(domain.DateFormat), req.Slot)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.observe(resultInvalidInput)
		return nil, err
	}

	date := types.DateOnly(req.Date)

	// 2. Повтор запроса с тем же ключом возвращает уже созданное бронирование
	bookingID, replayed := uc.replay(ctx, req)
	if replayed != nil {
		uc.observe(resultReplayed)
		return replayed, nil
	}

	// Ключ сохраняется до транзакции: если ответ о фиксации потеряется,
	// повтор найдёт бронирование по этому ID или создаст его под тем же ID
	uc.remember(ctx, req, bookingID)

	today := types.TodayIn(uc.timeProvider.Now(), uc.location)

	// Переменная для хранения результата
	var result *domain.Booking

	// 3. Выполняем проверки и вставку в транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Программа (строка блокируется до конца транзакции)
		program, err := uc.programRepo.GetByID(txCtx, req.TenantID, req.ProgramID)
		if err != nil {
			if errors.Is(err, programRepo.ErrProgramNotFound) {
				uc.logger.Warn("CreateBooking: program id=%s not found", req.ProgramID)
				return ErrProgramNotFound
			}
			uc.logger.Error("CreateBooking: failed to get program id=%s: %v", req.ProgramID, err)
			return fmt.Errorf("%w: failed to get program: %w", ErrStorageUnavailable, err)
		}

		if !program.Active {
			uc.logger.Warn("CreateBooking: program id=%s is inactive", req.ProgramID)
			return ErrProgramNotFound
		}

		// 3.2. Слот должен быть включён в программе
		if !program.HasEnabledSlot(req.Slot) {
			uc.logger.Warn("CreateBooking: slot %s is not offered by program id=%s", req.Slot, program.ID)
			return ErrInvalidSlot
		}

		// 3.3. Дата должна быть днём занятий и попадать в горизонт бронирования
		if !program.IsDateEligible(date) || !program.IsWithinHorizon(date, today) {
			uc.logger.Warn("CreateBooking: date %s is not bookable (today=%s, horizon=%d)",
				date.Format(domain.DateFormat), today.Format(domain.DateFormat), program.HorizonDays)
			return ErrDateNotBookable
		}

		// 3.4. Лимит бронирований пользователя в программе
		if program.HasUserCap() {
			count, err := uc.bookingRepo.CountConfirmedByUser(txCtx, program.ID, req.UserID)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to count user bookings: %v", err)
				return fmt.Errorf("%w: failed to count user bookings: %w", ErrStorageUnavailable, err)
			}
			if count >= *program.MaxPerUser {
				uc.logger.Warn("CreateBooking: user=%s reached limit %d/%d", req.UserID, count, *program.MaxPerUser)
				return ErrUserCapExceeded
			}
		}

		// 3.5. Дневной лимит бронирований пользователя в программе
		if program.HasUserDayCap() {
			count, err := uc.bookingRepo.CountConfirmedByUserAndDate(txCtx, program.ID, req.UserID, date)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to count user bookings for date: %v", err)
				return fmt.Errorf("%w: failed to count user bookings for date: %w", ErrStorageUnavailable, err)
			}
			if count >= *program.MaxPerUserPerDay {
				uc.logger.Warn("CreateBooking: user=%s reached daily limit %d/%d",
					req.UserID, count, *program.MaxPerUserPerDay)
				return ErrUserDayCapExceeded
			}
		}

		// 3.6. Свободные места в слоте
		taken, err := uc.bookingRepo.CountConfirmed(txCtx, program.ID, date, req.Slot)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count slot bookings: %v", err)
			return fmt.Errorf("%w: failed to count slot bookings: %w", ErrStorageUnavailable, err)
		}

		// Если SeatsPerSlot = 4, то допустимо taken = 0, 1, 2, 3
		if taken >= program.SeatsPerSlot {
			uc.logger.Warn("CreateBooking: slot full, %d/%d seats taken", taken, program.SeatsPerSlot)
			return ErrSlotFull
		}

		uc.logger.Info("CreateBooking: slot available, %d/%d seats taken", taken, program.SeatsPerSlot)

		// 3.7. Пользователь ещё не занимает это место
		_, err = uc.bookingRepo.FindConfirmed(txCtx, program.ID, req.UserID, date, req.Slot)
		if err == nil {
			uc.logger.Warn("CreateBooking: user=%s already holds slot %s on %s",
				req.UserID, req.Slot, date.Format(domain.DateFormat))
			return ErrDuplicateBooking
		}
		if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("CreateBooking: failed to check duplicate: %v", err)
			return fmt.Errorf("%w: failed to check duplicate: %w", ErrStorageUnavailable, err)
		}

		// 3.8. Создаем бронирование со снимком имени и e-mail
		booking := &domain.Booking{
			ID:          bookingID,
			TenantID:    req.TenantID,
			ProgramID:   program.ID,
			UserID:      req.UserID,
			UserName:    req.UserName,
			UserEmail:   req.UserEmail,
			BookingDate: date,
			SlotTime:    req.Slot,
			Status:      domain.StatusConfirmed,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrDuplicateBooking):
				uc.logger.Warn("CreateBooking: unique index rejected duplicate for user=%s", req.UserID)
				return ErrDuplicateBooking
			case errors.Is(err, bookingRepo.ErrProgramMissing):
				uc.logger.Warn("CreateBooking: program id=%s deleted concurrently", program.ID)
				return ErrProgramNotFound
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrStorageUnavailable, err)
		}

		result = created
		return nil
	})

	if err != nil {
		err = uc.classify(ctx, err)
		uc.observe(admissionResult(err))
		return nil, err
	}

	uc.observe(resultAdmitted)
	uc.logger.Info("CreateBooking: successfully created booking id=%s", result.ID)

	return toResponse(result, false), nil
}

// classify приводит ошибку транзакции к таксономии допуска
func (uc *UseCase) classify(ctx context.Context, err error) error {
	for _, known := range []error{
		ErrProgramNotFound,
		ErrInvalidSlot,
		ErrDateNotBookable,
		ErrUserCapExceeded,
		ErrUserDayCapExceeded,
		ErrSlotFull,
		ErrDuplicateBooking,
	} {
		if errors.Is(err, known) {
			return known
		}
	}

	// Фиксация могла пройти, но ответ до нас не дошёл
	if ctx.Err() != nil || errors.Is(err, txmanager.ErrCommitTx) {
		uc.logger.Error("CreateBooking: outcome unknown: %v", err)
		return fmt.Errorf("%w: %v", ErrOutcomeUnknown, err)
	}

	uc.logger.Error("CreateBooking: transaction failed: %v", err)
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// replay возвращает ранее созданное бронирование для повторного запроса
// и ID, под которым нужно создавать новое. Если ключ уже сохранён, но бронирования
// с таким ID нет (прошлая попытка не зафиксировалась), используется сохранённый ID.
// Ошибки хранилища ключей не мешают обычному допуску
func (uc *UseCase) replay(ctx context.Context, req *Request) (uuid.UUID, *Response) {
	if uc.idempotency == nil || req.IdempotencyKey == "" {
		return uuid.New(), nil
	}

	bookingID, found, err := uc.idempotency.Lookup(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		uc.logger.Warn("CreateBooking: idempotency lookup failed: %v", err)
		return uuid.New(), nil
	}
	if !found {
		return uuid.New(), nil
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.TenantID, bookingID)
	if err != nil {
		uc.logger.Info("CreateBooking: booking id=%s for idempotency key not found, admitting under the same id: %v",
			bookingID, err)
		return bookingID, nil
	}

	if booking.UserID != req.UserID {
		return uuid.New(), nil
	}

	uc.logger.Info("CreateBooking: replaying booking id=%s for idempotency key", booking.ID)
	return booking.ID, toResponse(booking, true)
}

func (uc *UseCase) remember(ctx context.Context, req *Request, bookingID uuid.UUID) {
	if uc.idempotency == nil || req.IdempotencyKey == "" {
		return
	}

	if err := uc.idempotency.Remember(ctx, req.UserID, req.IdempotencyKey, bookingID); err != nil {
		uc.logger.Warn("CreateBooking: failed to remember idempotency key for booking id=%s: %v", bookingID, err)
	}
}

func (uc *UseCase) observe(result string) {
	if uc.metrics != nil {
		uc.metrics.IncAdmission(result)
	}
}

func admissionResult(err error) string {
	switch {
	case errors.Is(err, ErrProgramNotFound):
		return resultProgramNotFound
	case errors.Is(err, ErrInvalidSlot):
		return resultInvalidSlot
	case errors.Is(err, ErrDateNotBookable):
		return resultDateNotBookable
	case errors.Is(err, ErrUserCapExceeded):
		return resultUserCapExceeded
	case errors.Is(err, ErrUserDayCapExceeded):
		return resultUserDayCapExceeded
	case errors.Is(err, ErrSlotFull):
		return resultSlotFull
	case errors.Is(err, ErrDuplicateBooking):
		return resultDuplicate
	case errors.Is(err, ErrOutcomeUnknown):
		return resultOutcomeUnknown
	default:
		return resultStorageUnavailable
	}
}

func toResponse(b *domain.Booking, replayed bool) *Response {
	return &Response{
		ID:          b.ID,
		TenantID:    b.TenantID,
		ProgramID:   b.ProgramID,
		UserID:      b.UserID,
		UserName:    b.UserName,
		UserEmail:   b.UserEmail,
		BookingDate: b.BookingDate,
		SlotTime:    b.SlotTime,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Replayed:    replayed,
	}
}
