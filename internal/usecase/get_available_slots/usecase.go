package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	programRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/program"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// UseCase use case для получения свободных мест по слотам программы на дату
type UseCase struct {
	programRepo ProgramRepository
	bookingRepo BookingRepository
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	programRepo ProgramRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		programRepo: programRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Execute выполняет use case получения доступных слотов
// Счётчики читаются из журнала при каждом вызове
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%s, tenant=%s, program=%s, date=%s",
		req.UserID, req.TenantID, req.ProgramID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := types.DateOnly(req.Date)

	// 2. Получаем программу
	program, err := uc.programRepo.GetByID(ctx, req.TenantID, req.ProgramID)
	if err != nil {
		if errors.Is(err, programRepo.ErrProgramNotFound) {
			uc.logger.Warn("GetAvailableSlots: program id=%s not found", req.ProgramID)
			return nil, ErrProgramNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get program id=%s: %v", req.ProgramID, err)
		return nil, fmt.Errorf("%w: failed to get program: %v", ErrStorageUnavailable, err)
	}

	if !program.Active {
		uc.logger.Warn("GetAvailableSlots: program id=%s is inactive", req.ProgramID)
		return nil, ErrProgramNotFound
	}

	response := &Response{
		ProgramID: program.ID,
		Date:      date,
		Slots:     []Slot{},
	}

	// 3. В неподходящую дату занятий нет - журнал не запрашиваем
	if !program.IsDateEligible(date) {
		uc.logger.Info("GetAvailableSlots: program id=%s has no sessions on %s",
			req.ProgramID, date.Format(domain.DateFormat))
		return response, nil
	}
	response.Eligible = true

	// 4. Считаем подтверждённые бронирования по слотам
	counts, err := uc.bookingRepo.CountConfirmedBySlot(ctx, program.ID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to count bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrStorageUnavailable, err)
	}

	// 5. Вычисляем свободные места
	for _, s := range domain.CalculateAvailableSlots(program, counts) {
		response.Slots = append(response.Slots, Slot{
			Time:           s.Time,
			SeatsRemaining: s.SeatsRemaining,
			SeatsTotal:     s.SeatsTotal,
		})
	}

	uc.logger.Info("GetAvailableSlots: %d slots available for program=%s, date=%s",
		len(response.Slots), req.ProgramID, date.Format(domain.DateFormat))

	return response, nil
}
