package get_available_dates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	programRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/program"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// UseCase use case для получения дат со свободными местами в пределах горизонта программы
type UseCase struct {
	programRepo  ProgramRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// location задает временную зону, в которой определяется "сегодня"
func NewUseCase(
	programRepo ProgramRepository,
	bookingRepo BookingRepository,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		programRepo:  programRepo,
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных дат
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableDates: tenant=%s, program=%s, horizon=%d",
		req.TenantID, req.ProgramID, req.HorizonDays)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableDates: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем программу
	program, err := uc.programRepo.GetByID(ctx, req.TenantID, req.ProgramID)
	if err != nil {
		if errors.Is(err, programRepo.ErrProgramNotFound) {
			uc.logger.Warn("GetAvailableDates: program id=%s not found", req.ProgramID)
			return nil, ErrProgramNotFound
		}
		uc.logger.Error("GetAvailableDates: failed to get program id=%s: %v", req.ProgramID, err)
		return nil, fmt.Errorf("%w: failed to get program: %v", ErrStorageUnavailable, err)
	}

	if !program.Active {
		uc.logger.Warn("GetAvailableDates: program id=%s is inactive", req.ProgramID)
		return nil, ErrProgramNotFound
	}

	// 3. Определяем период
	today := types.TodayIn(uc.timeProvider.Now(), uc.location)
	from, to := dateRange(program, today, req.From, req.HorizonDays)

	response := &Response{
		ProgramID: program.ID,
		From:      from,
		To:        to,
		Dates:     []Date{},
	}

	if to.Before(from) {
		uc.logger.Info("GetAvailableDates: empty range for program=%s", req.ProgramID)
		return response, nil
	}

	// 4. Одним запросом получаем счётчики по всем датам периода
	counts, err := uc.bookingRepo.CountConfirmedBySlotInRange(ctx, program.ID, from, to)
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to count bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to count bookings: %v", ErrStorageUnavailable, err)
	}

	// 5. Оставляем подходящие даты, где осталось хотя бы одно место
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if !program.IsDateEligible(day) {
			continue
		}

		slots := domain.CalculateAvailableSlots(program, counts[day.Format(domain.DateFormat)])
		remaining := domain.TotalRemaining(slots)
		if remaining <= 0 {
			continue
		}

		response.Dates = append(response.Dates, Date{
			Date:           day,
			SeatsRemaining: remaining,
		})
	}

	uc.logger.Info("GetAvailableDates: %d dates available for program=%s in [%s, %s]",
		len(response.Dates), req.ProgramID, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	return response, nil
}

// dateRange пересекает запрошенный период с горизонтом программы [today, today+HorizonDays-1]
func dateRange(program *domain.Program, today time.Time, from *time.Time, horizonDays int) (time.Time, time.Time) {
	start := today
	if from != nil && types.DateOnly(*from).After(today) {
		start = types.DateOnly(*from)
	}

	if horizonDays <= 0 || horizonDays > program.HorizonDays {
		horizonDays = program.HorizonDays
	}

	end := start.AddDate(0, 0, horizonDays-1)
	last := today.AddDate(0, 0, program.HorizonDays-1)
	if end.After(last) {
		end = last
	}

	return start, end
}
