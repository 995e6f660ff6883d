package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Service сервис для работы с бронированиями: чтение, отмена, счётчики компании
type Service struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
// metrics может быть nil
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: realTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только своё бронирование, администратор - любое бронирование компании
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, actor.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrStorageUnavailable, err)
	}

	if !actor.CanAccess(booking) {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%s", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает бронирования пользователя, ближайшие первыми
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, actor domain.Actor, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%s, status=%v", actor.UserID, req.Status)

	filter := domain.UserBookingsFilter{
		TenantID: actor.TenantID,
		UserID:   actor.UserID,
	}

	// Конвертируем статус из строки в domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%s", *req.Status, actor.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.ListByUser(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%s: %v", actor.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%s", len(bookings), actor.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetTenantBookings получает бронирования компании с фильтрацией, новые первыми
// Доступно только администраторам компании
//
// Примеры использования:
// - Все бронирования: GetTenantBookings(ctx, admin, &GetTenantBookingsRequest{})
// - Бронирования программы: указать ProgramID
// - Бронирования на дату: StartDate и EndDate указывают на одну дату
// - Только подтверждённые: указать Status = "confirmed"
func (s *Service) GetTenantBookings(ctx context.Context, actor domain.Actor, req *models.GetTenantBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetTenantBookings: fetching bookings for tenant=%s, user=%s", actor.TenantID, actor.UserID)
	if req.ProgramID != nil {
		logMsg += fmt.Sprintf(", program=%s", *req.ProgramID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if !actor.IsAdmin() {
		s.logger.Warn("GetTenantBookings: user=%s is not an admin of tenant=%s", actor.UserID, actor.TenantID)
		return nil, ErrAccessDenied
	}

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter(actor.TenantID)
	if err != nil {
		s.logger.Warn("GetTenantBookings: invalid filter for tenant=%s: %v", actor.TenantID, err)
		return nil, fmt.Errorf("%w: invalid filter: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.ListByTenant(ctx, filter)
	if err != nil {
		s.logger.Error("GetTenantBookings: repository error for tenant=%s: %v", actor.TenantID, err)
		return nil, fmt.Errorf("%w: GetTenantBookings - repository error: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("GetTenantBookings: successfully fetched %d bookings for tenant=%s", len(bookings), actor.TenantID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование: confirmed -> cancelled, место освобождается
// Повторная отмена успешна и ничего не меняет. Бронирования никогда не удаляются
// Пользователь может отменить своё бронирование, администратор - любое бронирование компании
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s by user=%s", bookingID, actor.UserID)

	var (
		result           *domain.Booking
		alreadyCancelled bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// Строка бронирования блокируется до конца транзакции
		booking, err := s.bookingRepo.GetByID(txCtx, actor.TenantID, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Cancel: booking id=%s not found", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%s: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrStorageUnavailable, err)
		}

		if !actor.CanAccess(booking) {
			s.logger.Warn("Cancel: access denied for user=%s to cancel booking id=%s", actor.UserID, bookingID)
			return ErrAccessDenied
		}

		if booking.IsCancelled() {
			s.logger.Info("Cancel: booking id=%s is already cancelled", bookingID)
			alreadyCancelled = true
			result = booking
			return nil
		}

		if err := s.bookingRepo.SetStatus(txCtx, actor.TenantID, bookingID, domain.StatusCancelled); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Cancel: booking id=%s not found during cancellation", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%s: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrStorageUnavailable, err)
		}

		booking.Status = domain.StatusCancelled
		result = booking
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrStorageUnavailable) {
			return nil, err
		}
		s.logger.Error("Cancel: transaction failed for booking id=%s: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - transaction failed: %v", ErrStorageUnavailable, err)
	}

	if !alreadyCancelled && s.metrics != nil {
		s.metrics.IncCancellation()
	}

	s.logger.Info("Cancel: booking id=%s cancelled (already=%t)", bookingID, alreadyCancelled)
	return &models.CancelResponse{
		Booking:          *models.FromDomainBooking(result),
		AlreadyCancelled: alreadyCancelled,
	}, nil
}

// Stats возвращает счётчики подтверждённых бронирований компании на сегодня и начиная с сегодня
// Доступно только администраторам компании
func (s *Service) Stats(ctx context.Context, actor domain.Actor) (*models.StatsResponse, error) {
	s.logger.Info("Stats: tenant=%s, user=%s", actor.TenantID, actor.UserID)

	if !actor.IsAdmin() {
		s.logger.Warn("Stats: user=%s is not an admin of tenant=%s", actor.UserID, actor.TenantID)
		return nil, ErrAccessDenied
	}

	today := types.TodayIn(s.timeProvider.Now(), s.location)
	var stats domain.TenantStats

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if stats.ConfirmedToday, err = s.bookingRepo.CountConfirmedOn(txCtx, actor.TenantID, today); err != nil {
			return fmt.Errorf("count today: %w", err)
		}
		if stats.ConfirmedUpcoming, err = s.bookingRepo.CountConfirmedFrom(txCtx, actor.TenantID, today); err != nil {
			return fmt.Errorf("count upcoming: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Stats: repository error for tenant=%s: %v", actor.TenantID, err)
		return nil, fmt.Errorf("%w: Stats - repository error: %v", ErrStorageUnavailable, err)
	}

	return &models.StatsResponse{
		Date:              today.Format(domain.DateFormat),
		ConfirmedToday:    stats.ConfirmedToday,
		ConfirmedUpcoming: stats.ConfirmedUpcoming,
	}, nil
}
