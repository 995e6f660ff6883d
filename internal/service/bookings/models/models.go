package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidPeriod возвращается, когда начало периода позже конца
	ErrInvalidPeriod = errors.New("invalid period")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	Status *string `json:"status,omitempty"`
}

// GetTenantBookingsRequest запрос на получение бронирований компании
type GetTenantBookingsRequest struct {
	ProgramID *uuid.UUID `json:"programId,omitempty"` // Фильтр по программе (опционально)
	Status    *string    `json:"status,omitempty"`    // Фильтр по статусу (опционально)
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetTenantBookingsRequest) ToDomainFilter(tenantID uuid.UUID) (domain.TenantBookingsFilter, error) {
	filter := domain.TenantBookingsFilter{
		TenantID:  tenantID,
		ProgramID: r.ProgramID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}

	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return filter, ErrInvalidPeriod
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"companyId"`
	ProgramID   uuid.UUID `json:"programId"`
	UserID      uuid.UUID `json:"userId"`
	UserName    string    `json:"userName"`  // Снимок на момент бронирования
	UserEmail   string    `json:"userEmail"` // Снимок на момент бронирования
	BookingDate string    `json:"date"`      // "2024-06-01"
	SlotTime    string    `json:"slot"`      // "09:00"
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelResponse результат отмены
type CancelResponse struct {
	Booking BookingResponse `json:"booking"`
	// AlreadyCancelled true, если бронирование было отменено раньше и состояние не менялось
	AlreadyCancelled bool `json:"alreadyCancelled"`
}

// StatsResponse счётчики для панели администратора
type StatsResponse struct {
	Date              string `json:"date"`
	ConfirmedToday    int    `json:"confirmedToday"`
	ConfirmedUpcoming int    `json:"confirmedUpcoming"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:          b.ID,
		TenantID:    b.TenantID,
		ProgramID:   b.ProgramID,
		UserID:      b.UserID,
		UserName:    b.UserName,
		UserEmail:   b.UserEmail,
		BookingDate: b.BookingDate.Format(domain.DateFormat),
		SlotTime:    b.SlotTime.String(),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
