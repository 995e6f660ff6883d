package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// IsValid returns true for known statuses
func (s BookingStatus) IsValid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Booking is one seat held by a user in a program on a date at a slot
type Booking struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ProgramID uuid.UUID
	UserID    uuid.UUID

	// Snapshot taken at creation time, never refreshed
	UserName  string
	UserEmail string

	BookingDate time.Time
	SlotTime    types.TimeString
	Status      BookingStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConfirmed returns true if the booking holds a seat
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// TenantBookingsFilter фильтр для получения бронирований компании
type TenantBookingsFilter struct {
	TenantID  uuid.UUID      // Обязательный параметр
	ProgramID *uuid.UUID     // Фильтр по программе (опционально)
	Status    *BookingStatus // Фильтр по статусу (опционально)
	StartDate *time.Time     // Начало периода (включительно)
	EndDate   *time.Time     // Конец периода (включительно)
}

// UserBookingsFilter фильтр для получения бронирований пользователя
type UserBookingsFilter struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Status   *BookingStatus
}

// TenantStats счётчики для панели администратора
type TenantStats struct {
	ConfirmedToday    int
	ConfirmedUpcoming int
}
