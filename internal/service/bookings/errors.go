package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено или принадлежит другой компании
	ErrBookingNotFound = errors.New("bookings.service: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("bookings.service: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings.service: invalid input data")

	// ErrStorageUnavailable возвращается при ошибке обращения к хранилищу
	ErrStorageUnavailable = errors.New("bookings.service: storage unavailable")
)
