package create_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramNotFound возвращается, когда программа не найдена, неактивна или принадлежит другой компании
	ErrProgramNotFound = errors.New("create_booking: program not found")

	// ErrInvalidSlot возвращается, когда время не входит в число включённых слотов программы
	ErrInvalidSlot = errors.New("create_booking: slot is not offered by the program")

	// ErrDateNotBookable возвращается, когда в эту дату занятий нет или она вне горизонта бронирования
	ErrDateNotBookable = errors.New("create_booking: date is not bookable")

	// ErrUserCapExceeded возвращается, когда исчерпан лимит бронирований пользователя в программе
	ErrUserCapExceeded = errors.New("create_booking: user booking limit reached")

	// ErrUserDayCapExceeded возвращается, когда исчерпан дневной лимит бронирований пользователя
	ErrUserDayCapExceeded = errors.New("create_booking: user daily booking limit reached")

	// ErrSlotFull возвращается, когда в слоте не осталось мест
	ErrSlotFull = errors.New("create_booking: slot is full")

	// ErrDuplicateBooking возвращается, когда пользователь уже занимает это место
	ErrDuplicateBooking = errors.New("create_booking: user already booked this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrStorageUnavailable возвращается, когда хранилище недоступно; бронирование не создано
	ErrStorageUnavailable = errors.New("create_booking: storage unavailable")

	// ErrOutcomeUnknown возвращается, когда неизвестно, зафиксировано ли бронирование
	// (таймаут или обрыв соединения во время фиксации). Совпадает с ErrStorageUnavailable в errors.Is
	ErrOutcomeUnknown = fmt.Errorf("%w: outcome unknown", ErrStorageUnavailable)
)
