package get_available_dates

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на получение дат со свободными местами
type Request struct {
	TenantID    uuid.UUID
	ProgramID   uuid.UUID
	From        *time.Time // Начало периода; по умолчанию сегодня
	HorizonDays int        // Длина периода; 0 - горизонт программы
}

// Response модель ответа со списком дат
type Response struct {
	ProgramID uuid.UUID
	From      time.Time
	To        time.Time // Последняя дата периода (включительно)
	Dates     []Date
}

// Date дата со свободными местами
type Date struct {
	Date           time.Time
	SeatsRemaining int // Сумма свободных мест по всем слотам даты
}
