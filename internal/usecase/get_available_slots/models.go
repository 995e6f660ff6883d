package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	UserID    uuid.UUID // ID пользователя (для логирования, не влияет на результат)
	TenantID  uuid.UUID // ID компании
	ProgramID uuid.UUID // ID программы
	Date      time.Time // Дата (время суток игнорируется)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ProgramID uuid.UUID
	Date      time.Time
	Eligible  bool   // Проходят ли занятия программы в эту дату
	Slots     []Slot // Слоты со свободными местами, по возрастанию времени
}

// Slot модель временного слота
type Slot struct {
	Time           types.TimeString // Время начала (например, "09:00")
	SeatsRemaining int              // Количество свободных мест
	SeatsTotal     int              // Общее количество мест
}
