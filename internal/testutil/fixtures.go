package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// NopLogger логгер, который ничего не пишет
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// FixedClock провайдер времени, всегда возвращающий одно значение
type FixedClock struct {
	T time.Time
}

// Now возвращает зафиксированное время
func (c FixedClock) Now() time.Time { return c.T }

// Slot собирает включённый слот
func Slot(s string) domain.Slot {
	return domain.Slot{Time: types.TimeString(s), Enabled: true}
}

// NewProgram создает активную еженедельную программу: все дни недели,
// слоты 09:00 и 10:00, два места, горизонт 30 дней
func NewProgram(tenantID uuid.UUID) *domain.Program {
	return &domain.Program{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Name:           "Massage",
		Category:       "health",
		ScheduleType:   domain.ScheduleRecurring,
		Weekdays:       []int{0, 1, 2, 3, 4, 5, 6},
		Slots:          []domain.Slot{Slot("09:00"), Slot("10:00")},
		SessionMinutes: domain.DefaultSessionMinutes,
		SeatsPerSlot:   2,
		HorizonDays:    30,
		Active:         true,
	}
}

// Date возвращает полночь UTC
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
