package types

import "time"

// DateOnly обрезает время и приводит дату к UTC-полуночи того же календарного дня
// Все сравнения дат в сервисе выполняются над результатом DateOnly
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay проверяет, что две даты относятся к одному календарному дню
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TodayIn возвращает сегодняшнюю дату в указанной временной зоне (как DateOnly)
func TodayIn(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(now.In(loc))
}
