package idempotency

import "errors"

var (
	// ErrStore ошибка обращения к Redis
	ErrStore = errors.New("idempotency.store: redis error")

	// ErrCorruptValue в ключе лежит не UUID бронирования
	ErrCorruptValue = errors.New("idempotency.store: stored value is not a booking id")
)
