package create_booking

import (
	"fmt"

	"github.com/google/uuid"
)

// maxIdempotencyKeyLength ограничение длины ключа идемпотентности
const maxIdempotencyKeyLength = 128

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	if req.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	if req.ProgramID == uuid.Nil {
		return fmt.Errorf("%w: programID is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время слота указано
	if req.Slot.IsZero() {
		return fmt.Errorf("%w: slot is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.Slot.Validate(); err != nil {
		return fmt.Errorf("%w: invalid slot format: %v", ErrInvalidInput, err)
	}

	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency key is longer than %d", ErrInvalidInput, maxIdempotencyKeyLength)
	}

	return nil
}
