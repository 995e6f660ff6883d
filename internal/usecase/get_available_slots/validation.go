package get_available_slots

import (
	"fmt"

	"github.com/google/uuid"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	if req.ProgramID == uuid.Nil {
		return fmt.Errorf("%w: programID is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}
