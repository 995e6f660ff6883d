package get_available_dates

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

	if req.HorizonDays < 0 {
		return fmt.Errorf("%w: horizon must not be negative", ErrInvalidInput)
	}

	return nil
}
