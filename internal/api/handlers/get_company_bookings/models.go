package get_company_bookings

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Query params: programId, status, from, to (все опциональны)
func ToServiceRequest(r *http.Request) (*models.GetTenantBookingsRequest, error) {
	query := r.URL.Query()
	req := &models.GetTenantBookingsRequest{}

	// Парсим programId если указан
	if raw := query.Get("programId"); raw != "" {
		programID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid programId: %w", err)
		}
		req.ProgramID = &programID
	}

	// Парсим status если указан
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	// Парсим период если указан
	var err error
	if req.StartDate, err = handlers.QueryDate(r, "from"); err != nil {
		return nil, err
	}
	if req.EndDate, err = handlers.QueryDate(r, "to"); err != nil {
		return nil, err
	}

	return req, nil
}
