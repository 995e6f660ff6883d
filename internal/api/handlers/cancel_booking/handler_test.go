package cancel_booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
)

func newRequest(actor domain.Actor, bookingID string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID+"/cancel", nil)
	req = mux.SetURLVars(req, map[string]string{"bookingId": bookingID})
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func TestHandle(t *testing.T) {
	store := testutil.NewStore()
	tenantID := uuid.New()
	program := store.PutProgram(testutil.NewProgram(tenantID))

	owner := domain.Actor{UserID: uuid.New(), TenantID: tenantID, Role: domain.RoleUser}
	stranger := domain.Actor{UserID: uuid.New(), TenantID: tenantID, Role: domain.RoleUser}

	booking := store.PutBooking(&domain.Booking{
		TenantID:    tenantID,
		ProgramID:   program.ID,
		UserID:      owner.UserID,
		BookingDate: testutil.Date(2024, 6, 3),
		SlotTime:    "09:00",
		Status:      domain.StatusConfirmed,
	})

	svc := bookings.NewService(store.Bookings(), store.TxManager(), nil, time.UTC, testutil.NopLogger{})
	h := NewHandler(svc, testutil.NopLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(stranger, booking.ID.String()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(owner, booking.ID.String()))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Booking.Status)
	assert.False(t, resp.AlreadyCancelled)

	// Повторная отмена
	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(owner, booking.ID.String()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyCancelled)

	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(owner, uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(owner, "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.FailWith(errors.New("connection reset"))
	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(owner, booking.ID.String()))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
