package delete_program

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
)

func newRequest(actor domain.Actor, programID string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/programs/"+programID, nil)
	req = mux.SetURLVars(req, map[string]string{"programId": programID})
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func TestHandle(t *testing.T) {
	store := testutil.NewStore()
	tenantID := uuid.New()
	program := store.PutProgram(testutil.NewProgram(tenantID))

	admin := domain.Actor{UserID: uuid.New(), TenantID: tenantID, Role: domain.RoleAdmin}
	user := domain.Actor{UserID: uuid.New(), TenantID: tenantID, Role: domain.RoleUser}

	svc := programs.NewService(store.Programs(), store.TxManager(), programs.NewValidator(), testutil.NopLogger{})
	h := NewHandler(svc, testutil.NopLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(user, program.ID.String()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(admin, program.ID.String()))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(admin, program.ID.String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(admin, "abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
