package get_available_dates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
	getAvailableDates "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_dates"
)

type fakeUseCase struct {
	got  *getAvailableDates.Request
	resp *getAvailableDates.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableDates.Request) (*getAvailableDates.Response, error) {
	f.got = req
	return f.resp, f.err
}

func newRequest(actor domain.Actor, programID, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs/"+programID+"/available-dates"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"programId": programID})
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func TestHandle_Success(t *testing.T) {
	programID := uuid.New()
	uc := &fakeUseCase{resp: &getAvailableDates.Response{
		ProgramID: programID,
		From:      testutil.Date(2024, 6, 3),
		To:        testutil.Date(2024, 6, 9),
		Dates: []getAvailableDates.Date{
			{Date: testutil.Date(2024, 6, 3), SeatsRemaining: 3},
			{Date: testutil.Date(2024, 6, 5), SeatsRemaining: 4},
		},
	}}
	h := NewHandler(uc, testutil.NopLogger{})
	actor := domain.Actor{UserID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleUser}

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(actor, programID.String(), "?from=2024-06-03&horizon=7"))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, actor.TenantID, uc.got.TenantID)
	assert.Equal(t, 7, uc.got.HorizonDays)
	require.NotNil(t, uc.got.From)
	assert.Equal(t, testutil.Date(2024, 6, 3), *uc.got.From)

	var resp AvailableDatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-06-03", resp.From)
	assert.Equal(t, "2024-06-09", resp.To)
	assert.Equal(t, []AvailableDate{{Date: "2024-06-03", SeatsRemaining: 3}, {Date: "2024-06-05", SeatsRemaining: 4}}, resp.Dates)
}

func TestHandle_DefaultsAreLeftToUseCase(t *testing.T) {
	uc := &fakeUseCase{resp: &getAvailableDates.Response{}}
	h := NewHandler(uc, testutil.NopLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(domain.Actor{UserID: uuid.New(), TenantID: uuid.New()}, uuid.NewString(), ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, uc.got.From)
	assert.Zero(t, uc.got.HorizonDays)
}

func TestHandle_Errors(t *testing.T) {
	actor := domain.Actor{UserID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleUser}

	tests := []struct {
		name      string
		programID string
		query     string
		ucErr     error
		want      int
	}{
		{name: "malformed program id", programID: "abc", want: http.StatusBadRequest},
		{name: "malformed from", programID: uuid.NewString(), query: "?from=tomorrow", want: http.StatusBadRequest},
		{name: "zero horizon", programID: uuid.NewString(), query: "?horizon=0", want: http.StatusBadRequest},
		{name: "non numeric horizon", programID: uuid.NewString(), query: "?horizon=week", want: http.StatusBadRequest},
		{name: "program not found", programID: uuid.NewString(), ucErr: getAvailableDates.ErrProgramNotFound, want: http.StatusNotFound},
		{name: "invalid input", programID: uuid.NewString(), ucErr: getAvailableDates.ErrInvalidInput, want: http.StatusBadRequest},
		{
			name:      "storage unavailable",
			programID: uuid.NewString(),
			ucErr:     fmt.Errorf("%w: boom", getAvailableDates.ErrStorageUnavailable),
			want:      http.StatusServiceUnavailable,
		},
		{name: "unexpected", programID: uuid.NewString(), ucErr: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.ucErr}, testutil.NopLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(actor, tt.programID, tt.query))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
