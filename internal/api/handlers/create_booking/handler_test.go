package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/profileservice"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

type fakeUseCase struct {
	got      *createBooking.Request
	replayed bool
	err      error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &createBooking.Response{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		ProgramID:   req.ProgramID,
		UserID:      req.UserID,
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
		BookingDate: req.Date,
		SlotTime:    req.Slot,
		Status:      string(domain.StatusConfirmed),
		CreatedAt:   time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
		Replayed:    f.replayed,
	}, nil
}

type fakeProfiles struct {
	profile *profileservice.Profile
	err     error
	calls   int
}

func (f *fakeProfiles) GetProfileWithGracefulDegradation(context.Context, uuid.UUID) (*profileservice.Profile, error) {
	f.calls++
	return f.profile, f.err
}

var testActor = domain.Actor{
	UserID:   uuid.New(),
	TenantID: uuid.New(),
	Role:     domain.RoleUser,
	Email:    "ana@corp.example",
	Name:     "Ana",
}

func newRequest(actor domain.Actor, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func validBody(programID uuid.UUID) string {
	return fmt.Sprintf(`{"programId":%q,"date":"2024-06-03","slot":"09:00"}`, programID)
}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, nil, testutil.NopLogger{})
	programID := uuid.New()

	req := newRequest(testActor, validBody(programID))
	req.Header.Set(IdempotencyKeyHeader, "retry-1")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, testActor.UserID, uc.got.UserID)
	assert.Equal(t, testActor.TenantID, uc.got.TenantID)
	assert.Equal(t, "Ana", uc.got.UserName)
	assert.Equal(t, "ana@corp.example", uc.got.UserEmail)
	assert.Equal(t, programID, uc.got.ProgramID)
	assert.Equal(t, testutil.Date(2024, 6, 3), uc.got.Date)
	assert.Equal(t, types.TimeString("09:00"), uc.got.Slot)
	assert.Equal(t, "retry-1", uc.got.IdempotencyKey)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-06-03", resp.Date)
	assert.Equal(t, "09:00", resp.Slot)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestHandle_ReplayedReturnsOK(t *testing.T) {
	h := NewHandler(&fakeUseCase{replayed: true}, nil, testutil.NopLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(testActor, validBody(uuid.New())))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_DisplayName(t *testing.T) {
	noName := testActor
	noName.Name = ""

	tests := []struct {
		name      string
		actor     domain.Actor
		profiles  *fakeProfiles
		wantName  string
		wantCalls int
	}{
		{
			name:     "name from token",
			actor:    testActor,
			profiles: &fakeProfiles{},
			wantName: "Ana",
		},
		{
			name:      "name from profile",
			actor:     noName,
			profiles:  &fakeProfiles{profile: &profileservice.Profile{Name: "Ana Souza", Email: "ana@corp.example"}},
			wantName:  "Ana Souza",
			wantCalls: 1,
		},
		{
			name:      "profile service degraded",
			actor:     noName,
			profiles:  &fakeProfiles{err: profileservice.ErrServiceDegraded},
			wantName:  "ana@corp.example",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			h := NewHandler(uc, tt.profiles, testutil.NopLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(tt.actor, validBody(uuid.New())))
			require.Equal(t, http.StatusCreated, rec.Code)

			assert.Equal(t, tt.wantName, uc.got.UserName)
			assert.Equal(t, tt.wantCalls, tt.profiles.calls)
		})
	}
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "unknown field", body: `{"programId":"` + uuid.NewString() + `","date":"2024-06-03","slot":"09:00","seats":2}`},
		{name: "bad program id", body: `{"programId":"7","date":"2024-06-03","slot":"09:00"}`},
		{name: "bad date", body: `{"programId":"` + uuid.NewString() + `","date":"03/06/2024","slot":"09:00"}`},
		{name: "bad slot", body: `{"programId":"` + uuid.NewString() + `","date":"2024-06-03","slot":"9:00"}`},
	}

	// Без имени в токене обработчику пришлось бы идти в сервис профилей
	noName := testActor
	noName.Name = ""

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			profiles := &fakeProfiles{profile: &profileservice.Profile{Name: "Ana Souza"}}
			h := NewHandler(uc, profiles, testutil.NopLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(noName, tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.got)
			assert.Zero(t, profiles.calls)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"program not found", createBooking.ErrProgramNotFound, http.StatusNotFound},
		{"invalid slot", createBooking.ErrInvalidSlot, http.StatusBadRequest},
		{"date not bookable", createBooking.ErrDateNotBookable, http.StatusBadRequest},
		{"invalid input", createBooking.ErrInvalidInput, http.StatusBadRequest},
		{"user cap", createBooking.ErrUserCapExceeded, http.StatusConflict},
		{"user day cap", createBooking.ErrUserDayCapExceeded, http.StatusConflict},
		{"slot full", createBooking.ErrSlotFull, http.StatusConflict},
		{"duplicate", createBooking.ErrDuplicateBooking, http.StatusConflict},
		{"outcome unknown", fmt.Errorf("%w: commit: broken pipe", createBooking.ErrOutcomeUnknown), http.StatusGatewayTimeout},
		{"storage unavailable", fmt.Errorf("%w: dial tcp", createBooking.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	messages := make(map[string]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, nil, testutil.NopLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(testActor, validBody(uuid.New())))
			require.Equal(t, tt.want, rec.Code)

			var body struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Message)

			// У каждой ошибки своё сообщение
			for other, msg := range messages {
				assert.NotEqual(t, msg, body.Message, "same message as %s", other)
			}
			messages[tt.name] = body.Message
		})
	}
}

// Полный путь через use case и хранилище в памяти: последнее место достаётся одному
func TestHandle_WithUseCase_LastSeat(t *testing.T) {
	store := testutil.NewStore()
	program := testutil.NewProgram(testActor.TenantID)
	program.SeatsPerSlot = 1
	store.PutProgram(program)

	uc := createBooking.NewUseCase(store.Programs(), store.Bookings(), store.TxManager(), nil, nil, time.UTC, testutil.NopLogger{})
	h := NewHandler(uc, nil, testutil.NopLogger{})

	tomorrow := types.TodayIn(time.Now(), time.UTC).AddDate(0, 0, 1)
	body := fmt.Sprintf(`{"programId":%q,"date":%q,"slot":"09:00"}`, program.ID, tomorrow.Format(domain.DateFormat))

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(testActor, body))
	require.Equal(t, http.StatusCreated, rec.Code)

	other := testActor
	other.UserID = uuid.New()
	rec = httptest.NewRecorder()
	h.Handle(rec, newRequest(other, body))
	assert.Equal(t, http.StatusConflict, rec.Code)

	slots := get_available_slots.NewUseCase(store.Programs(), store.Bookings(), testutil.NopLogger{})
	resp, err := slots.Execute(context.Background(), &get_available_slots.Request{
		TenantID:  program.TenantID,
		ProgramID: program.ID,
		Date:      tomorrow,
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].Time)
}
