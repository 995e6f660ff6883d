package programs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs/models"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

type fixture struct {
	store *testutil.Store
	svc   *Service
	admin domain.Actor
	user  domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	tenantID := uuid.New()
	return &fixture{
		store: store,
		svc:   NewService(store.Programs(), store.TxManager(), NewValidator(), testutil.NopLogger{}),
		admin: domain.Actor{UserID: uuid.New(), TenantID: tenantID, Role: domain.RoleAdmin},
		user:  domain.Actor{UserID: uuid.New(), TenantID: tenantID, Role: domain.RoleUser},
	}
}

func validCreateRequest() *models.CreateProgramRequest {
	return &models.CreateProgramRequest{
		Name:         "Yoga",
		Category:     "fitness",
		Color:        "#33aa55",
		ScheduleType: "recurring",
		Weekdays:     []int{1, 3, 5},
		Slots: []models.SlotRequest{
			{Time: "09:00", Enabled: true},
			{Time: "18:30", Enabled: false},
		},
		SeatsPerSlot: 12,
		HorizonDays:  14,
		MaxPerUser:   ptr.Ptr(4),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), f.admin, validCreateRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, f.admin.TenantID, resp.TenantID)
	assert.Equal(t, domain.DefaultSessionMinutes, resp.SessionMinutes)
	assert.Equal(t, 14, resp.HorizonDays)
	assert.True(t, resp.Active)
	require.Len(t, resp.Slots, 2)
	assert.False(t, resp.Slots[1].Enabled)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(r *models.CreateProgramRequest)
	}{
		{name: "empty name", mutate: func(r *models.CreateProgramRequest) { r.Name = "" }},
		{name: "unsupported horizon", mutate: func(r *models.CreateProgramRequest) { r.HorizonDays = 10 }},
		{name: "zero seats", mutate: func(r *models.CreateProgramRequest) { r.SeatsPerSlot = 0 }},
		{name: "no slots", mutate: func(r *models.CreateProgramRequest) { r.Slots = nil }},
		{name: "malformed slot", mutate: func(r *models.CreateProgramRequest) { r.Slots[0].Time = "9:00" }},
		{name: "weekday out of range", mutate: func(r *models.CreateProgramRequest) { r.Weekdays = []int{7} }},
		{name: "recurring without weekdays", mutate: func(r *models.CreateProgramRequest) { r.Weekdays = nil }},
		{name: "unknown schedule", mutate: func(r *models.CreateProgramRequest) { r.ScheduleType = "monthly" }},
		{name: "zero cap", mutate: func(r *models.CreateProgramRequest) { r.MaxPerUser = ptr.Ptr(0) }},
		{
			name: "date range without end",
			mutate: func(r *models.CreateProgramRequest) {
				r.ScheduleType = "date_range"
				r.StartDate = ptr.Ptr("2024-06-01")
			},
		},
		{
			name: "date range reversed",
			mutate: func(r *models.CreateProgramRequest) {
				r.ScheduleType = "date_range"
				r.StartDate = ptr.Ptr("2024-06-05")
				r.EndDate = ptr.Ptr("2024-06-01")
			},
		},
		{name: "malformed date", mutate: func(r *models.CreateProgramRequest) { r.StartDate = ptr.Ptr("01.06.2024") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), f.admin, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreate_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.user, validCreateRequest())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdate_Partial(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), f.admin, validCreateRequest())
	require.NoError(t, err)

	resp, err := f.svc.Update(context.Background(), f.admin, created.ID, &models.UpdateProgramRequest{
		SeatsPerSlot: ptr.Ptr(3),
		MaxPerUser:   ptr.Ptr(0),
		Active:       ptr.Ptr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Yoga", resp.Name)
	assert.Equal(t, []int{1, 3, 5}, resp.Weekdays)
	assert.Equal(t, 3, resp.SeatsPerSlot)
	assert.Nil(t, resp.MaxPerUser)
	assert.False(t, resp.Active)

	// Обновление, нарушающее инварианты, не сохраняется
	_, err = f.svc.Update(context.Background(), f.admin, created.ID, &models.UpdateProgramRequest{
		ScheduleType: ptr.Ptr("date_range"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := f.svc.GetByID(context.Background(), f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "recurring", got.ScheduleType)

	_, err = f.svc.Update(context.Background(), f.admin, uuid.New(), &models.UpdateProgramRequest{Name: ptr.Ptr("X")})
	assert.ErrorIs(t, err, ErrProgramNotFound)

	_, err = f.svc.Update(context.Background(), f.admin, created.ID, &models.UpdateProgramRequest{HorizonDays: ptr.Ptr(3)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListAndGet_HideInactiveFromUsers(t *testing.T) {
	f := newFixture(t)

	active := testutil.NewProgram(f.admin.TenantID)
	active.Name = "A"
	inactive := testutil.NewProgram(f.admin.TenantID)
	inactive.Name = "B"
	inactive.Active = false
	f.store.PutProgram(active)
	f.store.PutProgram(inactive)
	f.store.PutProgram(testutil.NewProgram(uuid.New()))

	resp, err := f.svc.List(context.Background(), f.user, false)
	require.NoError(t, err)
	require.Len(t, resp.Programs, 1)
	assert.Equal(t, "A", resp.Programs[0].Name)

	_, err = f.svc.List(context.Background(), f.user, true)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err = f.svc.List(context.Background(), f.admin, true)
	require.NoError(t, err)
	assert.Len(t, resp.Programs, 2)

	_, err = f.svc.GetByID(context.Background(), f.user, inactive.ID)
	assert.ErrorIs(t, err, ErrProgramNotFound)

	_, err = f.svc.GetByID(context.Background(), f.admin, inactive.ID)
	assert.NoError(t, err)
}

func TestDelete_CascadesBookings(t *testing.T) {
	f := newFixture(t)
	program := f.store.PutProgram(testutil.NewProgram(f.admin.TenantID))
	booking := f.store.PutBooking(&domain.Booking{
		TenantID:    program.TenantID,
		ProgramID:   program.ID,
		UserID:      uuid.New(),
		BookingDate: testutil.Date(2024, 6, 3),
		SlotTime:    "09:00",
		Status:      domain.StatusConfirmed,
	})

	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.user, program.ID), ErrAccessDenied)

	require.NoError(t, f.svc.Delete(context.Background(), f.admin, program.ID))

	_, ok := f.store.Booking(booking.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.admin, program.ID), ErrProgramNotFound)
}
