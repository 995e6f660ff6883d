package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
	"github.com/m04kA/SMC-WellnessBooking/pkg/txmanager"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// 2024-05-30, четверг
var now = time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC)

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *fakeMetrics) IncAdmission(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	m.results[result]++
}

type fakeIdempotency struct {
	keys      map[string]uuid.UUID
	lookupErr error
}

func (f *fakeIdempotency) Lookup(_ context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	if f.lookupErr != nil {
		return uuid.Nil, false, f.lookupErr
	}
	id, ok := f.keys[userID.String()+":"+key]
	return id, ok, nil
}

func (f *fakeIdempotency) Remember(_ context.Context, userID uuid.UUID, key string, bookingID uuid.UUID) error {
	if f.keys == nil {
		f.keys = make(map[string]uuid.UUID)
	}
	f.keys[userID.String()+":"+key] = bookingID
	return nil
}

// commitFailingTx выполняет fn, но сообщает об ошибке фиксации
type commitFailingTx struct {
	inner TransactionManager
}

func (m commitFailingTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.inner.Do(ctx, fn); err != nil {
		return err
	}
	return fmt.Errorf("%w: connection reset by peer", txmanager.ErrCommitTx)
}

// lostTx обрывает соединение до фиксации: ничего не записано
type lostTx struct{}

func (lostTx) Do(context.Context, func(ctx context.Context) error) error {
	return fmt.Errorf("%w: broken pipe", txmanager.ErrCommitTx)
}

type fixture struct {
	store       *testutil.Store
	program     *domain.Program
	metrics     *fakeMetrics
	idempotency *fakeIdempotency
	uc          *UseCase
}

func newFixture(t *testing.T, configure func(p *domain.Program)) *fixture {
	t.Helper()

	store := testutil.NewStore()
	program := testutil.NewProgram(uuid.New())
	program.Slots = append(program.Slots, testutil.Slot("14:00"), domain.Slot{Time: "18:00", Enabled: false})
	if configure != nil {
		configure(program)
	}
	store.PutProgram(program)

	f := &fixture{
		store:       store,
		program:     program,
		metrics:     &fakeMetrics{},
		idempotency: &fakeIdempotency{},
	}
	f.uc = NewUseCase(store.Programs(), store.Bookings(), store.TxManager(), f.idempotency, f.metrics, time.UTC, testutil.NopLogger{})
	f.uc.timeProvider = testutil.FixedClock{T: now}
	return f
}

func (f *fixture) request(userID uuid.UUID, date time.Time, slot string) *Request {
	return &Request{
		UserID:    userID,
		TenantID:  f.program.TenantID,
		UserName:  "Ana",
		UserEmail: "ana@corp.example",
		ProgramID: f.program.ID,
		Date:      date,
		Slot:      types.TimeString(slot),
	}
}

func (f *fixture) book(t *testing.T, userID uuid.UUID, date time.Time, slot string) *Response {
	t.Helper()
	resp, err := f.uc.Execute(context.Background(), f.request(userID, date, slot))
	require.NoError(t, err)
	return resp
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, nil)
	userID := uuid.New()

	resp, err := f.uc.Execute(context.Background(), f.request(userID, time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC), "14:00"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, f.program.TenantID, resp.TenantID)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "Ana", resp.UserName)
	assert.Equal(t, "ana@corp.example", resp.UserEmail)
	assert.Equal(t, testutil.Date(2024, 6, 1), resp.BookingDate)
	assert.Equal(t, types.TimeString("14:00"), resp.SlotTime)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.False(t, resp.Replayed)

	assert.Equal(t, 1, f.store.ConfirmedCount(f.program.ID, testutil.Date(2024, 6, 1), "14:00"))
	assert.Equal(t, 1, f.metrics.results[resultAdmitted])
}

func TestExecute_PreconditionErrors(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.Weekdays = []int{1, 3, 5}
		p.HorizonDays = 14
	})
	userID := uuid.New()
	monday := testutil.Date(2024, 6, 3)

	inactive := testutil.NewProgram(f.program.TenantID)
	inactive.Active = false
	f.store.PutProgram(inactive)

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{
			name:    "unknown program",
			mutate:  func(r *Request) { r.ProgramID = uuid.New() },
			wantErr: ErrProgramNotFound,
		},
		{
			name:    "program of another tenant",
			mutate:  func(r *Request) { r.TenantID = uuid.New() },
			wantErr: ErrProgramNotFound,
		},
		{
			name:    "inactive program",
			mutate:  func(r *Request) { r.ProgramID = inactive.ID },
			wantErr: ErrProgramNotFound,
		},
		{
			name:    "disabled slot",
			mutate:  func(r *Request) { r.Slot = "18:00" },
			wantErr: ErrInvalidSlot,
		},
		{
			name:    "unknown slot",
			mutate:  func(r *Request) { r.Slot = "11:30" },
			wantErr: ErrInvalidSlot,
		},
		{
			name:    "weekday without sessions",
			mutate:  func(r *Request) { r.Date = testutil.Date(2024, 6, 4) },
			wantErr: ErrDateNotBookable,
		},
		{
			name:    "date in the past",
			mutate:  func(r *Request) { r.Date = testutil.Date(2024, 5, 29) },
			wantErr: ErrDateNotBookable,
		},
		{
			name:    "date beyond horizon",
			mutate:  func(r *Request) { r.Date = testutil.Date(2024, 6, 14) },
			wantErr: ErrDateNotBookable,
		},
		{
			name:    "malformed slot",
			mutate:  func(r *Request) { r.Slot = "9am" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing user",
			mutate:  func(r *Request) { r.UserID = uuid.Nil },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(userID, monday, "09:00")
			tt.mutate(req)

			resp, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
		})
	}

	assert.Equal(t, 0, f.store.ConfirmedCount(f.program.ID, monday, "09:00"))
}

func TestExecute_UserCapExceeded(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.MaxPerUser = ptr.Ptr(2)
		p.SeatsPerSlot = 100
	})
	userID := uuid.New()

	f.book(t, userID, testutil.Date(2024, 6, 1), "09:00")
	f.book(t, userID, testutil.Date(2024, 6, 2), "09:00")

	_, err := f.uc.Execute(context.Background(), f.request(userID, testutil.Date(2024, 6, 3), "09:00"))
	assert.ErrorIs(t, err, ErrUserCapExceeded)

	// Лимит не касается других пользователей
	f.book(t, uuid.New(), testutil.Date(2024, 6, 3), "09:00")
}

func TestExecute_UserDayCapExceeded(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.MaxPerUserPerDay = ptr.Ptr(1)
	})
	userID := uuid.New()

	f.book(t, userID, testutil.Date(2024, 6, 1), "09:00")

	_, err := f.uc.Execute(context.Background(), f.request(userID, testutil.Date(2024, 6, 1), "10:00"))
	assert.ErrorIs(t, err, ErrUserDayCapExceeded)

	f.book(t, userID, testutil.Date(2024, 6, 2), "10:00")
}

func TestExecute_SlotFull(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.SeatsPerSlot = 3
	})
	date := testutil.Date(2024, 6, 1)

	for i := 0; i < 3; i++ {
		f.book(t, uuid.New(), date, "09:00")
	}

	_, err := f.uc.Execute(context.Background(), f.request(uuid.New(), date, "09:00"))
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, 3, f.store.ConfirmedCount(f.program.ID, date, "09:00"))
	assert.Equal(t, 1, f.metrics.results[resultSlotFull])
}

func TestExecute_CapCheckedBeforeCapacity(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.MaxPerUser = ptr.Ptr(1)
		p.SeatsPerSlot = 1
	})
	userID := uuid.New()
	date := testutil.Date(2024, 6, 1)

	f.book(t, userID, date, "09:00")

	// Слот заполнен, но первой срабатывает проверка лимита пользователя
	_, err := f.uc.Execute(context.Background(), f.request(userID, date, "09:00"))
	assert.ErrorIs(t, err, ErrUserCapExceeded)
}

func TestExecute_DuplicateBooking(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.SeatsPerSlot = 10
	})
	userID := uuid.New()
	date := testutil.Date(2024, 6, 1)

	f.book(t, userID, date, "14:00")

	_, err := f.uc.Execute(context.Background(), f.request(userID, date, "14:00"))
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Equal(t, 1, f.store.ConfirmedCount(f.program.ID, date, "14:00"))
}

func TestExecute_CancelledBookingDoesNotBlock(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.SeatsPerSlot = 1
	})
	userID := uuid.New()
	date := testutil.Date(2024, 6, 1)

	f.store.PutBooking(&domain.Booking{
		TenantID:    f.program.TenantID,
		ProgramID:   f.program.ID,
		UserID:      userID,
		BookingDate: date,
		SlotTime:    "09:00",
		Status:      domain.StatusCancelled,
	})

	f.book(t, userID, date, "09:00")
}

func TestExecute_ConcurrentLastSeat(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.SeatsPerSlot = 1
	})
	date := testutil.Date(2024, 6, 1)

	const attempts = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
		start     = make(chan struct{})
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.uc.Execute(context.Background(), f.request(uuid.New(), date, "09:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrSlotFull):
				full++
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, full)
	assert.Equal(t, 1, f.store.ConfirmedCount(f.program.ID, date, "09:00"))
}

func TestExecute_StorageUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.store.FailWith(errors.New("dial tcp: connection refused"))

	_, err := f.uc.Execute(context.Background(), f.request(uuid.New(), testutil.Date(2024, 6, 1), "09:00"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrOutcomeUnknown)
	assert.Equal(t, 1, f.metrics.results[resultStorageUnavailable])
}

func TestExecute_OutcomeUnknown(t *testing.T) {
	t.Run("commit failed", func(t *testing.T) {
		f := newFixture(t, nil)
		f.uc.txManager = commitFailingTx{inner: f.store.TxManager()}

		_, err := f.uc.Execute(context.Background(), f.request(uuid.New(), testutil.Date(2024, 6, 1), "09:00"))
		assert.ErrorIs(t, err, ErrOutcomeUnknown)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.Equal(t, 1, f.metrics.results[resultOutcomeUnknown])
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		f := newFixture(t, nil)
		f.store.FailWith(context.DeadlineExceeded)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.uc.Execute(ctx, f.request(uuid.New(), testutil.Date(2024, 6, 1), "09:00"))
		assert.ErrorIs(t, err, ErrOutcomeUnknown)
	})
}

func TestExecute_IdempotencyKeyReplaysBooking(t *testing.T) {
	f := newFixture(t, func(p *domain.Program) {
		p.SeatsPerSlot = 1
	})
	userID := uuid.New()
	date := testutil.Date(2024, 6, 1)

	req := f.request(userID, date, "09:00")
	req.IdempotencyKey = "retry-1"

	first, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Повтор после "неизвестного исхода" возвращает то же бронирование, а не SlotFull
	second, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Replayed)
	assert.Equal(t, 1, f.store.ConfirmedCount(f.program.ID, date, "09:00"))
	assert.Equal(t, 1, f.metrics.results[resultReplayed])
}

func TestExecute_IdempotencyKeyAfterUnknownOutcome(t *testing.T) {
	t.Run("booking was committed", func(t *testing.T) {
		f := newFixture(t, func(p *domain.Program) {
			p.SeatsPerSlot = 1
		})
		date := testutil.Date(2024, 6, 1)
		req := f.request(uuid.New(), date, "09:00")
		req.IdempotencyKey = "retry-1"

		f.uc.txManager = commitFailingTx{inner: f.store.TxManager()}
		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrOutcomeUnknown)

		// Повтор с тем же ключом получает своё бронирование, а не SlotFull
		f.uc.txManager = f.store.TxManager()
		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.True(t, resp.Replayed)
		assert.Equal(t, req.UserID, resp.UserID)
		assert.Equal(t, 1, f.store.ConfirmedCount(f.program.ID, date, "09:00"))
	})

	t.Run("booking was not committed", func(t *testing.T) {
		f := newFixture(t, nil)
		date := testutil.Date(2024, 6, 1)
		req := f.request(uuid.New(), date, "09:00")
		req.IdempotencyKey = "retry-1"

		f.uc.txManager = lostTx{}
		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrOutcomeUnknown)

		remembered, found, err := f.idempotency.Lookup(context.Background(), req.UserID, "retry-1")
		require.NoError(t, err)
		require.True(t, found)

		// Повтор создаёт бронирование под уже выданным ID
		f.uc.txManager = f.store.TxManager()
		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.False(t, resp.Replayed)
		assert.Equal(t, remembered, resp.ID)
		assert.Equal(t, 1, f.store.ConfirmedCount(f.program.ID, date, "09:00"))

		// Третий запрос с тем же ключом уже воспроизводит его
		again, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, remembered, again.ID)
	})
}

func TestExecute_IdempotencyLookupFailureFallsThrough(t *testing.T) {
	f := newFixture(t, nil)
	f.idempotency.lookupErr = errors.New("redis down")

	req := f.request(uuid.New(), testutil.Date(2024, 6, 1), "09:00")
	req.IdempotencyKey = "retry-1"

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
}

func TestExecute_NilOptionalDependencies(t *testing.T) {
	store := testutil.NewStore()
	program := store.PutProgram(testutil.NewProgram(uuid.New()))

	uc := NewUseCase(store.Programs(), store.Bookings(), store.TxManager(), nil, nil, nil, testutil.NopLogger{})
	uc.timeProvider = testutil.FixedClock{T: now}

	_, err := uc.Execute(context.Background(), &Request{
		UserID:         uuid.New(),
		TenantID:       program.TenantID,
		ProgramID:      program.ID,
		Date:           testutil.Date(2024, 6, 1),
		Slot:           "09:00",
		IdempotencyKey: "k",
	})
	require.NoError(t, err)
}
