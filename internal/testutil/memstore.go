// Package testutil содержит in-memory реализации хранилищ для тестов usecase и сервисов.
// Семантика повторяет PostgreSQL-репозитории: те же sentinel-ошибки, каскадное удаление,
// уникальность подтверждённого места пользователя.
package testutil

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	programRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/program"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Store общее состояние каталога и журнала
type Store struct {
	mu       sync.Mutex
	programs map[uuid.UUID]*domain.Program
	bookings map[uuid.UUID]*domain.Booking
	order    []uuid.UUID // порядок вставки бронирований

	failWith error
	queries  atomic.Int64

	txMu sync.Mutex
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		programs: make(map[uuid.UUID]*domain.Program),
		bookings: make(map[uuid.UUID]*domain.Booking),
	}
}

// Programs возвращает репозиторий программ поверх хранилища
func (s *Store) Programs() *ProgramRepo { return &ProgramRepo{s: s} }

// Bookings возвращает репозиторий бронирований поверх хранилища
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// TxManager возвращает менеджер транзакций поверх хранилища
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

// FailWith заставляет все последующие вызовы репозиториев возвращать err (nil - снять)
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// BookingQueries количество обращений к журналу бронирований
func (s *Store) BookingQueries() int {
	return int(s.queries.Load())
}

// PutProgram добавляет программу напрямую (для подготовки данных)
func (s *Store) PutProgram(p *domain.Program) *domain.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	s.programs[p.ID] = &cp
	return p
}

// PutBooking добавляет бронирование напрямую, без проверок допуска
func (s *Store) PutBooking(b *domain.Booking) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.BookingDate = types.DateOnly(b.BookingDate)
	cp := *b
	s.bookings[b.ID] = &cp
	s.order = append(s.order, b.ID)
	return b
}

// ConfirmedCount число подтверждённых бронирований слота (для проверок в тестах)
func (s *Store) ConfirmedCount(programID uuid.UUID, date time.Time, slot types.TimeString) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.ProgramID == programID && b.IsConfirmed() && b.SlotTime == slot && types.SameDay(b.BookingDate, date) {
			n++
		}
	}
	return n
}

// Booking возвращает копию бронирования по ID
func (s *Store) Booking(id uuid.UUID) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, false
	}
	return *b, true
}

type snapshot struct {
	programs map[uuid.UUID]domain.Program
	bookings map[uuid.UUID]domain.Booking
	order    []uuid.UUID
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		programs: make(map[uuid.UUID]domain.Program, len(s.programs)),
		bookings: make(map[uuid.UUID]domain.Booking, len(s.bookings)),
		order:    append([]uuid.UUID(nil), s.order...),
	}
	for id, p := range s.programs {
		snap.programs[id] = *p
	}
	for id, b := range s.bookings {
		snap.bookings[id] = *b
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs = make(map[uuid.UUID]*domain.Program, len(snap.programs))
	for id, p := range snap.programs {
		cp := p
		s.programs[id] = &cp
	}
	s.bookings = make(map[uuid.UUID]*domain.Booking, len(snap.bookings))
	for id, b := range snap.bookings {
		cp := b
		s.bookings[id] = &cp
	}
	s.order = snap.order
}

// TxManager сериализует все транзакции одним мьютексом и откатывает изменения при ошибке
// Мьютекс играет роль блокировки строки программы: каждая транзакция видит всё,
// что зафиксировали предыдущие
type TxManager struct {
	s *Store
}

type txKey struct{}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	snap := m.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

// Do выполняет fn в "транзакции"
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn в "транзакции только для чтения"
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// ProgramRepo in-memory каталог программ
type ProgramRepo struct {
	s *Store
}

// GetByID получает программу компании
func (r *ProgramRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	p, ok := r.s.programs[id]
	if !ok || p.TenantID != tenantID {
		return nil, programRepo.ErrProgramNotFound
	}
	cp := *p
	return &cp, nil
}

// ListByTenant список программ компании по названию
func (r *ProgramRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, activeOnly bool) ([]*domain.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	result := make([]*domain.Program, 0)
	for _, p := range r.s.programs {
		if p.TenantID != tenantID || (activeOnly && !p.Active) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Create добавляет программу
func (r *ProgramRepo) Create(_ context.Context, p *domain.Program) (*domain.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.programs[p.ID] = &cp
	return p, nil
}

// Update перезаписывает программу
func (r *ProgramRepo) Update(_ context.Context, p *domain.Program) (*domain.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	existing, ok := r.s.programs[p.ID]
	if !ok || existing.TenantID != p.TenantID {
		return nil, programRepo.ErrProgramNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.s.programs[p.ID] = &cp
	return p, nil
}

// Delete удаляет программу и каскадно её бронирования
func (r *ProgramRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	p, ok := r.s.programs[id]
	if !ok || p.TenantID != tenantID {
		return programRepo.ErrProgramNotFound
	}
	delete(r.s.programs, id)
	for bid, b := range r.s.bookings {
		if b.ProgramID == id {
			delete(r.s.bookings, bid)
		}
	}
	return nil
}

// BookingRepo in-memory журнал бронирований
type BookingRepo struct {
	s *Store
}

func (r *BookingRepo) begin() error {
	r.s.queries.Add(1)
	r.s.mu.Lock()
	return r.s.failWith
}

func (r *BookingRepo) end() { r.s.mu.Unlock() }

func (r *BookingRepo) countWhere(pred func(b *domain.Booking) bool) (int, error) {
	if err := r.begin(); err != nil {
		r.end()
		return 0, err
	}
	defer r.end()
	n := 0
	for _, b := range r.s.bookings {
		if b.IsConfirmed() && pred(b) {
			n++
		}
	}
	return n, nil
}

// Create вставляет бронирование, соблюдая уникальность подтверждённого места
func (r *BookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()

	if _, ok := r.s.programs[b.ProgramID]; !ok {
		return nil, bookingRepo.ErrProgramMissing
	}

	b.BookingDate = types.DateOnly(b.BookingDate)
	if b.IsConfirmed() {
		for _, existing := range r.s.bookings {
			if existing.IsConfirmed() && existing.ProgramID == b.ProgramID && existing.UserID == b.UserID &&
				existing.SlotTime == b.SlotTime && existing.BookingDate.Equal(b.BookingDate) {
				return nil, bookingRepo.ErrDuplicateBooking
			}
		}
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.s.bookings[b.ID] = &cp
	r.s.order = append(r.s.order, b.ID)
	return b, nil
}

// GetByID получает бронирование компании
func (r *BookingRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Booking, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()
	b, ok := r.s.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

// FindConfirmed ищет подтверждённое место пользователя
func (r *BookingRepo) FindConfirmed(_ context.Context, programID, userID uuid.UUID, date time.Time, slot types.TimeString) (*domain.Booking, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()
	for _, b := range r.s.bookings {
		if b.IsConfirmed() && b.ProgramID == programID && b.UserID == userID &&
			b.SlotTime == slot && types.SameDay(b.BookingDate, date) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

// CountConfirmed считает подтверждённые бронирования слота
func (r *BookingRepo) CountConfirmed(_ context.Context, programID uuid.UUID, date time.Time, slot types.TimeString) (int, error) {
	return r.countWhere(func(b *domain.Booking) bool {
		return b.ProgramID == programID && b.SlotTime == slot && types.SameDay(b.BookingDate, date)
	})
}

// CountConfirmedByUser считает подтверждённые бронирования пользователя в программе
func (r *BookingRepo) CountConfirmedByUser(_ context.Context, programID, userID uuid.UUID) (int, error) {
	return r.countWhere(func(b *domain.Booking) bool {
		return b.ProgramID == programID && b.UserID == userID
	})
}

// CountConfirmedByUserAndDate считает подтверждённые бронирования пользователя в программе на дату
func (r *BookingRepo) CountConfirmedByUserAndDate(_ context.Context, programID, userID uuid.UUID, date time.Time) (int, error) {
	return r.countWhere(func(b *domain.Booking) bool {
		return b.ProgramID == programID && b.UserID == userID && types.SameDay(b.BookingDate, date)
	})
}

// CountConfirmedOn считает подтверждённые бронирования компании на дату
func (r *BookingRepo) CountConfirmedOn(_ context.Context, tenantID uuid.UUID, date time.Time) (int, error) {
	return r.countWhere(func(b *domain.Booking) bool {
		return b.TenantID == tenantID && types.SameDay(b.BookingDate, date)
	})
}

// CountConfirmedFrom считает подтверждённые бронирования компании начиная с даты
func (r *BookingRepo) CountConfirmedFrom(_ context.Context, tenantID uuid.UUID, from time.Time) (int, error) {
	day := types.DateOnly(from)
	return r.countWhere(func(b *domain.Booking) bool {
		return b.TenantID == tenantID && !b.BookingDate.Before(day)
	})
}

// CountConfirmedBySlot возвращает счётчики по слотам даты
func (r *BookingRepo) CountConfirmedBySlot(_ context.Context, programID uuid.UUID, date time.Time) (map[types.TimeString]int, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()
	counts := make(map[types.TimeString]int)
	for _, b := range r.s.bookings {
		if b.IsConfirmed() && b.ProgramID == programID && types.SameDay(b.BookingDate, date) {
			counts[b.SlotTime]++
		}
	}
	return counts, nil
}

// CountConfirmedBySlotInRange возвращает счётчики по слотам для каждой даты периода
func (r *BookingRepo) CountConfirmedBySlotInRange(_ context.Context, programID uuid.UUID, from, to time.Time) (map[string]map[types.TimeString]int, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()
	first, last := types.DateOnly(from), types.DateOnly(to)
	counts := make(map[string]map[types.TimeString]int)
	for _, b := range r.s.bookings {
		if !b.IsConfirmed() || b.ProgramID != programID || b.BookingDate.Before(first) || b.BookingDate.After(last) {
			continue
		}
		key := b.BookingDate.Format(domain.DateFormat)
		if counts[key] == nil {
			counts[key] = make(map[types.TimeString]int)
		}
		counts[key][b.SlotTime]++
	}
	return counts, nil
}

// ListByUser бронирования пользователя, ближайшие первыми
func (r *BookingRepo) ListByUser(_ context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()
	result := make([]*domain.Booking, 0)
	for _, id := range r.s.order {
		b, ok := r.s.bookings[id]
		if !ok || b.TenantID != filter.TenantID || b.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].BookingDate.Equal(result[j].BookingDate) {
			return result[i].BookingDate.Before(result[j].BookingDate)
		}
		return result[i].SlotTime.IsBefore(result[j].SlotTime)
	})
	return result, nil
}

// ListByTenant бронирования компании с фильтрами, новые первыми
func (r *BookingRepo) ListByTenant(_ context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	if err := r.begin(); err != nil {
		r.end()
		return nil, err
	}
	defer r.end()
	result := make([]*domain.Booking, 0)
	for _, id := range r.s.order {
		b, ok := r.s.bookings[id]
		if !ok || b.TenantID != filter.TenantID {
			continue
		}
		if filter.ProgramID != nil && b.ProgramID != *filter.ProgramID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.StartDate != nil && b.BookingDate.Before(types.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && b.BookingDate.After(types.DateOnly(*filter.EndDate)) {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].BookingDate.Equal(result[j].BookingDate) {
			return result[i].BookingDate.After(result[j].BookingDate)
		}
		return result[i].SlotTime.IsAfter(result[j].SlotTime)
	})
	return result, nil
}

// SetStatus меняет статус бронирования
func (r *BookingRepo) SetStatus(_ context.Context, tenantID, id uuid.UUID, status domain.BookingStatus) error {
	if err := r.begin(); err != nil {
		r.end()
		return err
	}
	defer r.end()
	if !status.IsValid() {
		return bookingRepo.ErrInvalidStatus
	}
	b, ok := r.s.bookings[id]
	if !ok || b.TenantID != tenantID {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}
