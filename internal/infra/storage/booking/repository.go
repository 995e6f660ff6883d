package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

const (
	tableBookings = "bookings"

	// Коды ошибок PostgreSQL
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var bookingColumns = []string{
	"id",
	"tenant_id",
	"program_id",
	"user_id",
	"user_name",
	"user_email",
	"booking_date",
	"slot_time",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с журналом бронирований
// Все счётчики читаются из БД при каждом вызове, кэша нет
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новое бронирование
// Если в контексте передана активная транзакция, вставка выполняется в ней.
// Нарушение уникального индекса подтверждённых мест возвращается как ErrDuplicateBooking.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"id",
			"tenant_id",
			"program_id",
			"user_id",
			"user_name",
			"user_email",
			"booking_date",
			"slot_time",
			"status",
		).
		Values(
			booking.ID,
			booking.TenantID,
			booking.ProgramID,
			booking.UserID,
			booking.UserName,
			booking.UserEmail,
			dateArg(booking.BookingDate),
			booking.SlotTime,
			booking.Status,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case codeUniqueViolation:
				return nil, ErrDuplicateBooking
			case codeForeignKeyViolation:
				return nil, ErrProgramMissing
			}
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.BookingDate = types.DateOnly(booking.BookingDate)

	return booking, nil
}

// GetByID получает бронирование по ID в пределах компании
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// FindConfirmed ищет подтверждённое бронирование пользователя на конкретный слот
func (r *Repository) FindConfirmed(ctx context.Context, programID, userID uuid.UUID, date time.Time, slot types.TimeString) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{
			"program_id":   programID,
			"user_id":      userID,
			"booking_date": dateArg(date),
			"slot_time":    slot,
			"status":       domain.StatusConfirmed,
		}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindConfirmed - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindConfirmed - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// CountConfirmed считает подтверждённые бронирования слота (все пользователи)
func (r *Repository) CountConfirmed(ctx context.Context, programID uuid.UUID, date time.Time, slot types.TimeString) (int, error) {
	return r.count(ctx, "CountConfirmed", squirrel.Eq{
		"program_id":   programID,
		"booking_date": dateArg(date),
		"slot_time":    slot,
		"status":       domain.StatusConfirmed,
	})
}

// CountConfirmedByUser считает подтверждённые бронирования пользователя в программе (любая дата)
func (r *Repository) CountConfirmedByUser(ctx context.Context, programID, userID uuid.UUID) (int, error) {
	return r.count(ctx, "CountConfirmedByUser", squirrel.Eq{
		"program_id": programID,
		"user_id":    userID,
		"status":     domain.StatusConfirmed,
	})
}

// CountConfirmedByUserAndDate считает подтверждённые бронирования пользователя в программе на дату
func (r *Repository) CountConfirmedByUserAndDate(ctx context.Context, programID, userID uuid.UUID, date time.Time) (int, error) {
	return r.count(ctx, "CountConfirmedByUserAndDate", squirrel.Eq{
		"program_id":   programID,
		"user_id":      userID,
		"booking_date": dateArg(date),
		"status":       domain.StatusConfirmed,
	})
}

// CountConfirmedOn считает подтверждённые бронирования компании на дату
func (r *Repository) CountConfirmedOn(ctx context.Context, tenantID uuid.UUID, date time.Time) (int, error) {
	return r.count(ctx, "CountConfirmedOn", squirrel.Eq{
		"tenant_id":    tenantID,
		"booking_date": dateArg(date),
		"status":       domain.StatusConfirmed,
	})
}

// CountConfirmedFrom считает подтверждённые бронирования компании начиная с даты (включительно)
func (r *Repository) CountConfirmedFrom(ctx context.Context, tenantID uuid.UUID, from time.Time) (int, error) {
	return r.count(ctx, "CountConfirmedFrom", squirrel.And{
		squirrel.Eq{"tenant_id": tenantID, "status": domain.StatusConfirmed},
		squirrel.GtOrEq{"booking_date": dateArg(from)},
	})
}

// CountConfirmedBySlot возвращает число подтверждённых бронирований по каждому слоту даты
// Слоты без бронирований в результат не попадают
func (r *Repository) CountConfirmedBySlot(ctx context.Context, programID uuid.UUID, date time.Time) (map[types.TimeString]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_time", "COUNT(*)").
		From(tableBookings).
		Where(squirrel.Eq{
			"program_id":   programID,
			"booking_date": dateArg(date),
			"status":       domain.StatusConfirmed,
		}).
		GroupBy("slot_time").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlot - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[types.TimeString]int)
	for rows.Next() {
		var slot types.TimeString
		var n int
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, fmt.Errorf("%w: CountConfirmedBySlot - scan row: %v", ErrScanRow, err)
		}
		counts[slot] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlot - rows error: %w", ErrScanRow, err)
	}

	return counts, nil
}

// CountConfirmedBySlotInRange возвращает счётчики по слотам для каждой даты периода [from, to]
// Ключ внешней карты - дата в формате YYYY-MM-DD
func (r *Repository) CountConfirmedBySlotInRange(ctx context.Context, programID uuid.UUID, from, to time.Time) (map[string]map[types.TimeString]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("booking_date", "slot_time", "COUNT(*)").
		From(tableBookings).
		Where(squirrel.Eq{"program_id": programID, "status": domain.StatusConfirmed}).
		Where(squirrel.GtOrEq{"booking_date": dateArg(from)}).
		Where(squirrel.LtOrEq{"booking_date": dateArg(to)}).
		GroupBy("booking_date", "slot_time").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlotInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlotInRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[string]map[types.TimeString]int)
	for rows.Next() {
		var (
			date time.Time
			slot types.TimeString
			n    int
		)
		if err := rows.Scan(&date, &slot, &n); err != nil {
			return nil, fmt.Errorf("%w: CountConfirmedBySlotInRange - scan row: %v", ErrScanRow, err)
		}
		key := dateArg(date)
		if counts[key] == nil {
			counts[key] = make(map[types.TimeString]int)
		}
		counts[key][slot] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountConfirmedBySlotInRange - rows error: %w", ErrScanRow, err)
	}

	return counts, nil
}

// ListByUser возвращает бронирования пользователя в компании, ближайшие первыми
func (r *Repository) ListByUser(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"tenant_id": filter.TenantID, "user_id": filter.UserID}).
		OrderBy("booking_date ASC", "slot_time ASC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByTenant возвращает бронирования компании с фильтрацией, новые первыми
//
// Примеры:
//
//	Все бронирования программы:
//	  filter := domain.TenantBookingsFilter{TenantID: t, ProgramID: &p}
//
//	Подтверждённые за период:
//	  status := domain.StatusConfirmed
//	  filter := domain.TenantBookingsFilter{TenantID: t, Status: &status, StartDate: &from, EndDate: &to}
func (r *Repository) ListByTenant(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"tenant_id": filter.TenantID})

	if filter.ProgramID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"program_id": *filter.ProgramID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": dateArg(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": dateArg(*filter.EndDate)})
	}

	selectBuilder = selectBuilder.OrderBy("booking_date DESC", "slot_time DESC", "created_at DESC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTenant - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTenant - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// SetStatus обновляет статус бронирования
func (r *Repository) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.BookingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) count(ctx context.Context, op string, pred squirrel.Sqlizer) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableBookings).
		Where(pred).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: %s - build count query: %v", ErrBuildQuery, op, err)
	}

	var n int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %s - execute count: %w", ErrExecQuery, op, err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.ProgramID,
		&b.UserID,
		&b.UserName,
		&b.UserEmail,
		&b.BookingDate,
		&b.SlotTime,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.BookingDate = types.DateOnly(b.BookingDate)
	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// dateArg передаёт дату в БД строкой YYYY-MM-DD, чтобы часовой пояс не сдвигал день
func dateArg(t time.Time) string {
	return t.Format(domain.DateFormat)
}
