package program

import (
	"context"
	"database/sql"
	"encoding/json"
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

const tablePrograms = "programs"

var programColumns = []string{
	"id",
	"tenant_id",
	"name",
	"description",
	"category",
	"color",
	"icon",
	"image_url",
	"schedule_type",
	"weekdays",
	"start_date",
	"end_date",
	"slots",
	"session_minutes",
	"seats_per_slot",
	"horizon_days",
	"max_per_user",
	"max_per_user_per_day",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий каталога программ
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория программ
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает программу компании по ID
// Внутри транзакции строка программы блокируется (FOR UPDATE): так сериализуются
// конкурентные допуски бронирований в одну программу
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Program, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(programColumns...).
		From(tablePrograms).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	program, err := scanProgram(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan program: %w", ErrScanRow, err)
	}

	return program, nil
}

// ListByTenant возвращает программы компании, отсортированные по названию
// activeOnly = true скрывает неактивные программы
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*domain.Program, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(programColumns...).
		From(tablePrograms).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("name ASC", "created_at ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTenant - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTenant - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	programs := make([]*domain.Program, 0)
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByTenant - scan row: %v", ErrScanRow, err)
		}
		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByTenant - rows error: %w", ErrScanRow, err)
	}

	return programs, nil
}

// Create создает программу
func (r *Repository) Create(ctx context.Context, program *domain.Program) (*domain.Program, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if program.ID == uuid.Nil {
		program.ID = uuid.New()
	}

	slots, err := json.Marshal(program.Slots)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal slots: %v", ErrEncodeSlots, err)
	}

	query, args, err := psqlbuilder.Insert(tablePrograms).
		Columns(
			"id",
			"tenant_id",
			"name",
			"description",
			"category",
			"color",
			"icon",
			"image_url",
			"schedule_type",
			"weekdays",
			"start_date",
			"end_date",
			"slots",
			"session_minutes",
			"seats_per_slot",
			"horizon_days",
			"max_per_user",
			"max_per_user_per_day",
			"active",
		).
		Values(
			program.ID,
			program.TenantID,
			program.Name,
			program.Description,
			program.Category,
			program.Color,
			program.Icon,
			program.ImageURL,
			program.ScheduleType,
			weekdaysArg(program.Weekdays),
			dateArg(program.StartDate),
			dateArg(program.EndDate),
			slots,
			program.SessionMinutes,
			program.SeatsPerSlot,
			program.HorizonDays,
			program.MaxPerUser,
			program.MaxPerUserPerDay,
			program.Active,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&program.CreatedAt, &program.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return program, nil
}

// Update перезаписывает изменяемые поля программы
// Частичное обновление собирается выше, в сервисе, поверх прочитанной программы
func (r *Repository) Update(ctx context.Context, program *domain.Program) (*domain.Program, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	slots, err := json.Marshal(program.Slots)
	if err != nil {
		return nil, fmt.Errorf("%w: Update - marshal slots: %v", ErrEncodeSlots, err)
	}

	query, args, err := psqlbuilder.Update(tablePrograms).
		Set("name", program.Name).
		Set("description", program.Description).
		Set("category", program.Category).
		Set("color", program.Color).
		Set("icon", program.Icon).
		Set("image_url", program.ImageURL).
		Set("schedule_type", program.ScheduleType).
		Set("weekdays", weekdaysArg(program.Weekdays)).
		Set("start_date", dateArg(program.StartDate)).
		Set("end_date", dateArg(program.EndDate)).
		Set("slots", slots).
		Set("session_minutes", program.SessionMinutes).
		Set("seats_per_slot", program.SeatsPerSlot).
		Set("horizon_days", program.HorizonDays).
		Set("max_per_user", program.MaxPerUser).
		Set("max_per_user_per_day", program.MaxPerUserPerDay).
		Set("active", program.Active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": program.ID, "tenant_id": program.TenantID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&program.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return program, nil
}

// Delete удаляет программу; бронирования удаляются каскадно (ON DELETE CASCADE)
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tablePrograms).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrProgramNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProgram(row rowScanner) (*domain.Program, error) {
	var (
		p                     domain.Program
		imageURL              sql.NullString
		weekdays              pq.Int64Array
		startDate, endDate    sql.NullTime
		slots                 []byte
		maxPerUser, maxPerDay sql.NullInt64
	)

	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Color,
		&p.Icon,
		&imageURL,
		&p.ScheduleType,
		&weekdays,
		&startDate,
		&endDate,
		&slots,
		&p.SessionMinutes,
		&p.SeatsPerSlot,
		&p.HorizonDays,
		&maxPerUser,
		&maxPerDay,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}

	p.Weekdays = make([]int, len(weekdays))
	for i, d := range weekdays {
		p.Weekdays[i] = int(d)
	}

	p.StartDate = nullDate(startDate)
	p.EndDate = nullDate(endDate)
	p.MaxPerUser = nullInt(maxPerUser)
	p.MaxPerUserPerDay = nullInt(maxPerDay)

	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &p.Slots); err != nil {
			return nil, fmt.Errorf("decode slots: %w", err)
		}
	}

	return &p, nil
}

func weekdaysArg(days []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	return arr
}

func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateFormat)
}

func nullDate(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	d := types.DateOnly(v.Time)
	return &d
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
