package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
)

const (
	// SQLSTATE кодов, при которых транзакцию имеет смысл повторить
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"

	defaultMaxAttempts = 3
	defaultBackoff     = 20 * time.Millisecond
)

var (
	// ErrBeginTx ошибка открытия транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrRetriesExhausted все попытки транзакции завершились дедлоком или конфликтом
	ErrRetriesExhausted = errors.New("txmanager: transaction retries exhausted")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryObserver получает уведомления о повторах (реализуется pkg/metrics.Metrics)
type RetryObserver interface {
	IncTxRetry()
}

// Option настройка менеджера транзакций
type Option func(*TransactionManager)

// WithMaxAttempts задаёт число попыток для Do (минимум 1)
func WithMaxAttempts(n int) Option {
	return func(m *TransactionManager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithBackoff задаёт базовую паузу между попытками (растёт линейно)
func WithBackoff(d time.Duration) Option {
	return func(m *TransactionManager) {
		m.backoff = d
	}
}

// WithRetryObserver подключает счётчик повторов
func WithRetryObserver(o RetryObserver) Option {
	return func(m *TransactionManager) {
		m.observer = o
	}
}

// TransactionManager выполняет функции внутри транзакции, передавая её через context
// Репозитории получают транзакцию через dbmetrics.GetExecutor
type TransactionManager struct {
	db          TxBeginner
	maxAttempts int
	backoff     time.Duration
	observer    RetryObserver
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner, opts ...Option) *TransactionManager {
	m := &TransactionManager{
		db:          db,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED
// Каждый запрос внутри fn видит данные, зафиксированные к его началу, поэтому после
// SELECT ... FOR UPDATE функция читает актуальные счётчики.
// При дедлоке (40P01) или конфликте сериализации (40001) fn выполняется заново,
// поэтому fn не должна иметь побочных эффектов вне БД
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.retry(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *TransactionManager) retry(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Повторять можно только транзакцию целиком
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		lastErr = m.run(ctx, opts, fn)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == m.maxAttempts {
			break
		}

		if m.observer != nil {
			m.observer.IncTxRetry()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ctx.Err(), lastErr)
		case <-time.After(time.Duration(attempt) * m.backoff):
		}
	}

	return fmt.Errorf("%w: after %d attempts: %w", ErrRetriesExhausted, m.maxAttempts, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует уже открытую транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsRetryable возвращает true для ошибок сериализации и дедлоков PostgreSQL
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
