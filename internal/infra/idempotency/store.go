package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:booking"

// redisClient подмножество команд go-redis, которые использует хранилище
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Store связывает Idempotency-Key клиента с ID созданного бронирования
// Повтор запроса с тем же ключом (например, после таймаута с неизвестным исходом)
// возвращает уже созданное бронирование вместо второй попытки допуска
type Store struct {
	client redisClient
	ttl    time.Duration
}

// NewStore создает хранилище поверх клиента Redis
func NewStore(client redisClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Lookup возвращает ID бронирования, ранее сохранённого под ключом пользователя
func (s *Store) Lookup(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: Lookup - get: %v", ErrStore, err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: %q", ErrCorruptValue, raw)
	}

	return id, true, nil
}

// Remember сохраняет ID бронирования под ключом; существующее значение не перезаписывается
func (s *Store) Remember(ctx context.Context, userID uuid.UUID, key string, bookingID uuid.UUID) error {
	if err := s.client.SetNX(ctx, redisKey(userID, key), bookingID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Remember - setnx: %v", ErrStore, err)
	}
	return nil
}

// Ключи разнесены по пользователям: чужой ключ не даёт доступа к чужому бронированию
func redisKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, userID, key)
}
