package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
)

const defaultSnapshotKey = "salonbook:appointments"

// RedisStore dumps the whole ledger as one JSON blob under a single key,
// matching the key-value persistence model the mobile app used.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultSnapshotKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Save(ctx context.Context, appts []booking.Appointment) error {
	payload, err := json.Marshal(appts)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, payload, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]booking.Appointment, error) {
	payload, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var appts []booking.Appointment
	if err := json.Unmarshal(payload, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func RedisReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
