package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// MaxTxRetries bounds how often Atomic re-runs after a WATCH conflict.
	MaxTxRetries int
}

type RedisStore struct {
	client     *redis.Client
	maxRetries int
	logger     *zap.Logger
}

func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.MaxTxRetries, logger), nil
}

func NewRedisStoreFromClient(client *redis.Client, maxRetries int, logger *zap.Logger) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, maxRetries: maxRetries, logger: logger}
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return values, nil
}

func (s *RedisStore) HSet(ctx context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, key, hsetArgs(values)...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Atomic(ctx context.Context, keys []string, fn func(tx Tx) error) error {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTx{ctx: ctx, tx: rtx, writes: newPendingWrites()}
			if err := fn(tx); err != nil {
				return err
			}
			if len(tx.writes.keys) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, key := range tx.writes.keys {
					pipe.HSet(ctx, key, hsetArgs(tx.writes.values[key])...)
				}
				return nil
			})
			return err
		}, keys...)

		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("Watched keys changed, retrying",
				zap.Strings("keys", keys),
				zap.Int("attempt", attempt))
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisTx struct {
	ctx    context.Context
	tx     *redis.Tx
	writes *pendingWrites
}

func (t *redisTx) HGetAll(key string) (map[string]string, error) {
	values, err := t.tx.HGetAll(t.ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return t.writes.overlay(key, values), nil
}

func (t *redisTx) HSet(key string, values map[string]string) {
	t.writes.add(key, values)
}

func hsetArgs(values map[string]string) []interface{} {
	args := make([]interface{}, 0, len(values)*2)
	for f, v := range values {
		args = append(args, f, v)
	}
	return args
}
