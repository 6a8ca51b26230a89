package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/the-monkeys/fraud_support/config"
	"go.uber.org/zap"
)

const maxWatchRetries = 5

// RedisStore persists the session under a single key so that separate processes
// (for example successive console invocations) share it.
type RedisStore struct {
	client *redis.Client
	key    string
	log    *zap.SugaredLogger
}

// RedisConn opens and pings a client for the configured redis instance.
func RedisConn(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Host,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MaxIdle,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Host, err)
	}

	log.Debugf("session store connected to redis at: %v", cfg.Redis.Host)
	return rdb, nil
}

func NewRedisStore(client *redis.Client, key string, log *zap.SugaredLogger) *RedisStore {
	return &RedisStore{client: client, key: key, log: log}
}

func (r *RedisStore) Get(ctx context.Context) (Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		r.log.Warnw("discarding unreadable session", "key", r.key, "err", err)
		return Session{}, nil
	}
	return s, nil
}

func (r *RedisStore) Set(ctx context.Context, s Session) error {
	if !s.Active() {
		return r.Clear(ctx)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttlFor(s)).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// SetUser updates the cached user inside a WATCH transaction so a concurrent Clear
// is never resurrected.
func (r *RedisStore) SetUser(ctx context.Context, u User) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, r.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNoSession
		}
		if err != nil {
			return err
		}

		var s Session
		if err := json.Unmarshal(data, &s); err != nil || !s.Active() {
			return ErrNoSession
		}
		s.User = &u

		payload, err := json.Marshal(s)
		if err != nil {
			return err
		}
		ttl := tx.TTL(ctx, r.key).Val()
		if ttl < 0 {
			ttl = 0
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, payload, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNoSession) {
			return fmt.Errorf("cache user: %w", err)
		}
		return err
	}
	return fmt.Errorf("cache user: %w", redis.TxFailedErr)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func ttlFor(s Session) time.Duration {
	if s.Expiry.IsZero() {
		return 0
	}
	ttl := time.Until(s.Expiry)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
