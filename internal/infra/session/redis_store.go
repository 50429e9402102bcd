// Package session provides session stores that live outside the relational database.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"energyfit/config"
	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/lifecycle"
	"energyfit/internal/domain/repository"
	"energyfit/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const defaultKeyPrefix = "session:"

// ClientParams defines the parameters required to dial redis
type ClientParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewRedisClient builds a redis client and ties its lifetime to the application.
func NewRedisClient(params ClientParams) (*redis.Client, error) {
	if params.Config.Redis == nil || params.Config.Redis.Addr == "" {
		return nil, errors.New("redis session store selected without redis.addr")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     params.Config.Redis.Addr,
		Password: params.Config.Redis.Password,
		DB:       params.Config.Redis.DB,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping redis")
			}
			params.Logger.Info("Redis session store connected", slog.String("addr", params.Config.Redis.Addr))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// redisRecord is the stored value; the deadline is carried by the key TTL.
type redisRecord struct {
	Principal entity.PrincipalView `json:"principal"`
	CreatedAt time.Time            `json:"created_at"`
}

// RedisStore implements repository.SessionRepository with one expiring key per session.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ repository.SessionRepository = (*RedisStore)(nil)

// NewRedisStore creates a redis-backed session store. An empty prefix uses "session:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(idHash string) string {
	return s.prefix + idHash
}

// Create stores the session with a TTL ending at its idle deadline.
func (s *RedisStore) Create(ctx context.Context, session *entity.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(redisRecord{Principal: session.Principal, CreatedAt: session.CreatedAt})
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("session already expired")
	}

	if err := s.client.Set(ctx, s.key(session.IDHash), data, ttl).Err(); err != nil {
		return domainerrors.ErrTransientStore.WrapMessage("redis session create failed: " + err.Error())
	}

	return nil
}

// FindByIDHash reads the value and its remaining TTL in one round trip.
func (s *RedisStore) FindByIDHash(ctx context.Context, idHash string) (*entity.Session, error) {
	key := s.key(idHash)

	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, domainerrors.ErrTransientStore.WrapMessage("redis session lookup failed: " + err.Error())
	}

	data, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.WithStack(domainerrors.ErrSessionNotFound)
	}
	if err != nil {
		return nil, domainerrors.ErrTransientStore.WrapMessage("redis session lookup failed: " + err.Error())
	}

	var record redisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "failed to decode session")
	}

	ttl := ttlCmd.Val()
	if ttl <= 0 {
		// Key is about to expire or has no TTL; treat as gone.
		return nil, errors.WithStack(domainerrors.ErrSessionNotFound)
	}

	return &entity.Session{
		IDHash:    idHash,
		Principal: record.Principal,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: record.CreatedAt,
	}, nil
}

// Touch moves the key TTL to the new deadline.
func (s *RedisStore) Touch(ctx context.Context, idHash string, expiresAt time.Time) error {
	ok, err := s.client.PExpireAt(ctx, s.key(idHash), expiresAt).Result()
	if err != nil {
		return domainerrors.ErrTransientStore.WrapMessage("redis session touch failed: " + err.Error())
	}
	if !ok {
		return errors.WithStack(domainerrors.ErrSessionNotFound)
	}

	return nil
}

// Delete removes the key; a missing key is fine.
func (s *RedisStore) Delete(ctx context.Context, idHash string) error {
	if err := s.client.Del(ctx, s.key(idHash)).Err(); err != nil {
		return domainerrors.ErrTransientStore.WrapMessage("redis session delete failed: " + err.Error())
	}

	return nil
}

// DeleteExpired is a no-op: redis evicts expired keys itself.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
