package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ScamSOS/internal/entity"
	redisPkg "ScamSOS/pkg/redis"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	keyPrefix  = "scamsos:session:"
	lockPrefix = "scamsos:lock:"

	lockTTL      = 30 * time.Second
	lockInterval = 50 * time.Millisecond
)

type redisStore struct {
	redis redisPkg.IRedis
	ttl   time.Duration
	log   *logrus.Logger
}

func NewRedisStore(r redisPkg.IRedis, ttl time.Duration, log *logrus.Logger) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{redis: r, ttl: ttl, log: log}
}

func (s *redisStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	raw, err := s.redis.Get(ctx, keyPrefix+id)
	if errors.Is(err, redisPkg.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess entity.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &sess, nil
}

func (s *redisStore) Save(ctx context.Context, sess *entity.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return s.redis.Set(ctx, keyPrefix+sess.ID, raw, s.ttl)
}

// Lock spins on SET NX with a short expiry so a crashed holder cannot wedge
// the session.
func (s *redisStore) Lock(ctx context.Context, id string) (func(), error) {
	key := lockPrefix + id
	token := uuid.NewString()

	ticker := time.NewTicker(lockInterval)
	defer ticker.Stop()

	for {
		ok, err := s.redis.SetNX(ctx, key, token, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.DeleteIfEquals(ctx, key, token); err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id": id,
				"error":      err.Error(),
			}).Warn("Failed to release session lock")
		}
	}, nil
}
