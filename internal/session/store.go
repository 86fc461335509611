package session

import (
	"context"
	"errors"
	"time"

	"ScamSOS/internal/entity"
)

const DefaultTTL = 24 * time.Hour

var (
	ErrNotFound    = errors.New("session not found")
	ErrLockTimeout = errors.New("timed out waiting for session lock")
)

// Store persists sessions and serialises writers of the same session.
type Store interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, s *entity.Session) error
	// Lock blocks until the session's lock is held or ctx ends. The returned
	// function releases it.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// Update runs fn on the freshly loaded session while holding its lock and
// saves the result unless fn returns an error.
func Update(ctx context.Context, store Store, id string, fn func(s *entity.Session) error) (*entity.Session, error) {
	unlock, err := store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		return s, err
	}

	if err := store.Save(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}
