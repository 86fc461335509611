package callRepository

import (
	"context"

	"ScamSOS/internal/entity"
)

type noopRepository struct{}

// NewNoop is used when no database is configured. Attempts are dropped.
func NewNoop() Repository {
	return noopRepository{}
}

func (noopRepository) NewClient() Client {
	return Client{Calls: noopJournal{}}
}

func (noopRepository) Migrate(context.Context) error {
	return nil
}

type noopJournal struct{}

func (noopJournal) CreateAttempt(context.Context, entity.CallAttempt) error { return nil }

func (noopJournal) UpdateOutcome(context.Context, string, entity.CallState, entity.CallOutcome) error {
	return nil
}

func (noopJournal) GetAttemptsBySession(context.Context, string) ([]entity.CallAttempt, error) {
	return nil, nil
}
