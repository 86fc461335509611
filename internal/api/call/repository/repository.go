package callRepository

import (
	"ScamSOS/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	if db == nil {
		return NewNoop()
	}
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient() Client
	Migrate(ctx context.Context) error
}

// CallJournal records one row per placed call so operators can find calls
// that never completed.
type CallJournal interface {
	CreateAttempt(ctx context.Context, attempt entity.CallAttempt) error
	UpdateOutcome(ctx context.Context, callID string, state entity.CallState, outcome entity.CallOutcome) error
	GetAttemptsBySession(ctx context.Context, sessionID string) ([]entity.CallAttempt, error)
}

func (r *repository) NewClient() Client {
	return Client{
		Calls: &callRepository{q: r.DB, log: r.log},
	}
}

func (r *repository) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, queryCreateSchema)
	return err
}

type Client struct {
	Calls CallJournal
}

type callRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
