package callRepository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ScamSOS/internal/entity"
	"ScamSOS/pkg/log"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})

	return New(sqlx.NewDb(db, "postgres"), log.NewDiscardLogger()), mock
}

func TestNewWithoutDatabaseIsNoop(t *testing.T) {
	repo := New(nil, log.NewDiscardLogger())
	calls := repo.NewClient().Calls

	if err := calls.CreateAttempt(context.Background(), entity.CallAttempt{CallID: "call-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	attempts, err := calls.GetAttemptsBySession(context.Background(), "sess-1")
	if err != nil || attempts != nil {
		t.Fatalf("list = %v, %v", attempts, err)
	}
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestMigrateCreatesJournalTable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS call_attempts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestCreateAttemptBindsPostgresPlaceholders(t *testing.T) {
	repo, mock := newMockRepository(t)
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO call_attempts .*VALUES \(\s*\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\s*\)\s*ON CONFLICT \(call_id\) DO NOTHING`).
		WithArgs("call-1", "sess-1", "user-1", "CALL_PLACED", "pending", placed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.NewClient().Calls.CreateAttempt(context.Background(), entity.CallAttempt{
		CallID:    "call-1",
		SessionID: "sess-1",
		UserID:    "user-1",
		State:     entity.CallPlaced,
		Outcome:   entity.OutcomePending,
		PlacedAt:  placed,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestUpdateOutcome(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE call_attempts\s+SET\s+state = \$1,\s+outcome = \$2,\s+updated_at = \$3\s+WHERE call_id = \$4`).
		WithArgs("CALL_ENDED", "ended", sqlmock.AnyArg(), "call-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.NewClient().Calls.UpdateOutcome(context.Background(), "call-1", entity.CallEnded, entity.OutcomeEnded); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestUpdateOutcomeReturnsDatabaseError(t *testing.T) {
	repo, mock := newMockRepository(t)
	dbErr := errors.New("pq: connection refused")

	mock.ExpectExec(`UPDATE call_attempts`).WillReturnError(dbErr)

	err := repo.NewClient().Calls.UpdateOutcome(context.Background(), "call-1", entity.CallEnded, entity.OutcomeTimedOut)
	if !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want %v", err, dbErr)
	}
}

func TestGetAttemptsBySession(t *testing.T) {
	repo, mock := newMockRepository(t)
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := placed.Add(4 * time.Minute)

	rows := sqlmock.NewRows([]string{"call_id", "session_id", "user_id", "state", "outcome", "placed_at", "updated_at"}).
		AddRow("call-2", "sess-1", "user-1", "CALL_PLACED", "timed_out", updated, updated).
		AddRow("call-1", "sess-1", "user-1", "NOT_STARTED", "abandoned", placed, placed)

	mock.ExpectQuery(`FROM call_attempts\s+WHERE session_id = \$1\s+ORDER BY placed_at DESC`).
		WithArgs("sess-1").
		WillReturnRows(rows)

	got, err := repo.NewClient().Calls.GetAttemptsBySession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []entity.CallAttempt{
		{CallID: "call-2", SessionID: "sess-1", UserID: "user-1", State: entity.CallPlaced, Outcome: entity.OutcomeTimedOut, PlacedAt: updated, UpdatedAt: updated},
		{CallID: "call-1", SessionID: "sess-1", UserID: "user-1", State: entity.CallNotStarted, Outcome: entity.OutcomeAbandoned, PlacedAt: placed, UpdatedAt: placed},
	}
	if len(got) != len(want) {
		t.Fatalf("attempts = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attempt %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
