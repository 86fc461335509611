package callRepository

const (
	queryCreateSchema = `
		CREATE TABLE IF NOT EXISTS call_attempts (
			call_id     TEXT PRIMARY KEY,
			session_id  TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			state       TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			placed_at   TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_call_attempts_session_id ON call_attempts (session_id);
		CREATE INDEX IF NOT EXISTS idx_call_attempts_outcome ON call_attempts (outcome);
	`

	queryCreateAttempt = `
		INSERT INTO call_attempts (
			call_id,
			session_id,
			user_id,
			state,
			outcome,
			placed_at,
			updated_at
		) VALUES (
			:call_id,
			:session_id,
			:user_id,
			:state,
			:outcome,
			:placed_at,
			:updated_at
		)
		ON CONFLICT (call_id) DO NOTHING
	`

	queryUpdateOutcome = `
		UPDATE call_attempts
		SET
			state = :state,
			outcome = :outcome,
			updated_at = :updated_at
		WHERE call_id = :call_id
	`

	queryGetAttemptsBySession = `
		SELECT
			call_id,
			session_id,
			user_id,
			state,
			outcome,
			placed_at,
			updated_at
		FROM call_attempts
		WHERE session_id = :session_id
		ORDER BY placed_at DESC
	`
)
