package callService

import (
	"context"
	"os"
	"strconv"
	"time"

	"ScamSOS/internal/api/call"
	callRepository "ScamSOS/internal/api/call/repository"
	"ScamSOS/internal/entity"
	"ScamSOS/internal/session"
	"ScamSOS/pkg/backend"
	"ScamSOS/pkg/retell"

	"github.com/sirupsen/logrus"
)

type ICallService interface {
	// Dispatch runs one browser action against the session and returns the
	// session as it stands afterwards.
	Dispatch(ctx context.Context, sessionID string, action entity.CallAction) (*entity.Session, error)
	// AwaitCall drives a placed call to CALL_ANALYZED, reporting each step.
	AwaitCall(ctx context.Context, sessionID string, progress call.ProgressFunc) (*entity.Session, error)
	Attempts(ctx context.Context, sessionID string) []entity.CallAttempt
}

type Config struct {
	Status   PollConfig
	Analysis PollConfig
}

// MaxWait is the longest a single await can take.
func (c Config) MaxWait() time.Duration {
	return c.Status.MaxWait + c.Analysis.MaxWait
}

func DefaultConfig() Config {
	return Config{
		Status: PollConfig{
			InitialInterval: 5 * time.Second,
			Multiplier:      1.5,
			MaxInterval:     30 * time.Second,
			Jitter:          0.2,
			MaxAttempts:     120,
			MaxWait:         15 * time.Minute,
		},
		Analysis: PollConfig{
			InitialInterval: time.Second,
			Multiplier:      1.5,
			MaxInterval:     10 * time.Second,
			Jitter:          0.2,
			MaxAttempts:     60,
			MaxWait:         2 * time.Minute,
		},
	}
}

// ConfigFromEnv overrides the defaults with CALL_STATUS_* and CALL_ANALYSIS_*
// variables. Unparseable values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Status.InitialInterval = envDuration("CALL_STATUS_POLL_INTERVAL", cfg.Status.InitialInterval)
	cfg.Status.MaxAttempts = envInt("CALL_STATUS_MAX_ATTEMPTS", cfg.Status.MaxAttempts)
	cfg.Status.MaxWait = envDuration("CALL_STATUS_MAX_WAIT", cfg.Status.MaxWait)
	cfg.Analysis.MaxAttempts = envInt("CALL_ANALYSIS_MAX_ATTEMPTS", cfg.Analysis.MaxAttempts)
	cfg.Analysis.MaxWait = envDuration("CALL_ANALYSIS_MAX_WAIT", cfg.Analysis.MaxWait)

	return cfg
}

type callService struct {
	log     *logrus.Logger
	store   session.Store
	retell  retell.IRetell
	backend backend.IBackend
	repo    callRepository.Repository
	config  Config
	now     func() time.Time
}

func New(
	log *logrus.Logger,
	store session.Store,
	retellClient retell.IRetell,
	backendClient backend.IBackend,
	repo callRepository.Repository,
	config Config,
) ICallService {
	if repo == nil {
		repo = callRepository.NewNoop()
	}
	return &callService{
		log:     log,
		store:   store,
		retell:  retellClient,
		backend: backendClient,
		repo:    repo,
		config:  config,
		now:     time.Now,
	}
}

func (s *callService) Dispatch(ctx context.Context, sessionID string, action entity.CallAction) (*entity.Session, error) {
	switch action {
	case entity.ActionStartCall:
		return s.StartCall(ctx, sessionID)
	case entity.ActionAwaitCall:
		return s.AwaitCall(ctx, sessionID, nil)
	case entity.ActionReset:
		return s.Reset(ctx, sessionID)
	case entity.ActionView:
		return s.load(ctx, sessionID)
	default:
		return nil, call.ErrUnknownAction
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
