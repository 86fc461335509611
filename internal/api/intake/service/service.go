package intakeService

import (
	"context"
	"time"

	"ScamSOS/internal/api/intake"
	"ScamSOS/internal/session"
	"ScamSOS/pkg/backend"
	jwtPkg "ScamSOS/pkg/jwt"
	"ScamSOS/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IIntakeService interface {
	Register(ctx context.Context, in intake.RegisterInput) (*intake.RegisterResponse, error)
}

type intakeService struct {
	log      *logrus.Logger
	evidence IEvidencePipeline
	backend  backend.IBackend
	store    session.Store
	signer   *jwtPkg.Signer
	utils    utils.IUtils
	ttl      time.Duration
}

func New(
	log *logrus.Logger,
	evidence IEvidencePipeline,
	backendClient backend.IBackend,
	store session.Store,
	signer *jwtPkg.Signer,
	utils utils.IUtils,
	ttl time.Duration,
) IIntakeService {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &intakeService{
		log:      log,
		evidence: evidence,
		backend:  backendClient,
		store:    store,
		signer:   signer,
		utils:    utils,
		ttl:      ttl,
	}
}
