package intakeHandler

import (
	intakeService "ScamSOS/internal/api/intake/service"
	"ScamSOS/internal/middleware"
	"ScamSOS/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type IntakeHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	intakeService intakeService.IIntakeService
	utils         utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	is intakeService.IIntakeService,
	utils utils.IUtils,
) *IntakeHandler {
	return &IntakeHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		intakeService: is,
		utils:         utils,
	}
}

func (h *IntakeHandler) Start(srv fiber.Router) {
	srv.Post("/intake", h.middleware.NewRateLimiter, h.Register)
}
