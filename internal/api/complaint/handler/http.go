package complaintHandler

import (
	complaintService "ScamSOS/internal/api/complaint/service"
	"ScamSOS/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ComplaintHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	complaintService complaintService.IComplaintService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs complaintService.IComplaintService,
) *ComplaintHandler {
	return &ComplaintHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		complaintService: cs,
	}
}

func (h *ComplaintHandler) Start(srv fiber.Router) {
	srv.Post("/complaints", h.middleware.NewRateLimiter, h.middleware.NewSessionMiddleware, h.FileComplaint)
}
