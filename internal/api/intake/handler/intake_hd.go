package intakeHandler

import (
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"ScamSOS/internal/api/intake"
	"ScamSOS/internal/entity"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/handlerUtil"
	"ScamSOS/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *IntakeHandler) Register(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing intake registration")

	var req intake.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("expected a multipart form"), ctx.Path())
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Contact = strings.TrimSpace(req.Contact)
	req.Address = strings.TrimSpace(req.Address)
	req.Category = strings.TrimSpace(req.Category)

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	in := intake.RegisterInput{RegisterRequest: req}

	if file := optionalFile(ctx, "recording"); file != nil {
		if err := h.utils.ValidateAudioFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, intake.ErrInvalidRecording, ctx.Path(), "register")
		}
		artifact, err := h.readArtifact(file, entity.EvidenceAudio)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "register")
		}
		in.Recording = artifact
	}

	if file := optionalFile(ctx, "screenshot"); file != nil {
		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, intake.ErrInvalidScreenshot, ctx.Path(), "register")
		}
		artifact, err := h.readArtifact(file, entity.EvidenceImage)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "register")
		}
		in.Screenshot = artifact
	}

	res, err := h.intakeService.Register(c, in)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "register")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

// optionalFile treats a missing or empty upload as no upload.
func optionalFile(ctx *fiber.Ctx, field string) *multipart.FileHeader {
	file, err := ctx.FormFile(field)
	if err != nil || file == nil || file.Size == 0 {
		return nil
	}
	return file
}

func (h *IntakeHandler) readArtifact(file *multipart.FileHeader, kind entity.EvidenceKind) (*entity.EvidenceArtifact, error) {
	data, err := h.utils.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return &entity.EvidenceArtifact{
		Kind:        kind,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
