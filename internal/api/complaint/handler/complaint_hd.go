package complaintHandler

import (
	"fmt"
	"time"

	"ScamSOS/internal/api/complaint"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/handlerUtil"
	"ScamSOS/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const ArchiveURLHeader = "X-Complaint-Archive-URL"

func (h *ComplaintHandler) FileComplaint(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing complaint")

	var req complaint.ComplaintRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	sess, _ := h.middleware.GetSession(ctx)
	req.Prefill(sess)

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.complaintService.FileComplaint(c, sess, req, ctx.Query("format"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "file_complaint")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
	}

	if res.ArchiveURL != "" {
		ctx.Set(ArchiveURLHeader, res.ArchiveURL)
	}
	ctx.Set(fiber.HeaderContentType, res.Document.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, res.Document.FileName))

	return ctx.Status(fiber.StatusOK).Send(res.Document.Data)
}
