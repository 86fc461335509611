package complaintService

import (
	"context"
	"errors"

	"ScamSOS/internal/api/complaint"
	"ScamSOS/internal/entity"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/document"

	"github.com/sirupsen/logrus"
)

func (s *complaintService) FileComplaint(ctx context.Context, sess *entity.Session, req complaint.ComplaintRequest, format string) (*complaint.FileComplaintResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	renderer, err := document.NewRenderer(format, s.fonts...)
	if errors.Is(err, document.ErrUnsupportedFormat) {
		return nil, complaint.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate complaint reference")
		return nil, err
	}

	record := entity.Complaint{
		ID:           id,
		Name:         req.Name,
		Contact:      req.Contact,
		Address:      req.Address,
		Category:     req.Category,
		Situation:    req.Situation,
		CallerNumber: req.CallerNumber,
		AWBNumber:    req.AWBNumber,
		Amount:       string(req.Amount),
		FiledAt:      now,
	}
	if sess != nil && sess.CallAnalyzed() {
		record.CallSummary = sess.CallSummary
	}

	doc, err := renderer.Render(record)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"complaint":  id,
			"error":      err.Error(),
		}).Error("Failed to render complaint")
		return nil, complaint.ErrRenderFailed
	}

	if len(doc.MissingScripts) > 0 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"complaint":  id,
			"scripts":    doc.MissingScripts,
		}).Warn("Complaint contains scripts without a PDF font, set PDF_SCRIPT_FONTS")
	}

	result := &complaint.FileComplaintResult{Document: doc}

	if s.archive != nil {
		result.ArchiveURL = s.archiveDocument(ctx, sess, doc)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"complaint":  id,
		"file":       doc.FileName,
		"archived":   result.ArchiveURL != "",
	}).Info("Complaint filed")

	return result, nil
}

// archiveDocument uploads the document and returns a presigned link to it,
// or "" if either step fails.
func (s *complaintService) archiveDocument(ctx context.Context, sess *entity.Session, doc *document.Document) string {
	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"file":       doc.FileName,
	}

	prefix := "anonymous"
	if sess != nil && sess.ID != "" {
		prefix = sess.ID
	}
	key := "complaints/" + prefix + "/" + doc.FileName

	if _, err := s.archive.Upload(key, doc.ContentType, doc.Data); err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Failed to archive complaint")
		return ""
	}

	url, err := s.archive.PresignURL(key)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Failed to presign archived complaint")
		return ""
	}

	return url
}
