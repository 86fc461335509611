package complaintService

import (
	"context"
	"time"

	"ScamSOS/internal/api/complaint"
	"ScamSOS/internal/entity"
	"ScamSOS/pkg/document"
	"ScamSOS/pkg/s3"
	"ScamSOS/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IComplaintService interface {
	FileComplaint(ctx context.Context, sess *entity.Session, req complaint.ComplaintRequest, format string) (*complaint.FileComplaintResult, error)
}

type complaintService struct {
	log     *logrus.Logger
	archive s3.ItfS3
	utils   utils.IUtils
	fonts   []document.ScriptFont
	now     func() time.Time
}

// New builds the complaint service. archive may be nil, in which case
// documents are only returned to the browser. fonts add PDF glyph coverage
// for scripts the embedded faces lack.
func New(log *logrus.Logger, archive s3.ItfS3, utils utils.IUtils, fonts []document.ScriptFont) IComplaintService {
	return &complaintService{
		log:     log,
		archive: archive,
		utils:   utils,
		fonts:   fonts,
		now:     time.Now,
	}
}
