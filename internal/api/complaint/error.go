package complaint

import (
	"net/http"

	"ScamSOS/pkg/response"
)

var (
	ErrUnsupportedFormat = response.NewErrorWithSlug(http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be pdf or xlsx")
	ErrRenderFailed      = response.NewErrorWithSlug(http.StatusInternalServerError, "RENDER_FAILED", "could not produce the complaint document")
)
