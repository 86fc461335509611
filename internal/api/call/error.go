package call

import (
	"net/http"

	"ScamSOS/pkg/response"
)

var (
	ErrNotRegistered       = response.NewErrorWithSlug(http.StatusConflict, "NOT_REGISTERED", "register before requesting a call")
	ErrCallNotStarted      = response.NewErrorWithSlug(http.StatusConflict, "CALL_NOT_STARTED", "no call has been placed for this session")
	ErrCallSuperseded      = response.NewErrorWithSlug(http.StatusConflict, "CALL_SUPERSEDED", "the call was reset while waiting for it")
	ErrCallPlacementFailed = response.NewErrorWithSlug(http.StatusBadGateway, "CALL_PLACEMENT_FAILED", "could not place the call")
	ErrCallFailed          = response.NewErrorWithSlug(http.StatusBadGateway, "CALL_FAILED", "the voice platform reported the call as failed")
	ErrCallTimedOut        = response.NewErrorWithSlug(http.StatusGatewayTimeout, "CALL_TIMED_OUT", "the call did not finish in time, wait again or reset")
	ErrUnknownAction       = response.NewErrorWithSlug(http.StatusBadRequest, "UNKNOWN_ACTION", "unknown call action")
	ErrSessionNotFound     = response.NewErrorWithSlug(http.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
)
