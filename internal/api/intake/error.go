package intake

import (
	"net/http"

	"ScamSOS/pkg/response"
)

var (
	ErrInvalidRecording     = response.NewErrorWithSlug(http.StatusBadRequest, "INVALID_RECORDING", "recording must be an mp3, wav, m4a, ogg or webm file up to 25MB")
	ErrInvalidScreenshot    = response.NewErrorWithSlug(http.StatusBadRequest, "INVALID_SCREENSHOT", "screenshot must be a png or jpeg image up to 5MB")
	ErrSummarizationFailed  = response.NewErrorWithSlug(http.StatusBadGateway, "SUMMARIZATION_FAILED", "could not summarise the uploaded evidence")
	ErrRegistrationRejected = response.NewErrorWithSlug(http.StatusBadGateway, "REGISTRATION_REJECTED", "registration was rejected by the backend")
	ErrBackendUnavailable   = response.NewErrorWithSlug(http.StatusBadGateway, "BACKEND_UNAVAILABLE", "registration backend is unreachable")
	ErrSessionNotCreated    = response.NewErrorWithSlug(http.StatusInternalServerError, "SESSION_NOT_CREATED", "could not start a session")
)

const (
	WarningTranscriptionFailed  = "could not transcribe the recording"
	WarningTextExtractionFailed = "could not read text from the screenshot"
)
