package intake

import (
	"time"

	"ScamSOS/internal/entity"
)

type RegisterRequest struct {
	Name     string `form:"name" validate:"notblank,max=200"`
	Contact  string `form:"contact" validate:"notblank,max=32"`
	Address  string `form:"address" validate:"notblank,max=500"`
	Category string `form:"category" validate:"omitempty,oneof=OPA OPB OPC Others"`
}

// RegisterInput is a validated request plus whatever evidence came with it.
type RegisterInput struct {
	RegisterRequest
	Recording  *entity.EvidenceArtifact
	Screenshot *entity.EvidenceArtifact
}

type RegisterResponse struct {
	UserID         string             `json:"user_id"`
	SessionToken   string             `json:"session_token"`
	ExpiresAt      time.Time          `json:"expires_at"`
	ContextSummary *string            `json:"context_summary"`
	Warnings       []string           `json:"warnings"`
	Session        entity.SessionView `json:"session"`
}

// EvidenceResult is the outcome of summarising the uploaded evidence. Summary
// is nil when nothing was uploaded.
type EvidenceResult struct {
	Summary  *string
	Warnings []string
}
