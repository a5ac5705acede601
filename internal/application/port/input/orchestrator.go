package input

import (
	"context"

	"heyq/internal/domain/entity"
)

// RunRequest is one transcribed utterance plus its session. The field set
// matches the wire contract the UI layer depends on.
type RunRequest struct {
	Utterance string `json:"utterance"`
	SessionID string `json:"session_id"`
	Headed    bool   `json:"headed"`
	SlowMoMs  int    `json:"slow_mo_ms"`
	UseAI     bool   `json:"use_ai"`
}

// IntentPayload is the intent echo inside RunResponse.
type IntentPayload struct {
	Action   string         `json:"action"`
	Entities map[string]any `json:"entities,omitempty"`
}

// RunResponse carries either a verification verdict or a typed error string,
// never both, never neither.
type RunResponse struct {
	OK           bool            `json:"ok"`
	Site         string          `json:"site,omitempty"`
	Intent       *IntentPayload  `json:"intent,omitempty"`
	Verification *entity.Verdict `json:"verification,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Orchestrator is the composition root: one utterance in, one verdict out.
type Orchestrator interface {
	Run(ctx context.Context, req RunRequest) RunResponse
	// Clear drops the session's conversational context (the "clear/cancel"
	// control signal from the transcription source).
	Clear(sessionID string)
}
