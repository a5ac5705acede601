package entity

// Redacted replaces secret FILL values everywhere they would otherwise
// appear: result payloads, traces, log fields.
const Redacted = "***"

// ActionError is the per-action error record carried inside an ActionResult.
type ActionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ActionResult is what every atomic action returns. The executor accumulates
// one per executed action; the list is the sole input to verification.
type ActionResult struct {
	Action   ActionKind     `json:"action"`
	Name     string         `json:"name"`
	OK       bool           `json:"ok"`
	Selector string         `json:"selector,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Error    *ActionError   `json:"error,omitempty"`
}

// Fatal reports whether this result aborted the rest of the plan.
func (r ActionResult) Fatal() bool {
	return r.Error != nil &&
		(r.Error.Kind == ErrKindDriverFatal || r.Error.Kind == ErrKindElementResolution || r.Error.Kind == ErrKindTimeout)
}
