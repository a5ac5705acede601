package output

import "context"

// SelectorSuggestion describes one failed element resolution the advisor is
// asked to recover from.
type SelectorSuggestion struct {
	ActionKind string
	Target     string
	Failed     []string
	PageText   string
}

// SelectorAdvisor proposes alternative selectors after the planner's
// candidate list is exhausted. Consulted only when the request enables the
// AI path; implementations may rate-limit or refuse.
type SelectorAdvisor interface {
	Suggest(ctx context.Context, req SelectorSuggestion) ([]string, error)
}
