package entity

// ActionKind enumerates the atomic browser operations a plan is made of.
type ActionKind string

const (
	ActionNavigate ActionKind = "NAVIGATE"
	ActionFind     ActionKind = "FIND"
	ActionFill     ActionKind = "FILL"
	ActionClick    ActionKind = "CLICK"
	ActionWaitFor  ActionKind = "WAIT_FOR"
)

// AtomicAction is one step of an ActionPlan. Selectors is an ordered
// candidate list: the executor tries them front to back and the first one
// that resolves to a visible element wins.
type AtomicAction struct {
	Kind      ActionKind
	Name      string
	URL       string
	Selectors []string
	Value     string
	Secret    bool
}

// ActionPlan is the ordered expansion of one intent. Plans are immutable
// once constructed and consumed sequentially.
type ActionPlan struct {
	Intent  IntentKind
	Site    string
	Actions []AtomicAction
}
