// Package classifier assigns exactly one intent to an utterance using an
// ordered table of pattern rules. Each rule carries an explicit numeric rank;
// evaluation is strictly first-match-wins, so compound multi-step rules hold
// the lowest ranks. A full-flow utterance must never degrade to its first
// recognized sub-action.
package classifier

import (
	"regexp"
	"strings"

	"heyq/internal/domain/entity"
)

// FallbackSite is where flow intents land when the utterance and the session
// context name no site. The original demo flows target the Sauce Labs store.
const FallbackSite = "saucedemo.com"

// FallbackSearchSite serves SEARCH commands that resolve no site even after
// session context: "search for laptop" on a fresh session searches the web
// rather than failing resolution.
const FallbackSearchSite = "google.com"

var (
	reLogin    = regexp.MustCompile(`\blog ?in\b|\bsign ?in\b`)
	reCart     = regexp.MustCompile(`\b(?:add|put).*\b(?:cart|basket)\b|\badd to cart\b`)
	reCheckout = regexp.MustCompile(`\bcheck ?out\b|\bplace (?:the )?order\b|\bbuy now\b`)
	reSearch   = regexp.MustCompile(`\bsearch\b|\bfind\b|\blook for\b`)
	reNavigate = regexp.MustCompile(`\bopen\b|\bgo to\b|\bnavigate\b|\bvisit\b`)
)

// Rule is one (predicate, intent) pair. Rank makes the ordering invariant
// explicit and testable instead of an artifact of slice layout.
type Rule struct {
	Rank  int
	Name  string
	Match func(text string) bool
	Kind  entity.IntentKind
}

func rules() []Rule {
	return []Rule{
		{
			Rank: 100, Name: "full_checkout_flow", Kind: entity.IntentFullCheckout,
			Match: func(t string) bool {
				return reLogin.MatchString(t) && reCart.MatchString(t) && reCheckout.MatchString(t)
			},
		},
		{
			Rank: 200, Name: "add_to_cart_flow", Kind: entity.IntentAddToCartFlow,
			Match: func(t string) bool {
				return reLogin.MatchString(t) && reCart.MatchString(t)
			},
		},
		{
			Rank: 300, Name: "checkout", Kind: entity.IntentCheckout,
			Match: func(t string) bool { return reCheckout.MatchString(t) },
		},
		{
			Rank: 400, Name: "add_to_cart", Kind: entity.IntentAddToCart,
			Match: func(t string) bool { return reCart.MatchString(t) },
		},
		{
			Rank: 500, Name: "search", Kind: entity.IntentSearch,
			Match: func(t string) bool { return reSearch.MatchString(t) },
		},
		{
			Rank: 600, Name: "login_only", Kind: entity.IntentLoginOnly,
			Match: func(t string) bool { return reLogin.MatchString(t) },
		},
		{
			Rank: 700, Name: "navigate", Kind: entity.IntentNavigate,
			Match: func(t string) bool { return reNavigate.MatchString(t) },
		},
	}
}

type Classifier struct {
	table []Rule
}

func New() *Classifier {
	return &Classifier{table: rules()}
}

// Rules exposes the ordered table so the ordering invariant can be asserted.
func (c *Classifier) Rules() []Rule { return c.table }

// Classify evaluates the rule table top to bottom and stops at the first
// match. No rule matching yields UNKNOWN; the orchestrator turns that into a
// clarification request.
func (c *Classifier) Classify(text string, entities entity.EntitySet) entity.Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	es := entities
	if es == nil {
		es = entity.EntitySet{}
	}

	for _, r := range c.table {
		if !r.Match(t) {
			continue
		}
		intent := entity.Intent{Kind: r.Kind, Entities: es.Clone()}
		if intent.IsFlow() || intent.Kind == entity.IntentLoginOnly {
			defaultFlowSite(&intent)
		}
		return intent
	}
	return entity.Intent{Kind: entity.IntentUnknown, Entities: es.Clone()}
}

// Flow utterances like "login and add backpack to cart" usually omit the
// site; they default to the demo store rather than failing resolution.
func defaultFlowSite(intent *entity.Intent) {
	if intent.Entities.Has(entity.EntitySite) {
		return
	}
	intent.Entities[entity.EntitySite] = entity.Entity{
		Kind:       entity.EntitySite,
		Value:      FallbackSite,
		Confidence: entity.ConfidenceInferred,
	}
}

// DefaultSearchSite fills FallbackSearchSite into a SEARCH intent that still
// has no site. Called after context resolution, so a site remembered from an
// earlier turn is never shadowed.
func DefaultSearchSite(intent *entity.Intent) {
	if intent.Kind != entity.IntentSearch || intent.Entities.Has(entity.EntitySite) {
		return
	}
	intent.Entities[entity.EntitySite] = entity.Entity{
		Kind:       entity.EntitySite,
		Value:      FallbackSearchSite,
		Confidence: entity.ConfidenceInferred,
	}
}
