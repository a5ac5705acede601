package entity

// IntentKind is the discrete automation goal classified from one utterance.
type IntentKind string

const (
	IntentNavigate      IntentKind = "NAVIGATE"
	IntentSearch        IntentKind = "SEARCH"
	IntentLoginOnly     IntentKind = "LOGIN_ONLY"
	IntentAddToCart     IntentKind = "ADD_TO_CART"
	IntentAddToCartFlow IntentKind = "ADD_TO_CART_FLOW"
	IntentCheckout      IntentKind = "CHECKOUT"
	IntentFullCheckout  IntentKind = "FULL_CHECKOUT_FLOW"
	IntentUnknown       IntentKind = "UNKNOWN"
)

// Intent carries the classified goal plus the entity set resolved for it.
// Exactly one intent is produced per utterance.
type Intent struct {
	Kind     IntentKind
	Entities EntitySet
}

// Required lists the entity kinds an intent cannot be planned without.
// Flow intents get their site defaulted by the classifier, so only the
// product remains mandatory for them.
func (i Intent) Required() []EntityKind {
	switch i.Kind {
	case IntentNavigate:
		return []EntityKind{EntitySite}
	case IntentSearch:
		return []EntityKind{EntitySite, EntityProduct}
	case IntentLoginOnly:
		return []EntityKind{EntitySite}
	case IntentAddToCart, IntentAddToCartFlow, IntentFullCheckout:
		return []EntityKind{EntitySite, EntityProduct}
	case IntentCheckout:
		return []EntityKind{EntitySite, EntityProduct}
	}
	return nil
}

// IsFlow reports whether the intent expands to a multi-step template that
// chains login with cart or checkout steps.
func (i Intent) IsFlow() bool {
	return i.Kind == IntentAddToCartFlow || i.Kind == IntentFullCheckout
}
