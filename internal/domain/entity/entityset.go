package entity

// EntityKind is the closed set of structured values the extractor can pull
// out of an utterance.
type EntityKind string

const (
	EntitySite            EntityKind = "site"
	EntityProduct         EntityKind = "product"
	EntityQuantity        EntityKind = "quantity"
	EntityPrice           EntityKind = "price"
	EntityActionQualifier EntityKind = "action_qualifier"
)

// Confidence records how an entity value was obtained. Values filled from a
// previous turn are tagged so callers can tell them apart from what the user
// actually said.
type Confidence string

const (
	ConfidenceExplicit Confidence = "explicit"
	ConfidenceInferred Confidence = "inferred-from-context"
)

type Entity struct {
	Kind       EntityKind
	Value      string
	Number     float64
	Numeric    bool
	Confidence Confidence
}

// EntitySet maps entity kinds to extracted values. Built fresh per utterance.
type EntitySet map[EntityKind]Entity

func (es EntitySet) Has(kind EntityKind) bool {
	_, ok := es[kind]
	return ok
}

func (es EntitySet) Value(kind EntityKind) string {
	return es[kind].Value
}

// Clone returns an independent copy so a stored set cannot be mutated by a
// later request.
func (es EntitySet) Clone() EntitySet {
	out := make(EntitySet, len(es))
	for k, v := range es {
		out[k] = v
	}
	return out
}

// Values flattens the set into the wire shape used inside RunResponse.intent.
func (es EntitySet) Values() map[string]any {
	out := make(map[string]any, len(es))
	for k, e := range es {
		if e.Numeric {
			out[string(k)] = e.Number
			continue
		}
		out[string(k)] = e.Value
	}
	return out
}
