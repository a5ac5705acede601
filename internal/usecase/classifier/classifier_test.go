package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heyq/internal/domain/entity"
)

func TestClassifyTable(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		utterance string
		want      entity.IntentKind
	}{
		{"navigate", "go to saucedemo.com", entity.IntentNavigate},
		{"search", "search for backpack", entity.IntentSearch},
		{"login only", "log in to saucedemo", entity.IntentLoginOnly},
		{"login spelled signin", "sign in please", entity.IntentLoginOnly},
		{"add to cart", "add a backpack to the cart", entity.IntentAddToCart},
		{"checkout", "checkout now", entity.IntentCheckout},
		{"place order is checkout", "place the order", entity.IntentCheckout},
		{"login and cart is flow", "login and add a backpack to the cart", entity.IntentAddToCartFlow},
		{"all three markers is full flow", "login, add a backpack to the cart and checkout", entity.IntentFullCheckout},
		{"unknown", "what is the weather like", entity.IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.utterance, entity.EntitySet{})
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

// Compound rules must outrank their sub-actions: a full-flow utterance can
// never degrade to the first recognized single step.
func TestRuleRanksStrictlyAscending(t *testing.T) {
	rules := New().Rules()
	require.NotEmpty(t, rules)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Rank, rules[i].Rank,
			"rule %q must outrank %q", rules[i-1].Name, rules[i].Name)
	}
	assert.Equal(t, "full_checkout_flow", rules[0].Name)
}

func TestFullFlowNeverDegrades(t *testing.T) {
	c := New()
	// Every ordering of the three markers lands on the same compound intent.
	utterances := []string{
		"login, add the backpack to cart, then checkout",
		"checkout after you add the backpack to the cart and log in",
		"add a backpack to the basket, sign in and place the order",
	}
	for _, u := range utterances {
		got := c.Classify(u, entity.EntitySet{})
		assert.Equal(t, entity.IntentFullCheckout, got.Kind, u)
	}
}

func TestFlowIntentsDefaultSite(t *testing.T) {
	c := New()

	got := c.Classify("login and add a backpack to the cart", entity.EntitySet{})
	require.True(t, got.Entities.Has(entity.EntitySite))
	assert.Equal(t, FallbackSite, got.Entities.Value(entity.EntitySite))
	assert.Equal(t, entity.ConfidenceInferred, got.Entities[entity.EntitySite].Confidence)
}

func TestExplicitSiteBeatsFallback(t *testing.T) {
	c := New()
	es := entity.EntitySet{
		entity.EntitySite: {Kind: entity.EntitySite, Value: "shop.example.com", Confidence: entity.ConfidenceExplicit},
	}
	got := c.Classify("login and add a backpack to the cart", es)
	assert.Equal(t, "shop.example.com", got.Entities.Value(entity.EntitySite))
	assert.Equal(t, entity.ConfidenceExplicit, got.Entities[entity.EntitySite].Confidence)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	c := New()
	es := entity.EntitySet{}
	_ = c.Classify("log in and add a bag to the cart", es)
	assert.Empty(t, es, "input entity set must stay untouched")
}

func TestNavigateGetsNoFallbackSite(t *testing.T) {
	c := New()
	got := c.Classify("open something", entity.EntitySet{})
	assert.Equal(t, entity.IntentNavigate, got.Kind)
	assert.False(t, got.Entities.Has(entity.EntitySite))
}

func TestDefaultSearchSite(t *testing.T) {
	c := New()

	got := c.Classify("search for laptop", entity.EntitySet{})
	require.Equal(t, entity.IntentSearch, got.Kind)
	require.False(t, got.Entities.Has(entity.EntitySite), "classification alone must not fill the site")

	DefaultSearchSite(&got)
	require.True(t, got.Entities.Has(entity.EntitySite))
	assert.Equal(t, FallbackSearchSite, got.Entities.Value(entity.EntitySite))
	assert.Equal(t, entity.ConfidenceInferred, got.Entities[entity.EntitySite].Confidence)
}

func TestDefaultSearchSiteKeepsResolvedSite(t *testing.T) {
	intent := entity.Intent{
		Kind: entity.IntentSearch,
		Entities: entity.EntitySet{
			entity.EntitySite: {Kind: entity.EntitySite, Value: "amazon.com", Confidence: entity.ConfidenceInferred},
		},
	}
	DefaultSearchSite(&intent)
	assert.Equal(t, "amazon.com", intent.Entities.Value(entity.EntitySite))
}

func TestDefaultSearchSiteIgnoresOtherIntents(t *testing.T) {
	intent := entity.Intent{Kind: entity.IntentNavigate, Entities: entity.EntitySet{}}
	DefaultSearchSite(&intent)
	assert.False(t, intent.Entities.Has(entity.EntitySite))
}
