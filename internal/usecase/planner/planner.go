// Package planner expands a resolved intent into an ordered plan of atomic
// browser actions. Planning is pure and deterministic: the same intent and
// entities always produce a structurally identical plan.
package planner

import (
	"fmt"
	"strings"

	"heyq/internal/domain/entity"
)

// Slot names shared with the verifier, which keys its checks off them.
const (
	SlotOpenSite      = "open_site"
	SlotUsername      = "username_field"
	SlotPassword      = "password_field"
	SlotLoginButton   = "login_button"
	SlotSearchBox     = "search_box"
	SlotSearchSubmit  = "search_submit"
	SlotSearchResults = "search_results"
	SlotProductTile   = "product_tile"
	SlotAddToCart     = "add_to_cart_button"
	SlotCartLink      = "cart_link"
	SlotCheckout      = "checkout_button"
	SlotFirstName     = "first_name_field"
	SlotLastName      = "last_name_field"
	SlotPostalCode    = "postal_code_field"
	SlotContinue      = "continue_button"
	SlotFinish        = "finish_button"
	SlotOrderComplete = "order_complete_header"
)

// Credentials and checkout identity filled into login/checkout templates.
// Password is the only secret-flagged value.
type Profile struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	PostalCode string
}

type Planner struct {
	profile Profile
}

func New(profile Profile) *Planner {
	return &Planner{profile: profile}
}

// Plan maps the intent onto its fixed action template, substituting entity
// values into the parametrized slots. A required slot with no value after
// context resolution yields a MissingEntity error, never a partial plan.
func (p *Planner) Plan(intent entity.Intent) (entity.ActionPlan, error) {
	if err := checkRequired(intent); err != nil {
		return entity.ActionPlan{}, err
	}

	site := intent.Entities.Value(entity.EntitySite)
	product := intent.Entities.Value(entity.EntityProduct)

	plan := entity.ActionPlan{Intent: intent.Kind, Site: site}

	switch intent.Kind {
	case entity.IntentNavigate:
		plan.Actions = []entity.AtomicAction{navigate(site)}

	case entity.IntentSearch:
		plan.Actions = append(
			[]entity.AtomicAction{navigate(site)},
			fill(SlotSearchBox, searchBox(), product, false),
			click(SlotSearchSubmit, searchSubmit()),
			waitFor(SlotSearchResults, searchResults()),
		)

	case entity.IntentLoginOnly:
		plan.Actions = append([]entity.AtomicAction{navigate(site)}, p.loginSteps()...)

	case entity.IntentAddToCart:
		plan.Actions = append([]entity.AtomicAction{navigate(site)}, cartSteps(product)...)

	case entity.IntentAddToCartFlow:
		plan.Actions = append([]entity.AtomicAction{navigate(site)}, p.loginSteps()...)
		plan.Actions = append(plan.Actions, cartSteps(product)...)

	case entity.IntentCheckout:
		plan.Actions = append([]entity.AtomicAction{navigate(site)}, p.loginSteps()...)
		plan.Actions = append(plan.Actions, cartSteps(product)...)
		plan.Actions = append(plan.Actions, p.checkoutSteps()...)

	case entity.IntentFullCheckout:
		plan.Actions = append([]entity.AtomicAction{navigate(site)}, p.loginSteps()...)
		plan.Actions = append(plan.Actions, cartSteps(product)...)
		plan.Actions = append(plan.Actions, p.checkoutSteps()...)

	default:
		return entity.ActionPlan{}, entity.NewError(entity.ErrKindClassification,
			fmt.Sprintf("no plan template for intent %s", intent.Kind))
	}

	return plan, nil
}

func checkRequired(intent entity.Intent) error {
	var missing []string
	for _, kind := range intent.Required() {
		if intent.Entities.Value(kind) == "" {
			missing = append(missing, string(kind))
		}
	}
	if len(missing) > 0 {
		return entity.NewError(entity.ErrKindMissingEntity,
			fmt.Sprintf("intent %s is missing %s and session context could not fill it",
				intent.Kind, strings.Join(missing, ", ")))
	}
	return nil
}

// BuildURL turns a bare site entity into a navigable URL.
func BuildURL(site string) string {
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		return site
	}
	return "https://" + site
}

func navigate(site string) entity.AtomicAction {
	return entity.AtomicAction{Kind: entity.ActionNavigate, Name: SlotOpenSite, URL: BuildURL(site)}
}

func fill(name string, selectors []string, value string, secret bool) entity.AtomicAction {
	return entity.AtomicAction{Kind: entity.ActionFill, Name: name, Selectors: selectors, Value: value, Secret: secret}
}

func click(name string, selectors []string) entity.AtomicAction {
	return entity.AtomicAction{Kind: entity.ActionClick, Name: name, Selectors: selectors}
}

func find(name string, selectors []string) entity.AtomicAction {
	return entity.AtomicAction{Kind: entity.ActionFind, Name: name, Selectors: selectors}
}

func waitFor(name string, selectors []string) entity.AtomicAction {
	return entity.AtomicAction{Kind: entity.ActionWaitFor, Name: name, Selectors: selectors}
}

func (p *Planner) loginSteps() []entity.AtomicAction {
	return []entity.AtomicAction{
		fill(SlotUsername, usernameField(), p.profile.Username, false),
		fill(SlotPassword, passwordField(), p.profile.Password, true),
		click(SlotLoginButton, loginButton()),
	}
}

func cartSteps(product string) []entity.AtomicAction {
	return []entity.AtomicAction{
		find(SlotProductTile, productTile(product)),
		click(SlotAddToCart, addToCartButton(product)),
	}
}

func (p *Planner) checkoutSteps() []entity.AtomicAction {
	return []entity.AtomicAction{
		click(SlotCartLink, cartLink()),
		click(SlotCheckout, checkoutButton()),
		fill(SlotFirstName, firstNameField(), p.profile.FirstName, false),
		fill(SlotLastName, lastNameField(), p.profile.LastName, false),
		fill(SlotPostalCode, postalCodeField(), p.profile.PostalCode, false),
		click(SlotContinue, continueButton()),
		click(SlotFinish, finishButton()),
		waitFor(SlotOrderComplete, orderCompleteHeader()),
	}
}
