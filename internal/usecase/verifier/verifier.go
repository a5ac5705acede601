// Package verifier turns a completed result list into a structured verdict.
// Verify is a pure function over the intent and the results; it never touches
// the browser.
package verifier

import (
	"fmt"
	"regexp"
	"strings"

	"heyq/internal/domain/entity"
	"heyq/internal/usecase/extractor"
	"heyq/internal/usecase/planner"
)

const (
	CheckPageLoaded     = "page_loaded"
	CheckLoginSucceeded = "login_succeeded"
	CheckResultsPresent = "results_present"
	CheckProductPresent = "product_present"
	CheckPriceMatch     = "price_verification"
	CheckOrderComplete  = "order_complete"
)

var rePriceToken = regexp.MustCompile(`[$€£₹]\s?[\d]+[\d.,]*`)

type Verifier struct{}

func New() *Verifier { return &Verifier{} }

// Verify derives the intent's check set from the result list and applies the
// three-way status rule: PASS iff no check is false and at least one is true;
// FAIL iff any check is false; PARTIAL iff every check is inconclusive but the
// plan executed without a fatal error.
func (v *Verifier) Verify(intent entity.Intent, results []entity.ActionResult) entity.Verdict {
	byName := index(results)
	var checks []entity.Check

	switch intent.Kind {
	case entity.IntentNavigate:
		checks = append(checks, pageLoaded(intent, byName))
	case entity.IntentSearch:
		checks = append(checks, pageLoaded(intent, byName), resultsPresent(byName))
	case entity.IntentLoginOnly:
		checks = append(checks, pageLoaded(intent, byName), loginSucceeded(byName))
	case entity.IntentAddToCart:
		checks = append(checks, pageLoaded(intent, byName))
		checks = append(checks, cartChecks(intent, byName)...)
	case entity.IntentAddToCartFlow:
		checks = append(checks, pageLoaded(intent, byName), loginSucceeded(byName))
		checks = append(checks, cartChecks(intent, byName)...)
	case entity.IntentCheckout, entity.IntentFullCheckout:
		checks = append(checks, pageLoaded(intent, byName), loginSucceeded(byName))
		checks = append(checks, cartChecks(intent, byName)...)
		checks = append(checks, orderComplete(byName))
	default:
		checks = append(checks, entity.NewNullCheck("intent_recognized", "known intent", string(intent.Kind)))
	}

	// A halted action is named explicitly so the caller can see exactly what
	// could not be resolved.
	for _, r := range results {
		if r.Error != nil && r.Error.Kind == entity.ErrKindElementResolution {
			checks = append(checks, entity.NewCheck(r.Name, false, "element resolved", r.Error.Message))
		}
	}

	status := entity.DeriveStatus(checks)
	return entity.Verdict{
		Status:  status,
		Checks:  checks,
		Message: message(intent.Kind, status),
	}
}

func index(results []entity.ActionResult) map[string]entity.ActionResult {
	m := make(map[string]entity.ActionResult, len(results))
	for _, r := range results {
		m[r.Name] = r
	}
	return m
}

func pageLoaded(intent entity.Intent, byName map[string]entity.ActionResult) entity.Check {
	expected := intent.Entities.Value(entity.EntitySite)
	nav, ok := byName[planner.SlotOpenSite]
	if !ok {
		return entity.NewNullCheck(CheckPageLoaded, expected, "not executed")
	}
	observed, _ := nav.Data["url"].(string)
	if !nav.OK {
		return entity.NewCheck(CheckPageLoaded, false, expected, observed)
	}
	domain := strings.TrimPrefix(expected, "www.")
	passed := strings.Contains(strings.ToLower(observed), strings.ToLower(domain))
	return entity.NewCheck(CheckPageLoaded, passed, expected, observed)
}

func loginSucceeded(byName map[string]entity.ActionResult) entity.Check {
	clicked, ok := byName[planner.SlotLoginButton]
	if !ok {
		return entity.NewNullCheck(CheckLoginSucceeded, "login submitted", "not executed")
	}
	if !clicked.OK {
		return entity.NewCheck(CheckLoginSucceeded, false, "login submitted", clicked.Error.Message)
	}
	return entity.NewCheck(CheckLoginSucceeded, true, "login submitted", "login form submitted via "+clicked.Selector)
}

func resultsPresent(byName map[string]entity.ActionResult) entity.Check {
	res, ok := byName[planner.SlotSearchResults]
	if !ok {
		return entity.NewNullCheck(CheckResultsPresent, "results visible", "not executed")
	}
	if !res.OK {
		return entity.NewCheck(CheckResultsPresent, false, "results visible", res.Error.Message)
	}
	return entity.NewCheck(CheckResultsPresent, true, "results visible", "resolved via "+res.Selector)
}

func cartChecks(intent entity.Intent, byName map[string]entity.ActionResult) []entity.Check {
	product := intent.Entities.Value(entity.EntityProduct)
	checks := []entity.Check{productPresent(product, byName)}
	checks = append(checks, priceVerification(intent, byName))
	return checks
}

func productPresent(product string, byName map[string]entity.ActionResult) entity.Check {
	tile, tileOK := byName[planner.SlotProductTile]
	added, addOK := byName[planner.SlotAddToCart]
	if !tileOK && !addOK {
		return entity.NewNullCheck(CheckProductPresent, product, "not executed")
	}
	if tileOK && !tile.OK {
		return entity.NewCheck(CheckProductPresent, false, product, tile.Error.Message)
	}
	if addOK && !added.OK {
		return entity.NewCheck(CheckProductPresent, false, product, added.Error.Message)
	}
	if !addOK {
		// Tile located but the add step never ran (halt downstream).
		return entity.NewNullCheck(CheckProductPresent, product, "add to cart not executed")
	}
	actual := product
	if text, ok := tile.Data["text"].(string); ok && text != "" {
		actual = text
	}
	return entity.NewCheck(CheckProductPresent, true, product, actual)
}

// priceVerification compares the expected price entity against the price the
// product tile rendered. Absence of an expectation is reported as a null
// check, never as a failure.
func priceVerification(intent entity.Intent, byName map[string]entity.ActionResult) entity.Check {
	expected, hasExpectation := intent.Entities[entity.EntityPrice]
	tile, tileOK := byName[planner.SlotProductTile]

	var actualRaw string
	if tileOK && tile.OK {
		if text, ok := tile.Data["text"].(string); ok {
			actualRaw = rePriceToken.FindString(text)
		}
	}

	if !hasExpectation {
		return entity.NewNullCheck(CheckPriceMatch, "", actualRaw)
	}
	if actualRaw == "" {
		return entity.NewCheck(CheckPriceMatch, false, expected.Value, "no price observed")
	}
	actual, ok := extractor.ParsePrice(actualRaw)
	if !ok {
		return entity.NewCheck(CheckPriceMatch, false, expected.Value, actualRaw)
	}
	return entity.NewCheck(CheckPriceMatch, actual == expected.Number, expected.Value, actualRaw)
}

func orderComplete(byName map[string]entity.ActionResult) entity.Check {
	done, ok := byName[planner.SlotOrderComplete]
	if !ok {
		return entity.NewNullCheck(CheckOrderComplete, "order confirmation visible", "not executed")
	}
	if !done.OK {
		return entity.NewCheck(CheckOrderComplete, false, "order confirmation visible", done.Error.Message)
	}
	return entity.NewCheck(CheckOrderComplete, true, "order confirmation visible", "resolved via "+done.Selector)
}

func message(kind entity.IntentKind, status entity.VerdictStatus) string {
	switch status {
	case entity.StatusPass:
		return fmt.Sprintf("%s completed, all checks passed", kind)
	case entity.StatusFail:
		return fmt.Sprintf("%s failed one or more checks", kind)
	default:
		return fmt.Sprintf("%s executed but no check was conclusive", kind)
	}
}
