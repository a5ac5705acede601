package planner

import (
	"fmt"
	"strings"
)

// Candidate selector lists per template slot, pre-ranked by specificity:
// id-based first, attribute-based second, visible-text-based third,
// structural/class-based last. The executor degrades down the list, so the
// most stable selector is preferred and the most permissive is the fallback.

func usernameField() []string {
	return []string{
		"#user-name",
		"input[name='user-name']",
		"input[name='username']",
		"input[name='email']",
		"input[placeholder*='Username' i]",
		"form input[type='text']",
	}
}

func passwordField() []string {
	return []string{
		"#password",
		"input[name='password']",
		"input[placeholder*='Password' i]",
		"form input[type='password']",
	}
}

func loginButton() []string {
	return []string{
		"#login-button",
		"input[data-test='login-button']",
		"button[type='submit']",
		"input[type='submit']",
		`//button[contains(translate(., "LOGIN", "login"), "login")]`,
		".btn_action",
	}
}

func searchBox() []string {
	return []string{
		"#search",
		"input[name='q']",
		"input[name='search']",
		"input[type='search']",
		"input[placeholder*='search' i]",
		".search-input",
	}
}

func searchSubmit() []string {
	return []string{
		"#search-button",
		"button[type='submit']",
		"input[type='submit']",
		`//button[contains(translate(., "SEARCH", "search"), "search")]`,
		".search-btn",
	}
}

func searchResults() []string {
	return []string{
		"#search_results",
		"[data-component-type='s-search-result']",
		"#results",
		".search-results",
		".results",
	}
}

func productTile(product string) []string {
	p := strings.ToLower(product)
	return []string{
		"[data-test='inventory-item-name']",
		fmt.Sprintf(`//*[contains(@class,"inventory_item_name") and contains(translate(normalize-space(.), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), %q)]`, p),
		fmt.Sprintf(`//*[contains(translate(normalize-space(.), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), %q)][self::h1 or self::h2 or self::h3 or self::a or self::div[contains(@class,"name") or contains(@class,"title")]]`, p),
		".inventory_item_name",
		".product-title",
	}
}

func addToCartButton(product string) []string {
	slug := strings.ReplaceAll(strings.ToLower(product), " ", "-")
	return []string{
		fmt.Sprintf("button[data-test*='add-to-cart'][data-test*=%q]", slug),
		"button[data-test*='add-to-cart']",
		`//button[contains(translate(., "ADCT", "adct"), "add to cart")]`,
		`//button[contains(translate(., "BUYNOW", "buynow"), "buy now")]`,
		".btn_inventory",
		".add-to-cart-btn",
	}
}

func cartLink() []string {
	return []string{
		"#shopping_cart_container a",
		"a[data-test='shopping-cart-link']",
		"a[href*='cart']",
		".shopping_cart_link",
	}
}

func checkoutButton() []string {
	return []string{
		"#checkout",
		"button[data-test='checkout']",
		`//button[contains(translate(., "CHEKOUT", "chekout"), "checkout")]`,
		".checkout_button",
	}
}

func firstNameField() []string {
	return []string{"#first-name", "input[name='firstName']", "input[placeholder*='First Name' i]"}
}

func lastNameField() []string {
	return []string{"#last-name", "input[name='lastName']", "input[placeholder*='Last Name' i]"}
}

func postalCodeField() []string {
	return []string{"#postal-code", "input[name='postalCode']", "input[placeholder*='Zip' i]", "input[placeholder*='Postal' i]"}
}

func continueButton() []string {
	return []string{"#continue", "input[data-test='continue']", `//input[@value="Continue"]`, ".cart_button"}
}

func finishButton() []string {
	return []string{"#finish", "button[data-test='finish']", `//button[contains(., "Finish")]`, ".cart_button"}
}

func orderCompleteHeader() []string {
	return []string{
		"[data-test='complete-header']",
		`//*[contains(translate(., "THANKYOU", "thankyou"), "thank you")]`,
		".complete-header",
	}
}
