// Package extractor pulls structured entities (site, product, quantity,
// price) out of raw utterance text. Extraction never fails: on no match it
// returns an empty set.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"heyq/internal/domain/entity"
)

// Broad TLD suffix list. Any domain-shaped token ending in one of these is
// accepted as a candidate site; there is no site whitelist.
var tldSuffixes = []string{
	"com", "org", "net", "edu", "gov", "io", "co", "in", "uk", "de", "fr",
	"au", "ca", "jp", "cn", "br", "mx", "es", "it", "ru", "nl", "se", "ch",
	"ai", "app", "dev", "me", "us", "info", "biz", "tv", "cc", "shop", "store",
}

// Well-known names users say without a TLD, scanned front to back so an
// utterance naming two sites always resolves to the earliest entry.
var knownSites = []struct{ name, site string }{
	{"google", "google.com"},
	{"youtube", "youtube.com"},
	{"amazon", "amazon.com"},
	{"flipkart", "flipkart.com"},
	{"saucedemo", "saucedemo.com"},
	{"sauce demo", "saucedemo.com"},
	{"github", "github.com"},
	{"stackoverflow", "stackoverflow.com"},
	{"stack overflow", "stackoverflow.com"},
	{"reddit", "reddit.com"},
	{"hacker news", "news.ycombinator.com"},
	{"wikipedia", "wikipedia.org"},
	{"ebay", "ebay.com"},
	{"twitter", "twitter.com"},
	{"linkedin", "linkedin.com"},
}

// Spoken product names that map onto catalog wording.
var productSynonyms = map[string]string{
	"backpack": "backpack",
	"bag":      "backpack",
	"rucksack": "backpack",
	"shirt":    "t-shirt",
	"tshirt":   "t-shirt",
	"t-shirt":  "t-shirt",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "then": true, "to": true,
	"for": true, "on": true, "at": true, "in": true, "it": true, "me": true,
	"my": true, "please": true, "hey": true, "now": true, "of": true,
	"open": true, "go": true, "visit": true, "navigate": true, "search": true,
	"find": true, "look": true, "add": true, "cart": true, "basket": true,
	"login": true, "log": true, "sign": true, "checkout": true, "buy": true,
	"order": true, "place": true, "verify": true, "price": true, "with": true,
	"from": true, "into": true,
}

var (
	reQuoted       = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)
	reURL          = regexp.MustCompile(`https?://([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})(?:/\S*)?`)
	reDomainVerb   = regexp.MustCompile(`(?:visit|go to|open|navigate to|on|at)\s+([a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)+)`)
	reNavPhrase    = regexp.MustCompile(`(?:go to|open|visit|navigate to)\s+(.+?)(?:\s+and\b|$)`)
	reSearchFor    = regexp.MustCompile(`(?:search for|look for|find|search)\s+(.+?)(?:\s+on\s+\S+)?$`)
	reAddToCart    = regexp.MustCompile(`add\s+(?:a\s+|an\s+|the\s+)?(.+?)\s+to\s+(?:the\s+)?(?:cart|basket)`)
	reAddBare      = regexp.MustCompile(`add\s+(?:a\s+|an\s+|the\s+)?([a-z0-9 -]+)`)
	reBuy          = regexp.MustCompile(`(?:buy|purchase|get)\s+(?:a\s+|an\s+|the\s+)?([a-z0-9 -]+?)(?:\s+(?:on|from|at)\s+\S+)?$`)
	reQuantity     = regexp.MustCompile(`\b(\d+)\s*(?:x\b|items?|pieces?|units?|of\b)`)
	reQuantityWord = regexp.MustCompile(`\b(?:quantity|qty)\s*(?:of\s*)?(\d+)`)
	reQuantitySpok = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:items?|pieces?|units?)\b`)
	rePriceSymbol  = regexp.MustCompile(`(?:[$€£₹]\s?([\d.,]+))|(?:([\d.,]+)\s?(?:dollars|rupees|euros|pounds|usd|inr|[$€£₹]))`)
	rePriceKeyword = regexp.MustCompile(`(?:price|cost|costing|priced at|for)\s+(?:of\s+)?(?:rs\.?\s*)?[$€£₹]?\s?([\d]+[\d.,]*)`)
	reVerifyPrice  = regexp.MustCompile(`verify(?:\s+\w+)?\s+price|price\s+verification|and\s+verify\b`)
)

var wordNumbers = map[string]float64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// Extract applies the rule ladder independently per entity kind; the first
// successful rule wins for that kind.
func (e *Extractor) Extract(text string) entity.EntitySet {
	t := strings.ToLower(strings.TrimSpace(text))
	es := entity.EntitySet{}

	if site := extractSite(t); site != "" {
		es[entity.EntitySite] = entity.Entity{
			Kind: entity.EntitySite, Value: site, Confidence: entity.ConfidenceExplicit,
		}
	}
	if product := extractProduct(t); product != "" {
		es[entity.EntityProduct] = entity.Entity{
			Kind: entity.EntityProduct, Value: product, Confidence: entity.ConfidenceExplicit,
		}
	}
	if qty, ok := extractQuantity(t); ok {
		es[entity.EntityQuantity] = entity.Entity{
			Kind: entity.EntityQuantity, Value: strconv.FormatFloat(qty, 'f', -1, 64),
			Number: qty, Numeric: true, Confidence: entity.ConfidenceExplicit,
		}
	}
	if raw, price, ok := extractPrice(t); ok {
		es[entity.EntityPrice] = entity.Entity{
			Kind: entity.EntityPrice, Value: raw,
			Number: price, Numeric: true, Confidence: entity.ConfidenceExplicit,
		}
	}
	if reVerifyPrice.MatchString(t) {
		es[entity.EntityActionQualifier] = entity.Entity{
			Kind: entity.EntityActionQualifier, Value: "verify_price", Confidence: entity.ConfidenceExplicit,
		}
	}
	return es
}

func extractSite(t string) string {
	if m := reURL.FindStringSubmatch(t); m != nil {
		return strings.TrimPrefix(m[1], "www.")
	}
	if m := reDomainVerb.FindStringSubmatch(t); m != nil {
		if hasKnownSuffix(m[1]) {
			return strings.TrimPrefix(m[1], "www.")
		}
	}
	// Bare domain token anywhere in the utterance.
	for _, tok := range strings.Fields(t) {
		tok = strings.Trim(tok, ".,!?")
		if strings.Contains(tok, ".") && hasKnownSuffix(tok) {
			return strings.TrimPrefix(tok, "www.")
		}
	}
	for _, ks := range knownSites {
		if strings.Contains(t, ks.name) {
			return ks.site
		}
	}
	// Spoken multiword names: "open make my trip" becomes makemytrip.com.
	if m := reNavPhrase.FindStringSubmatch(t); m != nil {
		phrase := strings.TrimSpace(m[1])
		words := strings.Fields(phrase)
		if len(words) > 0 && len(words) <= 4 && !containsActionWord(words) {
			return strings.ReplaceAll(strings.Join(words, ""), "-", "") + ".com"
		}
	}
	return ""
}

func hasKnownSuffix(token string) bool {
	i := strings.LastIndex(token, ".")
	if i < 0 || i == len(token)-1 {
		return false
	}
	suffix := token[i+1:]
	for _, tld := range tldSuffixes {
		if suffix == tld {
			return true
		}
	}
	return false
}

func containsActionWord(words []string) bool {
	for _, w := range words {
		switch w {
		case "search", "find", "login", "checkout", "cart", "add", "buy", "order":
			return true
		}
	}
	return false
}

func extractProduct(t string) string {
	// Quoted literal has the highest precedence: the user delimited it.
	if m := reQuoted.FindStringSubmatch(t); m != nil {
		if m[1] != "" {
			return normalizeProduct(m[1])
		}
		return normalizeProduct(m[2])
	}
	for _, re := range []*regexp.Regexp{reAddToCart, reSearchFor, reBuy, reAddBare} {
		if m := re.FindStringSubmatch(t); m != nil {
			if p := normalizeProduct(m[1]); p != "" {
				return p
			}
		}
	}
	// Fallback heuristic: last meaningful tokens once stopwords and
	// domain-shaped tokens are stripped.
	return lastMeaningful(t, 2)
}

func normalizeProduct(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, ".,!?")
	if raw == "" {
		return ""
	}
	words := strings.Fields(raw)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if stopwords[w] || hasKnownSuffix(w) {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	joined := strings.Join(kept, " ")
	if syn, ok := productSynonyms[joined]; ok {
		return syn
	}
	return joined
}

func lastMeaningful(t string, n int) string {
	words := strings.Fields(t)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?'\"")
		if w == "" || stopwords[w] || hasKnownSuffix(w) || reQuantity.MatchString(w) {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	joined := strings.Join(kept, " ")
	if syn, ok := productSynonyms[joined]; ok {
		return syn
	}
	return joined
}

func extractQuantity(t string) (float64, bool) {
	if m := reQuantityWord.FindStringSubmatch(t); m != nil {
		return parseNumber(m[1])
	}
	if m := reQuantity.FindStringSubmatch(t); m != nil {
		return parseNumber(m[1])
	}
	if m := reQuantitySpok.FindStringSubmatch(t); m != nil {
		return wordNumbers[m[1]], true
	}
	return 0, false
}

func extractPrice(t string) (string, float64, bool) {
	if m := rePriceSymbol.FindStringSubmatch(t); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, ok := parseNumber(raw); ok {
			return strings.TrimSpace(m[0]), n, true
		}
	}
	if m := rePriceKeyword.FindStringSubmatch(t); m != nil {
		// The generic "for <number>" anchor also matches quantities; require
		// the stronger keywords unless a decimal point is present.
		anchored := strings.Contains(m[0], "price") || strings.Contains(m[0], "cost") ||
			strings.Contains(m[0], "rs") || strings.Contains(m[1], ".")
		if anchored {
			if n, ok := parseNumber(m[1]); ok {
				return m[1], n, true
			}
		}
	}
	return "", 0, false
}

// parseNumber is locale tolerant: it accepts both 1,299.50 and 1.299,50 by
// treating the last separator as the decimal mark.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		// A single comma followed by exactly two digits reads as decimals.
		if len(raw)-lastComma-1 == 2 {
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParsePrice exposes the locale-tolerant parser for verification, which has
// to compare expected price text against whatever the page rendered.
func ParsePrice(raw string) (float64, bool) {
	raw = strings.TrimFunc(raw, func(r rune) bool {
		return r == '$' || r == '€' || r == '£' || r == '₹' || r == ' '
	})
	return parseNumber(raw)
}
