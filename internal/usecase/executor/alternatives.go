package executor

import (
	"fmt"
	"strings"
)

// alternativeSelectors derives looser variants from the exhausted candidate
// list before giving up: id selectors widen to attribute matches, class
// selectors to substring matches, data-test hooks to their common spellings.
func alternativeSelectors(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c] = true
	}

	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, sel := range candidates {
		switch {
		case strings.HasPrefix(sel, "#"):
			id := sel[1:]
			add(fmt.Sprintf("[id='%s']", id))
			add(fmt.Sprintf("[id*='%s']", id))
			add(fmt.Sprintf("[name='%s']", id))
		case strings.HasPrefix(sel, "."):
			class := sel[1:]
			add(fmt.Sprintf("[class*='%s']", class))
		case strings.Contains(sel, "data-test="):
			if v := attrValue(sel, "data-test"); v != "" {
				add(fmt.Sprintf("[data-testid='%s']", v))
				add(fmt.Sprintf("[data-qa='%s']", v))
				add(fmt.Sprintf("[test-id='%s']", v))
			}
		}
	}
	return out
}

func attrValue(selector, attr string) string {
	i := strings.Index(selector, attr+"=")
	if i < 0 {
		return ""
	}
	rest := selector[i+len(attr)+1:]
	rest = strings.TrimLeft(rest, "'\"")
	for j, r := range rest {
		if r == '\'' || r == '"' || r == ']' {
			return rest[:j]
		}
	}
	return ""
}
