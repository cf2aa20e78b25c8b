package event

import (
	"regexp"
	"sort"
)

// renderFallback replaces the body when alias substitution fails. Readers get
// a placeholder instead of a broken page.
const renderFallback = "Content unavailable due to formatting issues."

// render substitutes image alias tokens in a markdown body with their serving
// URLs. Only aliases appearing as link targets, wrapped in parentheses, are
// replaced; the alias itself is matched literally. Aliases are applied in
// sorted order so the result is deterministic.
func render(body string, aliases map[string]string) string {
	if len(aliases) == 0 {
		return body
	}

	keys := make([]string, 0, len(aliases))
	for alias := range aliases {
		keys = append(keys, alias)
	}
	sort.Strings(keys)

	for _, alias := range keys {
		pattern, err := regexp.Compile(`\(` + regexp.QuoteMeta(alias) + `\)`)
		if err != nil {
			return renderFallback
		}
		body = pattern.ReplaceAllLiteralString(body, "("+aliases[alias]+")")
	}

	return body
}
