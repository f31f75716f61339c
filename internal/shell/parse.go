package shell

import (
	"strings"

	"github.com/user/dayplan/internal/plan"
)

// splitTrailingDate strips a trailing date literal from add-command tokens.
// The last token counts as a date when at least two tokens are present and
// it contains exactly two hyphens. The text is returned unparsed: invalid
// date text still strips the token, and the caller decides what to do.
func splitTrailingDate(tokens []string) ([]string, string) {
	if len(tokens) >= 2 && strings.Count(tokens[len(tokens)-1], "-") == 2 {
		return tokens[:len(tokens)-1], tokens[len(tokens)-1]
	}
	return tokens, ""
}

// extractTime removes the first token with a valid HH:MM shape and returns
// the rest. Later time-shaped tokens stay in the description.
func extractTime(tokens []string) ([]string, string) {
	for i, tok := range tokens {
		if plan.ValidTime(tok) {
			rest := make([]string, 0, len(tokens)-1)
			rest = append(rest, tokens[:i]...)
			rest = append(rest, tokens[i+1:]...)
			return rest, tok
		}
	}
	return tokens, ""
}
