package form

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// maxSanitizePasses bounds the strip/unescape loop for nested encodings.
const maxSanitizePasses = 5

// Sanitizer strips markup from free-text input.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean returns s as plain text: NFKC-normalized, with every element removed
// (script and style bodies included) and surrounding space trimmed. Entities
// are decoded and the result re-stripped until it is stable, so encoded markup
// cannot reappear after decoding.
func (z *Sanitizer) Clean(s string) string {
	out := norm.NFKC.String(s)
	stable := false
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(z.policy.Sanitize(out))
		if next == out {
			stable = true
			break
		}
		out = next
	}
	if !stable || strings.Contains(strings.ToLower(out), "<script") {
		// Leave it escaped rather than return live markup.
		out = z.policy.Sanitize(out)
	}
	return strings.TrimSpace(out)
}
