package service

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	controlChars   = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Sanitizer cleans free-text input before persistence: markup stripped,
// control and null characters removed, whitespace runs collapsed. Stored
// text stays plain; HTML escaping happens at render time so the original
// text round-trips.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean applies the full write-time pipeline to s.
func (sz *Sanitizer) Clean(s string) string {
	// StrictPolicy strips every tag but entity-escapes the text that
	// remains; unescape so the stored value is the literal text.
	s = html.UnescapeString(sz.policy.Sanitize(s))
	s = controlChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
