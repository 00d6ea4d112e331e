// Package matcher decides which keywords occur in feed entry text.
package matcher

import (
	"log/slog"
	"regexp"
	"strings"
)

// Matcher matches entry text against a fixed keyword set, whole-word and
// case-insensitive: "cat" matches "a cat sat" but not "category".
//
// Patterns are compiled once per keyword set (one poll cycle), not per entry.
type Matcher struct {
	patterns []pattern
}

type pattern struct {
	keyword string
	re      *regexp.Regexp
}

// New compiles one word-boundary pattern per keyword. Keyword text is
// treated as literal (metacharacters escaped), so pathological keywords like
// "c++" or "(x)" cannot break pattern construction.
func New(keywords []string) *Matcher {
	m := &Matcher{patterns: make([]pattern, 0, len(keywords))}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			// QuoteMeta should make this unreachable; skip rather than fail the cycle
			slog.Warn("Skipping uncompilable keyword", "keyword", kw, "error", err)
			continue
		}
		m.patterns = append(m.patterns, pattern{keyword: kw, re: re})
	}
	return m
}

// Match returns the subset of keywords found in text, in keyword order.
// An empty keyword set matches nothing.
func (m *Matcher) Match(text string) []string {
	var matched []string
	for _, p := range m.patterns {
		if p.re.MatchString(text) {
			matched = append(matched, p.keyword)
		}
	}
	return matched
}

// Empty reports whether the matcher has no usable keywords.
func (m *Matcher) Empty() bool {
	return len(m.patterns) == 0
}
