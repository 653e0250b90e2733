package businessflow

import (
	"strings"
)

// defaultPaidSearchHints are the referrer substrings that identify paid
// search traffic. The gclid= fragment catches ad clicks whose referrer was
// rewritten to the landing URL itself.
var defaultPaidSearchHints = []string{
	"google.com",
	"googleadservices.com",
	"g.doubleclick.net",
	"googlesyndication.com",
	"gclid=",
}

// TrafficClassifier decides which traffic source a visitor belongs to based
// on the referrer string.
type TrafficClassifier interface {
	IsPaidSearch(referrer string) bool
}

type TrafficClassifierImpl struct {
	hints []string
}

// NewTrafficClassifier creates a classifier using the built-in paid search
// hints plus any extra hints from configuration.
func NewTrafficClassifier(extraHints []string) TrafficClassifier {
	hints := make([]string, 0, len(defaultPaidSearchHints)+len(extraHints))
	for _, h := range defaultPaidSearchHints {
		hints = append(hints, strings.ToLower(h))
	}
	for _, h := range extraHints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hints = append(hints, h)
		}
	}
	return &TrafficClassifierImpl{hints: hints}
}

// IsPaidSearch reports whether the referrer matches any paid search hint.
// Matching is case-insensitive substring search over the raw referrer, so
// both hostnames and query fragments work. An empty referrer is organic.
func (c *TrafficClassifierImpl) IsPaidSearch(referrer string) bool {
	if referrer == "" {
		return false
	}
	low := strings.ToLower(referrer)
	for _, hint := range c.hints {
		if strings.Contains(low, hint) {
			return true
		}
	}
	return false
}
