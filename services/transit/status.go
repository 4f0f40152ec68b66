package transit

import (
	"strings"
)

// DefaultCancelKeywords are matched against upstream departure and arrival statuses.
// Upstream vocabulary is inconsistent ("cancelled", "CANCELLED", "Annulé", "supprimé"...),
// so matching is done on lower-cased substrings.
var DefaultCancelKeywords = []string{"cancel", "annul", "supprim", "withdrawn"}

// StatusClassifier maps free-form upstream status strings onto trip states.
type StatusClassifier struct {
	cancelKeywords []string
}

// NewStatusClassifier creates a classifier for the supplied cancellation keywords.
// An empty set falls back to DefaultCancelKeywords.
func NewStatusClassifier(cancelKeywords []string) *StatusClassifier {
	if len(cancelKeywords) == 0 {
		cancelKeywords = DefaultCancelKeywords
	}

	c := &StatusClassifier{}
	for _, kw := range cancelKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			c.cancelKeywords = append(c.cancelKeywords, kw)
		}
	}
	return c
}

// IsCancelled reports whether any of the statuses contains a cancellation keyword.
func (c *StatusClassifier) IsCancelled(statuses ...string) bool {
	for _, status := range statuses {
		status = strings.ToLower(status)
		if status == "" {
			continue
		}
		for _, kw := range c.cancelKeywords {
			if strings.Contains(status, kw) {
				return true
			}
		}
	}
	return false
}
