package complaint

import (
	"strings"

	"github.com/andrew/support-rag/pkg/models"
)

// Detector classifies a query as complaint or non-complaint with a fixed,
// case-insensitive lexical rule. It is deterministic and side-effect free;
// detection does not depend on retrieval outcome.
type Detector struct {
	terms    []string
	severity map[string]bool
}

// NewDetector builds a detector from the complaint vocabulary and the subset
// of terms that escalate ticket priority.
func NewDetector(terms, severityTerms []string) *Detector {
	d := &Detector{
		terms:    make([]string, len(terms)),
		severity: make(map[string]bool, len(severityTerms)),
	}
	for i, t := range terms {
		d.terms[i] = strings.ToLower(t)
	}
	for _, t := range severityTerms {
		d.severity[strings.ToLower(t)] = true
	}
	return d
}

// Detect reports whether text contains complaint language and returns the
// matched terms for observability.
func (d *Detector) Detect(text string) (bool, []string) {
	lower := strings.ToLower(text)

	var matches []string
	for _, term := range d.terms {
		if strings.Contains(lower, term) {
			matches = append(matches, term)
		}
	}
	return len(matches) > 0, matches
}

// Priority maps matched complaint terms to a ticket priority: any severity
// term present means high, anything else medium.
func (d *Detector) Priority(matches []string) models.TicketPriority {
	for _, m := range matches {
		if d.severity[m] {
			return models.TicketPriorityHigh
		}
	}
	return models.TicketPriorityMedium
}
