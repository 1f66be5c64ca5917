package complaint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrew/support-rag/pkg/config"
	"github.com/andrew/support-rag/pkg/models"
)

func newDefaultDetector() *Detector {
	cfg := config.Default().Complaint
	return NewDetector(cfg.Terms, cfg.SeverityTerms)
}

func TestDetectFlagsComplaintLanguage(t *testing.T) {
	d := newDefaultDetector()

	cases := []struct {
		query string
		want  bool
	}{
		{"How do I track my order?", false},
		{"What's your return policy?", false},
		{"I'm frustrated! My package never arrived!", true},
		{"My product is broken and I am very frustrated!", true},
		{"This is unacceptable! I want to speak to a manager!", true},
	}
	for _, tc := range cases {
		got, _ := d.Detect(tc.query)
		assert.Equal(t, tc.want, got, "query: %q", tc.query)
	}
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	d := newDefaultDetector()

	flagged, matches := d.Detect("My screen arrived BROKEN")

	assert.True(t, flagged)
	assert.Contains(t, matches, "broken")
}

func TestDetectReturnsAllMatchedTerms(t *testing.T) {
	d := newDefaultDetector()

	flagged, matches := d.Detect("My product is broken and I am very frustrated!")

	assert.True(t, flagged)
	assert.Contains(t, matches, "broken")
	assert.Contains(t, matches, "frustrated")
}

func TestDetectIsDeterministic(t *testing.T) {
	d := newDefaultDetector()
	query := "I'm angry, this is the worst, fed up with the damaged item"

	firstFlag, firstMatches := d.Detect(query)
	for i := 0; i < 10; i++ {
		flag, matches := d.Detect(query)
		assert.Equal(t, firstFlag, flag)
		assert.Equal(t, firstMatches, matches)
	}
}

func TestPriorityEscalatesOnSeverityTerms(t *testing.T) {
	d := newDefaultDetector()

	_, mild := d.Detect("the item arrived damaged")
	assert.Equal(t, models.TicketPriorityMedium, d.Priority(mild))

	_, severe := d.Detect("this is unacceptable, I will take legal action")
	assert.Equal(t, models.TicketPriorityHigh, d.Priority(severe))
}
