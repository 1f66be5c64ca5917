package models

// QueryResponse is the structured answer returned for a customer query.
// TicketID is set only when a complaint ticket was actually created.
type QueryResponse struct {
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	Citations     []string `json:"citations"`
	IsComplaint   bool     `json:"is_complaint"`
	MatchedTerms  []string `json:"matched_terms,omitempty"`
	TicketCreated bool     `json:"ticket_created"`
	TicketID      string   `json:"ticket_id,omitempty"`
}
