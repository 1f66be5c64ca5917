package models

import "time"

// TicketStatus represents the lifecycle state of a support ticket
type TicketStatus string

const (
	// TicketStatusOpen is the state every ticket is created in
	TicketStatusOpen TicketStatus = "open"
	// TicketStatusInProgress marks a ticket an agent is working on
	TicketStatusInProgress TicketStatus = "in_progress"
	// TicketStatusClosed marks a finished ticket
	TicketStatusClosed TicketStatus = "closed"
)

// ValidStatus reports whether s is one of the enumerated ticket statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority represents the urgency of a support ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Ticket represents a tracked support request. Tickets are created by the
// ticket service and mutated only through explicit status updates.
type Ticket struct {
	ID            string         `json:"ticket_id" badgerhold:"key"`
	CustomerQuery string         `json:"customer_query"`
	AgentResponse string         `json:"agent_response,omitempty"`
	Status        TicketStatus   `json:"status"`
	Priority      TicketPriority `json:"priority"`
	Category      string         `json:"category,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TicketStats holds ticket counts grouped by status
type TicketStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
}
