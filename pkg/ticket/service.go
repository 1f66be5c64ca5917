package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/andrew/support-rag/pkg/models"
)

// Service owns the ticket lifecycle: creation, status transitions, and
// reads. It is the sole writer of ticket records; every other component only
// reads ticket identifiers and status.
type Service struct {
	store  Store
	logger arbor.ILogger
}

// NewService creates the ticket lifecycle manager over the given store.
func NewService(store Store, logger arbor.ILogger) *Service {
	return &Service{store: store, logger: logger}
}

// newTicketID allocates a human-shareable ticket identifier such as
// TKT-3F61A2C9. UUID-derived identifiers stay collision-resistant under
// concurrent creation without shared state.
func newTicketID() string {
	return "TKT-" + strings.ToUpper(uuid.New().String()[:8])
}

// Create persists a new ticket with status open. On storage failure the
// caller must not assume the ticket exists.
func (s *Service) Create(ctx context.Context, customerQuery, agentResponse, category string, priority models.TicketPriority) (*models.Ticket, error) {
	if priority == "" {
		priority = models.TicketPriorityMedium
	}

	now := time.Now().UTC()
	t := &models.Ticket{
		ID:            newTicketID(),
		CustomerQuery: customerQuery,
		AgentResponse: agentResponse,
		Status:        models.TicketStatusOpen,
		Priority:      priority,
		Category:      category,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticket_id", t.ID).
		Str("priority", string(t.Priority)).
		Str("category", t.Category).
		Msg("Ticket created")

	return t, nil
}

// Get returns the ticket with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.Ticket, error) {
	return s.store.Get(ctx, id)
}

// List returns tickets newest first, optionally filtered by status. A
// non-empty status outside the enumerated values is rejected.
func (s *Service) List(ctx context.Context, status models.TicketStatus, limit int) ([]models.Ticket, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.store.List(ctx, status, limit)
}

// UpdateStatus sets the ticket's status to one of the enumerated values and
// optionally appends notes. Any valid status may be set from any other; an
// invalid status leaves the ticket unchanged.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.TicketStatus, notes string) (*models.Ticket, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q (valid: open, in_progress, closed)", ErrInvalidStatus, status)
	}

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Status = status
	if notes != "" {
		t.Notes = notes
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticket_id", id).Str("status", string(status)).Msg("Ticket updated")
	return t, nil
}

// Stats returns ticket counts grouped by status.
func (s *Service) Stats(ctx context.Context) (*models.TicketStats, error) {
	tickets, err := s.store.List(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	stats := &models.TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case models.TicketStatusOpen:
			stats.Open++
		case models.TicketStatusInProgress:
			stats.InProgress++
		case models.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}
