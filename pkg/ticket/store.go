package ticket

import (
	"context"
	"errors"

	"github.com/andrew/support-rag/pkg/models"
)

var (
	// ErrNotFound is returned when no ticket exists for the given id.
	ErrNotFound = errors.New("ticket not found")

	// ErrInvalidStatus is returned for a status outside the enumerated
	// values; the ticket is left unchanged.
	ErrInvalidStatus = errors.New("invalid ticket status")

	// ErrPersistence indicates the ticket store failed. A caller must not
	// assume a ticket was created when creation returns this error.
	ErrPersistence = errors.New("ticket storage failure")
)

// Store defines durable record storage for tickets, keyed by ticket id.
type Store interface {
	// Insert persists a new ticket.
	Insert(ctx context.Context, t *models.Ticket) error

	// Get returns the ticket with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Ticket, error)

	// Update overwrites an existing ticket or returns ErrNotFound.
	Update(ctx context.Context, t *models.Ticket) error

	// List returns tickets, newest first, optionally filtered by status.
	// A limit of 0 means no limit.
	List(ctx context.Context, status models.TicketStatus, limit int) ([]models.Ticket, error)

	// Close releases resources held by the store.
	Close() error
}
