package ticket

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/andrew/support-rag/pkg/models"
)

// BadgerStore implements Store on an embedded Badger database via badgerhold.
type BadgerStore struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewBadgerStore opens (creating if necessary) the ticket database at path.
func NewBadgerStore(path string, logger arbor.ILogger) (*BadgerStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrPersistence, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // use arbor instead of the default badger logger

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open ticket database: %v", ErrPersistence, err)
	}

	logger.Debug().Str("path", path).Msg("Ticket database opened")

	return &BadgerStore{store: store, logger: logger}, nil
}

// Insert persists a new ticket record.
func (s *BadgerStore) Insert(_ context.Context, t *models.Ticket) error {
	if err := s.store.Insert(t.ID, t); err != nil {
		return fmt.Errorf("%w: failed to insert ticket %s: %v", ErrPersistence, t.ID, err)
	}
	return nil
}

// Get retrieves a ticket by id.
func (s *BadgerStore) Get(_ context.Context, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := s.store.Get(id, &t)
	if err == badgerhold.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get ticket %s: %v", ErrPersistence, id, err)
	}
	return &t, nil
}

// Update overwrites an existing ticket record.
func (s *BadgerStore) Update(_ context.Context, t *models.Ticket) error {
	err := s.store.Update(t.ID, t)
	if err == badgerhold.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: failed to update ticket %s: %v", ErrPersistence, t.ID, err)
	}
	return nil
}

// List returns tickets newest first, optionally filtered by status.
func (s *BadgerStore) List(_ context.Context, status models.TicketStatus, limit int) ([]models.Ticket, error) {
	var tickets []models.Ticket
	var query *badgerhold.Query
	if status != "" {
		query = badgerhold.Where("Status").Eq(status)
	}
	if err := s.store.Find(&tickets, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list tickets: %v", ErrPersistence, err)
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	if limit > 0 && len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.store.Close()
}
