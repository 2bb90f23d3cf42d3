package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/domain"
)

// ClientRepo is the write-through implementation of ClientRepository
type ClientRepo struct {
	c     *collection[domain.Client]
	clock func() time.Time
	ids   func() string
}

// List returns all clients in insertion order
func (r *ClientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	return r.c.list(), nil
}

// Get retrieves a client by ID
func (r *ClientRepo) Get(ctx context.Context, id string) (*domain.Client, error) {
	return r.c.get(id)
}

// Add stores a new client, assigning its ID and CreatedAt
func (r *ClientRepo) Add(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	rec := *client
	rec.ID = r.ids()
	rec.CreatedAt = r.clock()

	if err := r.c.add(ctx, &rec); err != nil {
		return fmt.Errorf("failed to add client: %w", err)
	}

	*client = rec
	return nil
}

// Update merges patch into the client. Invoices that already carry a snapshot of
// this client are not touched.
func (r *ClientRepo) Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	return r.c.update(ctx, id, func(c *domain.Client) error {
		patch.Apply(c)
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid client: %w", err)
		}
		return nil
	})
}

// Delete removes a client. Invoices referencing it keep their snapshot.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	return r.c.remove(ctx, id)
}

// Count returns the number of clients
func (r *ClientRepo) Count() int {
	return r.c.count()
}
