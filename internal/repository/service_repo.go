package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/domain"
)

// ServiceRepo is the write-through implementation of ServiceRepository
type ServiceRepo struct {
	c     *collection[domain.Service]
	clock func() time.Time
	ids   func() string
}

func (r *ServiceRepo) List(ctx context.Context) ([]*domain.Service, error) {
	return r.c.list(), nil
}

func (r *ServiceRepo) Get(ctx context.Context, id string) (*domain.Service, error) {
	return r.c.get(id)
}

func (r *ServiceRepo) Add(ctx context.Context, service *domain.Service) error {
	if err := service.Validate(); err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	rec := *service
	rec.ID = r.ids()
	rec.CreatedAt = r.clock()

	if err := r.c.add(ctx, &rec); err != nil {
		return fmt.Errorf("failed to add service: %w", err)
	}

	*service = rec
	return nil
}

// Update merges patch into the service. Line items priced from it earlier keep their rate.
func (r *ServiceRepo) Update(ctx context.Context, id string, patch domain.ServicePatch) (*domain.Service, error) {
	return r.c.update(ctx, id, func(s *domain.Service) error {
		patch.Apply(s)
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid service: %w", err)
		}
		return nil
	})
}

func (r *ServiceRepo) Delete(ctx context.Context, id string) error {
	return r.c.remove(ctx, id)
}
