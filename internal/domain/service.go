package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Service is a billable offering used as a pricing template for line items
type Service struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewService creates a new service with required fields
func NewService(name string, price decimal.Decimal) *Service {
	return &Service{
		Name:  strings.TrimSpace(name),
		Price: price,
	}
}

// Validate returns an error if the service is invalid
func (s *Service) Validate() error {
	if err := validateStruct("service", s); err != nil {
		return err
	}
	if s.Price.IsNegative() {
		return errors.New("service price cannot be negative")
	}
	return nil
}

type ServicePatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
}

// Apply shallow-merges the patch into s
func (p ServicePatch) Apply(s *Service) {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
}

// IsEmpty reports whether the patch changes nothing
func (p ServicePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil
}
