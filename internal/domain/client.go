package domain

import (
	"strings"
	"time"
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewClient creates a new client with required fields
func NewClient(name, email string) *Client {
	return &Client{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	return validateStruct("client", c)
}

// Snapshot freezes the fields an invoice keeps from this client
func (c *Client) Snapshot() ClientSnapshot {
	return ClientSnapshot{
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
	}
}

// ClientPatch holds the fields to change on a client; nil fields are left alone
type ClientPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// Apply shallow-merges the patch into c
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
}

// IsEmpty reports whether the patch changes nothing
func (p ClientPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}
