package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCurrency is stored when a product is created without a currency label.
const DefaultCurrency = "NEAR"

// Product is a catalog entry. Once created none of its fields change; there is
// no update or delete operation.
type Product struct {
	id          uint64
	owner       string
	name        string
	price       Amount
	currency    string
	description string
	options     []string
	createdAt   time.Time
	events      []DomainEvent
}

// NewProduct validates the inputs and creates a Product owned by owner. Fields
// are stored exactly as supplied; whitespace only matters for the emptiness
// checks and for defaulting a blank currency.
func NewProduct(id uint64, owner, name string, price Amount, currency, description string, options []string, now time.Time) (*Product, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrMissingCaller
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}

	p := &Product{
		id:          id,
		owner:       owner,
		name:        name,
		price:       price,
		currency:    currency,
		description: description,
		options:     copyOptions(options),
		createdAt:   now,
		events:      make([]DomainEvent, 0),
	}

	p.events = append(p.events, &ProductCreatedEvent{
		ProductID: p.id,
		Owner:     p.owner,
		Name:      p.name,
		Price:     p.price,
		Currency:  p.currency,
		CreatedAt: now,
	})

	return p, nil
}

// ReconstructProduct rebuilds a Product from persisted state without validation
// and without raising events.
func ReconstructProduct(id uint64, owner, name string, price Amount, currency, description string, options []string, createdAt time.Time) *Product {
	return &Product{
		id:          id,
		owner:       owner,
		name:        name,
		price:       price,
		currency:    currency,
		description: description,
		options:     copyOptions(options),
		createdAt:   createdAt,
		events:      make([]DomainEvent, 0),
	}
}

// Getters

func (p *Product) ID() uint64 {
	return p.id
}

func (p *Product) Owner() string {
	return p.owner
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Price() Amount {
	return p.price
}

func (p *Product) Currency() string {
	return p.currency
}

func (p *Product) Description() string {
	return p.description
}

// Options returns a copy of the free-form option labels.
func (p *Product) Options() []string {
	return copyOptions(p.options)
}

func (p *Product) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Product) DomainEvents() []DomainEvent {
	return p.events
}

// ClearEvents clears the accumulated domain events.
func (p *Product) ClearEvents() {
	p.events = make([]DomainEvent, 0)
}

func (p *Product) String() string {
	return fmt.Sprintf("id: %d, name: %s, price: %s, currency: %s, description: %s",
		p.id, p.name, p.price, p.currency, p.description)
}

// Validation helpers

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyProductName
	}
	return nil
}

func validatePrice(price Amount) error {
	if price.IsZero() {
		return ErrZeroPrice
	}
	if price.Overflows() {
		return fmt.Errorf("%w: price exceeds 128 bits", ErrInvalidArgument)
	}
	return nil
}

func copyOptions(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
