package ports

import (
	"context"
	"time"

	"github.com/dairyledger/milk-collection/internal/core/domain"
)

// CreateMilkInput carries the data for a new record. Amount is never accepted
// from callers; it is always derived from Rate and Quantity.
type CreateMilkInput struct {
	OwnerUserID    string
	MilkType       string
	Quantity       int
	Rate           float64
	EntryDate      *time.Time // optional, defaults to now
	IdempotencyKey string     // optional
}

// UpdateMilkInput replaces the mutable fields of a record.
// Quantity and Rate are required; a nil EntryDate keeps the stored value.
type UpdateMilkInput struct {
	MilkType  string
	Quantity  *int
	Rate      *float64
	EntryDate *time.Time
}

// CreateMilkResult is returned by Create.
type CreateMilkResult struct {
	Record *domain.MilkRecord
	// AlreadyExisted is true when the idempotency key matched an earlier create.
	AlreadyExisted bool
}

// MilkService defines the milk record use cases.
type MilkService interface {
	Create(ctx context.Context, input CreateMilkInput, actor domain.Actor) (*CreateMilkResult, error)
	ListForActor(ctx context.Context, actor domain.Actor) ([]*domain.MilkRecord, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]*domain.MilkRecord, error)
	GetByID(ctx context.Context, id string, actor domain.Actor) (*domain.MilkRecord, error)
	ListByType(ctx context.Context, milkType string, actor domain.Actor) ([]*domain.MilkRecord, error)
	Update(ctx context.Context, id string, input UpdateMilkInput, actor domain.Actor) (*domain.MilkRecord, error)
	DeleteByID(ctx context.Context, id string, actor domain.Actor) error
	// OwnerSummaries resolves the owners of records, keyed by user id.
	OwnerSummaries(ctx context.Context, records []*domain.MilkRecord) (map[string]domain.OwnerSummary, error)
}
