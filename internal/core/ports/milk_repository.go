package ports

import (
	"context"

	"github.com/dairyledger/milk-collection/internal/core/domain"
)

// MilkFilter narrows a record listing. Empty fields do not filter.
type MilkFilter struct {
	OwnerUserID string
	MilkType    string
}

// MilkRepository defines persistence operations for milk records.
type MilkRepository interface {
	// Create stores the record and assigns its ID.
	Create(ctx context.Context, record *domain.MilkRecord) error
	// FindByID returns domain.ErrMilkRecordNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.MilkRecord, error)
	// List returns matching records in insertion order.
	List(ctx context.Context, filter MilkFilter) ([]*domain.MilkRecord, error)
	// Update replaces the mutable fields of an existing record.
	Update(ctx context.Context, record *domain.MilkRecord) error
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerUserID string) (int64, error)
}

// AuditRepository persists the milk record audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}
