package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

// IdempotencyStore abstracts the replay store for record creation (Redis).
type IdempotencyStore interface {
	// Claim reserves key before the record is inserted. When the key is
	// already held it returns the stored record id, or "" while the first
	// create is still running.
	Claim(ctx context.Context, key string) (recordID string, claimed bool, err error)
	// Remember replaces the reservation with the created record id.
	Remember(ctx context.Context, key, recordID string) error
	// Release drops a reservation whose create failed.
	Release(ctx context.Context, key string) error
}

// MilkService implements ports.MilkService.
type MilkService struct {
	repo   ports.MilkRepository
	users  ports.UserRepository
	audit  ports.AuditRepository // optional
	idem   IdempotencyStore      // optional
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.MilkService = (*MilkService)(nil)

func NewMilkService(
	repo ports.MilkRepository,
	users ports.UserRepository,
	audit ports.AuditRepository,
	idem IdempotencyStore,
	logger zerolog.Logger,
) *MilkService {
	return &MilkService{
		repo:   repo,
		users:  users,
		audit:  audit,
		idem:   idem,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new record for input.OwnerUserID. The caller must already be
// authorized as an administrator. Amount is always rate × quantity.
//
// A non-empty IdempotencyKey is claimed before anything is written, so
// concurrent creates with the same key produce a single record.
func (s *MilkService) Create(ctx context.Context, input ports.CreateMilkInput, actor domain.Actor) (*ports.CreateMilkResult, error) {
	key := input.IdempotencyKey
	existing, claimed, err := s.claim(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ports.CreateMilkResult{Record: existing, AlreadyExisted: true}, nil
	}

	record, err := s.create(ctx, input, actor)
	if claimed {
		if err != nil {
			s.release(ctx, key)
		} else if rerr := s.idem.Remember(ctx, key, record.ID); rerr != nil {
			s.logger.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to store idempotency key")
		}
	}
	if err != nil {
		return nil, err
	}
	return &ports.CreateMilkResult{Record: record}, nil
}

func (s *MilkService) create(ctx context.Context, input ports.CreateMilkInput, actor domain.Actor) (*domain.MilkRecord, error) {
	milkType := strings.TrimSpace(input.MilkType)
	if err := validateMilkFields(milkType, input.Quantity, input.Rate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.OwnerUserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, input.OwnerUserID); err != nil {
		return nil, fmt.Errorf("create milk record: %w", err)
	}

	now := s.now()
	entryDate := now
	if input.EntryDate != nil && !input.EntryDate.IsZero() {
		entryDate = input.EntryDate.UTC()
	}

	record := &domain.MilkRecord{
		OwnerUserID: input.OwnerUserID,
		MilkType:    milkType,
		Quantity:    input.Quantity,
		Rate:        input.Rate,
		EntryDate:   entryDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	record.Recalculate()

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("owner_id", input.OwnerUserID).Msg("failed to create milk record")
		return nil, fmt.Errorf("create milk record: %w", err)
	}
	s.recordAudit(ctx, domain.AuditCreated, record, actor)

	s.logger.Info().
		Str("record_id", record.ID).
		Str("owner_id", record.OwnerUserID).
		Str("milk_type", record.MilkType).
		Float64("amount", record.Amount).
		Msg("milk record created")

	return record, nil
}

// claim reserves key for this create. It returns the earlier record when key
// was already used, and domain.ErrRequestInProgress while another create holds
// it. Store failures are logged and the create goes ahead unguarded.
func (s *MilkService) claim(ctx context.Context, key string) (*domain.MilkRecord, bool, error) {
	if key == "" || s.idem == nil {
		return nil, false, nil
	}
	id, claimed, err := s.idem.Claim(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, creating anyway")
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}
	if id == "" {
		s.logger.Info().Str("idempotency_key", key).Msg("idempotency key still in progress")
		return nil, false, domain.ErrRequestInProgress
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// The key outlived its record; take it over for this create.
		s.logger.Warn().Err(err).Str("idempotency_key", key).Str("record_id", id).Msg("idempotency key points at missing record")
		return nil, true, nil
	}
	s.logger.Info().Str("idempotency_key", key).Str("record_id", id).Msg("idempotent replay")
	return existing, false, nil
}

func (s *MilkService) release(ctx context.Context, key string) {
	if err := s.idem.Release(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// ListForActor returns every record for administrators and only the actor's
// own records for everyone else.
func (s *MilkService) ListForActor(ctx context.Context, actor domain.Actor) ([]*domain.MilkRecord, error) {
	filter := ports.MilkFilter{}
	if !domain.IsAdmin(actor) {
		if actor.ID == "" {
			return []*domain.MilkRecord{}, nil
		}
		filter.OwnerUserID = actor.ID
	}
	return s.list(ctx, filter)
}

// ListByOwner returns all records of one owner without further filtering.
func (s *MilkService) ListByOwner(ctx context.Context, ownerUserID string) ([]*domain.MilkRecord, error) {
	if ownerUserID == "" {
		return []*domain.MilkRecord{}, nil
	}
	return s.list(ctx, ports.MilkFilter{OwnerUserID: ownerUserID})
}

// GetByID fetches a record the actor is allowed to see. Records owned by
// someone else are reported as not found.
func (s *MilkService) GetByID(ctx context.Context, id string, actor domain.Actor) (*domain.MilkRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(actor, record) {
		s.logger.Debug().Str("record_id", id).Str("actor_id", actor.ID).Msg("milk record hidden from actor")
		return nil, domain.ErrMilkRecordNotFound
	}
	return record, nil
}

// ListByType returns records of milkType; non-admin results are reduced to
// the actor's own records after the type match.
func (s *MilkService) ListByType(ctx context.Context, milkType string, actor domain.Actor) ([]*domain.MilkRecord, error) {
	records, err := s.list(ctx, ports.MilkFilter{MilkType: milkType})
	if err != nil {
		return nil, err
	}
	if domain.IsAdmin(actor) {
		return records, nil
	}
	visible := make([]*domain.MilkRecord, 0, len(records))
	for _, r := range records {
		if domain.CanView(actor, r) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// Update replaces type, quantity, rate and entry date, and recomputes the
// amount. Owner, id and creation time are never changed.
func (s *MilkService) Update(ctx context.Context, id string, input ports.UpdateMilkInput, actor domain.Actor) (*domain.MilkRecord, error) {
	record, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if input.Quantity == nil {
		return nil, fmt.Errorf("%w: quantity is required", domain.ErrValidation)
	}
	if input.Rate == nil {
		return nil, fmt.Errorf("%w: rate is required", domain.ErrValidation)
	}
	milkType := strings.TrimSpace(input.MilkType)
	if err := validateMilkFields(milkType, *input.Quantity, *input.Rate); err != nil {
		return nil, err
	}

	record.MilkType = milkType
	record.Quantity = *input.Quantity
	record.Rate = *input.Rate
	if input.EntryDate != nil && !input.EntryDate.IsZero() {
		record.EntryDate = input.EntryDate.UTC()
	}
	record.Recalculate()
	record.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, domain.ErrMilkRecordNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("record_id", id).Msg("failed to update milk record")
		return nil, fmt.Errorf("update milk record: %w", err)
	}
	s.recordAudit(ctx, domain.AuditUpdated, record, actor)

	s.logger.Info().Str("record_id", id).Float64("amount", record.Amount).Msg("milk record updated")
	return record, nil
}

// DeleteByID removes a record after the same visibility check as GetByID.
func (s *MilkService) DeleteByID(ctx context.Context, id string, actor domain.Actor) error {
	record, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrMilkRecordNotFound) {
			return err
		}
		return fmt.Errorf("delete milk record: %w", err)
	}
	s.recordAudit(ctx, domain.AuditDeleted, record, actor)

	s.logger.Info().Str("record_id", id).Str("actor_id", actor.ID).Msg("milk record deleted")
	return nil
}

func (s *MilkService) OwnerSummaries(ctx context.Context, records []*domain.MilkRecord) (map[string]domain.OwnerSummary, error) {
	out := make(map[string]domain.OwnerSummary)
	if len(records) == 0 {
		return out, nil
	}

	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.OwnerUserID]; ok {
			continue
		}
		seen[r.OwnerUserID] = struct{}{}
		ids = append(ids, r.OwnerUserID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	for _, u := range users {
		out[u.ID] = domain.OwnerSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return out, nil
}

func (s *MilkService) list(ctx context.Context, filter ports.MilkFilter) ([]*domain.MilkRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list milk records: %w", err)
	}
	if records == nil {
		records = []*domain.MilkRecord{}
	}
	return records, nil
}

// recordAudit appends to the audit trail. Failures never fail the operation.
func (s *MilkService) recordAudit(ctx context.Context, action domain.AuditAction, r *domain.MilkRecord, actor domain.Actor) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		Action:      action,
		RecordID:    r.ID,
		OwnerUserID: r.OwnerUserID,
		ActorID:     actor.ID,
		Amount:      r.Amount,
		At:          s.now(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("record_id", r.ID).Str("action", string(action)).Msg("failed to insert audit entry")
	}
}

func validateMilkFields(milkType string, quantity int, rate float64) error {
	switch {
	case milkType == "":
		return fmt.Errorf("%w: milk type is required", domain.ErrValidation)
	case quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	case rate <= 0:
		return fmt.Errorf("%w: rate must be positive", domain.ErrValidation)
	}
	return nil
}
