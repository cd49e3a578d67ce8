package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

const collectionMilkRecords = "milk_records"

// MilkRepository implements ports.MilkRepository using MongoDB.
type MilkRepository struct {
	coll *mongo.Collection
}

var _ ports.MilkRepository = (*MilkRepository)(nil)

func NewMilkRepository(db *mongo.Database) *MilkRepository {
	return &MilkRepository{coll: db.Collection(collectionMilkRecords)}
}

type mongoMilkRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerUserID primitive.ObjectID `bson:"owner_user_id"`
	MilkType    string             `bson:"milk_type"`
	Quantity    int                `bson:"quantity"`
	Rate        float64            `bson:"rate"`
	Amount      float64            `bson:"amount"`
	EntryDate   time.Time          `bson:"entry_date"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (m mongoMilkRecord) toDomain() *domain.MilkRecord {
	return &domain.MilkRecord{
		ID:          m.ID.Hex(),
		OwnerUserID: m.OwnerUserID.Hex(),
		MilkType:    m.MilkType,
		Quantity:    m.Quantity,
		Rate:        m.Rate,
		Amount:      m.Amount,
		EntryDate:   m.EntryDate.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// milkFilter translates a listing filter into a query. ok is false when the
// filter can match nothing, e.g. a malformed owner id.
func milkFilter(f ports.MilkFilter) (bson.M, bool) {
	q := bson.M{}
	if f.OwnerUserID != "" {
		oid, err := primitive.ObjectIDFromHex(f.OwnerUserID)
		if err != nil {
			return nil, false
		}
		q["owner_user_id"] = oid
	}
	if f.MilkType != "" {
		q["milk_type"] = f.MilkType
	}
	return q, true
}

func (r *MilkRepository) Create(ctx context.Context, record *domain.MilkRecord) error {
	owner, err := primitive.ObjectIDFromHex(record.OwnerUserID)
	if err != nil {
		return fmt.Errorf("owner id %q: %w", record.OwnerUserID, domain.ErrUserNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoMilkRecord{
		OwnerUserID: owner,
		MilkType:    record.MilkType,
		Quantity:    record.Quantity,
		Rate:        record.Rate,
		Amount:      record.Amount,
		EntryDate:   record.EntryDate.UTC(),
		CreatedAt:   record.CreatedAt.UTC(),
		UpdatedAt:   record.UpdatedAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert milk record: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *MilkRepository) FindByID(ctx context.Context, id string) (*domain.MilkRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMilkRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoMilkRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMilkRecordNotFound
		}
		return nil, fmt.Errorf("find milk record: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MilkRepository) List(ctx context.Context, filter ports.MilkFilter) ([]*domain.MilkRecord, error) {
	q, ok := milkFilter(filter)
	if !ok {
		return []*domain.MilkRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find milk records: %w", err)
	}

	var docs []mongoMilkRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode milk records: %w", err)
	}

	records := make([]*domain.MilkRecord, len(docs))
	for i, d := range docs {
		records[i] = d.toDomain()
	}
	return records, nil
}

func (r *MilkRepository) Update(ctx context.Context, record *domain.MilkRecord) error {
	oid, err := primitive.ObjectIDFromHex(record.ID)
	if err != nil {
		return domain.ErrMilkRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"milk_type":  record.MilkType,
		"quantity":   record.Quantity,
		"rate":       record.Rate,
		"amount":     record.Amount,
		"entry_date": record.EntryDate.UTC(),
		"updated_at": record.UpdatedAt.UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update milk record: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMilkRecordNotFound
	}
	return nil
}

func (r *MilkRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMilkRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete milk record: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMilkRecordNotFound
	}
	return nil
}

func (r *MilkRepository) CountByOwner(ctx context.Context, ownerUserID string) (int64, error) {
	q, ok := milkFilter(ports.MilkFilter{OwnerUserID: ownerUserID})
	if !ok {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count milk records: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the owner, type and insertion-order indexes.
func (r *MilkRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "milk_type", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
