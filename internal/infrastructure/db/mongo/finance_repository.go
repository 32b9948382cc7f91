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

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// FinanceRepository implements ports.FinanceRepository with the same
// version-conditional writes as BookingRepository.
type FinanceRepository struct {
	col *mongo.Collection
}

func NewFinanceRepository(db *mongo.Database) *FinanceRepository {
	return &FinanceRepository{col: db.Collection(collectionFinance)}
}

type mongoFinance struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Type             string             `bson:"type"`
	Amount           float64            `bson:"amount"`
	Category         string             `bson:"category"`
	Date             time.Time          `bson:"date"`
	Description      string             `bson:"description"`
	RelatedBookingID string             `bson:"related_booking_id,omitempty"`
	Version          int64              `bson:"version"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func toMongoFinance(r *domain.FinanceRecord) mongoFinance {
	return mongoFinance{
		Type:             string(r.Type),
		Amount:           r.Amount,
		Category:         r.Category,
		Date:             r.Date.UTC(),
		Description:      r.Description,
		RelatedBookingID: r.RelatedBookingID,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func (m mongoFinance) toDomain() *domain.FinanceRecord {
	return &domain.FinanceRecord{
		ID:               m.ID.Hex(),
		Type:             domain.FinanceType(m.Type),
		Amount:           m.Amount,
		Category:         m.Category,
		Date:             m.Date,
		Description:      m.Description,
		RelatedBookingID: m.RelatedBookingID,
		Version:          m.Version,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *FinanceRepository) Create(ctx context.Context, rec *domain.FinanceRecord) (*domain.FinanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoFinance(rec)
	doc.ID = primitive.NewObjectID()
	if doc.Version == 0 {
		doc.Version = 1
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert finance record: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FinanceRepository) FindByID(ctx context.Context, id string) (*domain.FinanceRecord, error) {
	oid, err := objectID(domain.EntityFinance, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoFinance
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityFinance, id)
		}
		return nil, fmt.Errorf("find finance record: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FinanceRepository) List(ctx context.Context) ([]*domain.FinanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list finance records: %w", err)
	}
	var docs []mongoFinance
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode finance records: %w", err)
	}
	out := make([]*domain.FinanceRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *FinanceRepository) Update(ctx context.Context, rec *domain.FinanceRecord, expectedVersion int64) (*domain.FinanceRecord, error) {
	oid, err := objectID(domain.EntityFinance, rec.ID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoFinance(rec)
	set := bson.M{
		"type":               doc.Type,
		"amount":             doc.Amount,
		"category":           doc.Category,
		"date":               doc.Date,
		"description":        doc.Description,
		"related_booking_id": doc.RelatedBookingID,
		"updated_at":         doc.UpdatedAt,
	}

	var out mongoFinance
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "version": expectedVersion},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, versionMiss(ctx, r.col, domain.EntityFinance, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("update finance record: %w", err)
	}
	return out.toDomain(), nil
}

func (r *FinanceRepository) Delete(ctx context.Context, id string, expectedVersion int64) (*domain.FinanceRecord, error) {
	oid, err := objectID(domain.EntityFinance, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoFinance
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid, "version": expectedVersion}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, versionMiss(ctx, r.col, domain.EntityFinance, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("delete finance record: %w", err)
	}
	return doc.toDomain(), nil
}
