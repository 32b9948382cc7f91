package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// AuditRepository appends to the audit_logs collection. It exposes no way to
// change or remove an entry.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

type mongoAuditRecord struct {
	ID        string    `bson:"_id"`
	ActorID   string    `bson:"actor_id"`
	Action    string    `bson:"action"`
	Entity    string    `bson:"entity"`
	EntityID  string    `bson:"entity_id"`
	Details   string    `bson:"details"`
	Timestamp time.Time `bson:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, record *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	doc := mongoAuditRecord{
		ID:        record.ID,
		ActorID:   record.ActorID,
		Action:    string(record.Action),
		Entity:    string(record.Entity),
		EntityID:  record.EntityID,
		Details:   record.Details,
		Timestamp: record.Timestamp.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
