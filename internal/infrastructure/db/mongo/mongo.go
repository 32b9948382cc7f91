package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	collectionUsers     = "users"
	collectionBookings  = "bookings"
	collectionFinance   = "finance"
	collectionInventory = "inventory"
	collectionPackages  = "packages"
	collectionSettings  = "settings"
	collectionAudit     = "audit_logs"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes every collection relies on. It is safe
// to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		collectionBookings: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		collectionFinance: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "related_booking_id", Value: 1}}},
		},
		collectionAudit: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}}},
		},
	}
	for name, models := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot match any document, so they
// are reported as not found rather than as a validation problem.
func objectID(entity domain.EntityKind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.NotFound(entity, id)
	}
	return oid, nil
}

// versionMiss explains a conditional write that matched no document: either
// the document is gone or somebody else bumped its version first.
func versionMiss(ctx context.Context, col *mongo.Collection, entity domain.EntityKind, oid primitive.ObjectID) error {
	n, err := col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("count %s: %w", strings.ToLower(string(entity)), err)
	}
	if n == 0 {
		return domain.NotFound(entity, oid.Hex())
	}
	return fmt.Errorf("%s %s: %w", strings.ToLower(string(entity)), oid.Hex(), domain.ErrConflict)
}
