package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// SettingRepository keys documents by setting name.
type SettingRepository struct {
	col *mongo.Collection
}

func NewSettingRepository(db *mongo.Database) *SettingRepository {
	return &SettingRepository{col: db.Collection(collectionSettings)}
}

type mongoSetting struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *SettingRepository) All(ctx context.Context) ([]domain.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	var docs []mongoSetting
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	out := make([]domain.Setting, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Setting{Key: d.Key, Value: d.Value})
	}
	return out, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, s domain.Setting) (domain.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": s.Key},
		bson.M{"$set": bson.M{"value": s.Value, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.Setting{}, fmt.Errorf("upsert setting %s: %w", s.Key, err)
	}
	return s, nil
}
