package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// IdentityRepository implements ports.IdentityRepository on the users collection.
type IdentityRepository struct {
	col *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionUsers)}
}

type mongoIdentity struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	Phone              string             `bson:"phone"`
	Role               string             `bson:"role"`
	PasswordHash       string             `bson:"password_hash,omitempty"`
	MustRotatePassword bool               `bson:"must_rotate_password"`
	WhatsApp           string             `bson:"whatsapp,omitempty"`
	Pincode            string             `bson:"pincode,omitempty"`
	City               string             `bson:"city,omitempty"`
	State              string             `bson:"state,omitempty"`
	Avatar             string             `bson:"avatar,omitempty"`
	Salary             float64            `bson:"salary"`
	JoinedDate         time.Time          `bson:"joined_date"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func toMongoIdentity(i *domain.Identity) mongoIdentity {
	return mongoIdentity{
		Name:               i.Name,
		Phone:              i.Phone,
		Role:               string(i.Role),
		PasswordHash:       i.PasswordHash,
		MustRotatePassword: i.MustRotatePassword,
		WhatsApp:           i.WhatsApp,
		Pincode:            i.Pincode,
		City:               i.City,
		State:              i.State,
		Avatar:             i.Avatar,
		Salary:             i.Salary,
		JoinedDate:         i.JoinedDate.UTC(),
		CreatedAt:          i.CreatedAt.UTC(),
		UpdatedAt:          i.UpdatedAt.UTC(),
	}
}

func (m mongoIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:                 m.ID.Hex(),
		Name:               m.Name,
		Phone:              m.Phone,
		Role:               domain.Role(m.Role),
		PasswordHash:       m.PasswordHash,
		MustRotatePassword: m.MustRotatePassword,
		WhatsApp:           m.WhatsApp,
		Pincode:            m.Pincode,
		City:               m.City,
		State:              m.State,
		Avatar:             m.Avatar,
		Salary:             m.Salary,
		JoinedDate:         m.JoinedDate,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoIdentity(identity)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := objectID(domain.EntityUser, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

// FindByPhoneSuffix matches stored numbers that end with digits, so records
// saved with a country code still resolve.
func (r *IdentityRepository) FindByPhoneSuffix(ctx context.Context, digits string) (*domain.Identity, error) {
	filter := bson.M{"phone": primitive.Regex{Pattern: regexp.QuoteMeta(digits) + "$"}}
	return r.findOne(ctx, filter, digits)
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M, ref string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoIdentity
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityUser, ref)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) List(ctx context.Context) ([]*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []mongoIdentity
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*domain.Identity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *IdentityRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

// UpdateProfile never touches the credential fields.
func (r *IdentityRepository) UpdateProfile(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	oid, err := objectID(domain.EntityUser, identity.ID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":       identity.Name,
		"phone":      identity.Phone,
		"role":       string(identity.Role),
		"whatsapp":   identity.WhatsApp,
		"pincode":    identity.Pincode,
		"city":       identity.City,
		"state":      identity.State,
		"avatar":     identity.Avatar,
		"salary":     identity.Salary,
		"updated_at": time.Now().UTC(),
	}
	var doc mongoIdentity
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.NotFound(domain.EntityUser, identity.ID)
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrAlreadyExists
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, id, passwordHash string, mustRotate bool) error {
	oid, err := objectID(domain.EntityUser, id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password_hash":        passwordHash,
		"must_rotate_password": mustRotate,
		"updated_at":           time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound(domain.EntityUser, id)
	}
	return nil
}

func (r *IdentityRepository) Delete(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := objectID(domain.EntityUser, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoIdentity
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityUser, id)
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return doc.toDomain(), nil
}
