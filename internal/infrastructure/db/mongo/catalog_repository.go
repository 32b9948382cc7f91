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

// InventoryRepository implements ports.InventoryRepository.
type InventoryRepository struct {
	col *mongo.Collection
}

func NewInventoryRepository(db *mongo.Database) *InventoryRepository {
	return &InventoryRepository{col: db.Collection(collectionInventory)}
}

type mongoInventoryItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Category      string             `bson:"category"`
	Quantity      int                `bson:"quantity"`
	TotalQuantity int                `bson:"total_quantity"`
	Status        string             `bson:"status"`
	LastChecked   string             `bson:"last_checked,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (m mongoInventoryItem) toDomain() *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:            m.ID.Hex(),
		Name:          m.Name,
		Category:      m.Category,
		Quantity:      m.Quantity,
		TotalQuantity: m.TotalQuantity,
		Status:        domain.InventoryStatus(m.Status),
		LastChecked:   m.LastChecked,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoInventoryItem{
		ID:            primitive.NewObjectID(),
		Name:          item.Name,
		Category:      item.Category,
		Quantity:      item.Quantity,
		TotalQuantity: item.TotalQuantity,
		Status:        string(item.Status),
		LastChecked:   item.LastChecked,
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	oid, err := objectID(domain.EntityInventory, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoInventoryItem
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityInventory, id)
		}
		return nil, fmt.Errorf("find inventory item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *InventoryRepository) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	var docs []mongoInventoryItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	out := make([]*domain.InventoryItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	oid, err := objectID(domain.EntityInventory, item.ID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoInventoryItem
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":           item.Name,
		"category":       item.Category,
		"quantity":       item.Quantity,
		"total_quantity": item.TotalQuantity,
		"status":         string(item.Status),
		"last_checked":   item.LastChecked,
		"updated_at":     item.UpdatedAt.UTC(),
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFound(domain.EntityInventory, item.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) (*domain.InventoryItem, error) {
	oid, err := objectID(domain.EntityInventory, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoInventoryItem
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityInventory, id)
		}
		return nil, fmt.Errorf("delete inventory item: %w", err)
	}
	return doc.toDomain(), nil
}

// PackageRepository implements ports.PackageRepository.
type PackageRepository struct {
	col *mongo.Collection
}

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{col: db.Collection(collectionPackages)}
}

type mongoPackage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Features  []string           `bson:"features"`
	IsPopular bool               `bson:"is_popular"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (m mongoPackage) toDomain() *domain.EventPackage {
	features := m.Features
	if features == nil {
		features = []string{}
	}
	return &domain.EventPackage{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Price:     m.Price,
		Features:  features,
		IsPopular: m.IsPopular,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *PackageRepository) Create(ctx context.Context, pkg *domain.EventPackage) (*domain.EventPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPackage{
		ID:        primitive.NewObjectID(),
		Name:      pkg.Name,
		Price:     pkg.Price,
		Features:  pkg.Features,
		IsPopular: pkg.IsPopular,
		CreatedAt: pkg.CreatedAt.UTC(),
		UpdatedAt: pkg.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert package: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PackageRepository) FindByID(ctx context.Context, id string) (*domain.EventPackage, error) {
	oid, err := objectID(domain.EntityPackage, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPackage
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityPackage, id)
		}
		return nil, fmt.Errorf("find package: %w", err)
	}
	return doc.toDomain(), nil
}

// List orders packages by price, cheapest first, as the public site shows them.
func (r *PackageRepository) List(ctx context.Context) ([]*domain.EventPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	var docs []mongoPackage
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode packages: %w", err)
	}
	out := make([]*domain.EventPackage, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PackageRepository) Update(ctx context.Context, pkg *domain.EventPackage) (*domain.EventPackage, error) {
	oid, err := objectID(domain.EntityPackage, pkg.ID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPackage
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":       pkg.Name,
		"price":      pkg.Price,
		"features":   pkg.Features,
		"is_popular": pkg.IsPopular,
		"updated_at": pkg.UpdatedAt.UTC(),
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFound(domain.EntityPackage, pkg.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PackageRepository) Delete(ctx context.Context, id string) (*domain.EventPackage, error) {
	oid, err := objectID(domain.EntityPackage, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPackage
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityPackage, id)
		}
		return nil, fmt.Errorf("delete package: %w", err)
	}
	return doc.toDomain(), nil
}
