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
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// BookingRepository implements ports.BookingRepository. Writes after create
// are conditional on the version field.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

type mongoBooking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID     string             `bson:"customer_id,omitempty"`
	CustomerName   string             `bson:"customer_name"`
	CustomerPhone  string             `bson:"customer_phone,omitempty"`
	EventType      string             `bson:"event_type"`
	Date           time.Time          `bson:"date"`
	PackageID      string             `bson:"package_id,omitempty"`
	DJPackage      string             `bson:"dj_package,omitempty"`
	Status         string             `bson:"status"`
	Amount         float64            `bson:"amount"`
	AdvanceAmount  float64            `bson:"advance_amount"`
	ReceivedAmount float64            `bson:"received_amount"`
	BalanceAmount  float64            `bson:"balance_amount"`
	Location       string             `bson:"location"`
	Notes          string             `bson:"notes,omitempty"`
	CrewAssigned   []string           `bson:"crew_assigned,omitempty"`
	Version        int64              `bson:"version"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func toMongoBooking(b *domain.Booking) mongoBooking {
	return mongoBooking{
		CustomerID:     b.CustomerID,
		CustomerName:   b.CustomerName,
		CustomerPhone:  b.CustomerPhone,
		EventType:      b.EventType,
		Date:           b.Date.UTC(),
		PackageID:      b.PackageID,
		DJPackage:      b.DJPackage,
		Status:         string(b.Status),
		Amount:         b.Amount,
		AdvanceAmount:  b.AdvanceAmount,
		ReceivedAmount: b.ReceivedAmount,
		BalanceAmount:  b.BalanceAmount,
		Location:       b.Location,
		Notes:          b.Notes,
		CrewAssigned:   b.CrewAssigned,
		Version:        b.Version,
		CreatedAt:      b.CreatedAt.UTC(),
		UpdatedAt:      b.UpdatedAt.UTC(),
	}
}

func (m mongoBooking) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:             m.ID.Hex(),
		CustomerID:     m.CustomerID,
		CustomerName:   m.CustomerName,
		CustomerPhone:  m.CustomerPhone,
		EventType:      m.EventType,
		Date:           m.Date,
		PackageID:      m.PackageID,
		DJPackage:      m.DJPackage,
		Status:         domain.BookingStatus(m.Status),
		Amount:         m.Amount,
		AdvanceAmount:  m.AdvanceAmount,
		ReceivedAmount: m.ReceivedAmount,
		BalanceAmount:  m.BalanceAmount,
		Location:       m.Location,
		Notes:          m.Notes,
		CrewAssigned:   m.CrewAssigned,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoBooking(b)
	doc.ID = primitive.NewObjectID()
	if doc.Version == 0 {
		doc.Version = 1
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := objectID(domain.EntityBooking, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoBooking
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.EntityBooking, id)
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns bookings by event date, newest first.
func (r *BookingRepository) List(ctx context.Context, filter ports.BookingFilter) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.CustomerID != "" {
		q["customer_id"] = filter.CustomerID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}

	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	var docs []mongoBooking
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	out := make([]*domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update replaces the booking body if its stored version still equals
// expectedVersion, and bumps the version in the same write.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, expectedVersion int64) (*domain.Booking, error) {
	oid, err := objectID(domain.EntityBooking, b.ID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoBooking(b)
	set := bson.M{
		"customer_id":     doc.CustomerID,
		"customer_name":   doc.CustomerName,
		"customer_phone":  doc.CustomerPhone,
		"event_type":      doc.EventType,
		"date":            doc.Date,
		"package_id":      doc.PackageID,
		"dj_package":      doc.DJPackage,
		"status":          doc.Status,
		"amount":          doc.Amount,
		"advance_amount":  doc.AdvanceAmount,
		"received_amount": doc.ReceivedAmount,
		"balance_amount":  doc.BalanceAmount,
		"location":        doc.Location,
		"notes":           doc.Notes,
		"crew_assigned":   doc.CrewAssigned,
		"updated_at":      doc.UpdatedAt,
	}

	var out mongoBooking
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "version": expectedVersion},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, versionMiss(ctx, r.col, domain.EntityBooking, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return out.toDomain(), nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string, expectedVersion int64) (*domain.Booking, error) {
	oid, err := objectID(domain.EntityBooking, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoBooking
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid, "version": expectedVersion}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, versionMiss(ctx, r.col, domain.EntityBooking, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return doc.toDomain(), nil
}
