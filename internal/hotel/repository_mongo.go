package hotel

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

type hotelDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Location    string    `bson:"location"`
	StarRating  int       `bson:"star_rating"`
	Amenities   []string  `bson:"amenities"`
	Address     string    `bson:"address"`
	Phone       string    `bson:"phone"`
	Email       string    `bson:"email"`
	CreatedBy   string    `bson:"created_by,omitempty"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newHotelDocument(h *Hotel) hotelDocument {
	amenities := h.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return hotelDocument{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Location:    h.Location,
		StarRating:  h.StarRating,
		Amenities:   amenities,
		Address:     h.Address,
		Phone:       h.Phone,
		Email:       h.Email,
		CreatedBy:   h.CreatedBy,
		IsActive:    h.IsActive,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func (d hotelDocument) toHotel() *Hotel {
	return &Hotel{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
		StarRating:  d.StarRating,
		Amenities:   d.Amenities,
		Address:     d.Address,
		Phone:       d.Phone,
		Email:       d.Email,
		CreatedBy:   d.CreatedBy,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mongoRepository struct {
	hotels *mongo.Collection
	rooms  *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{
		hotels: database.Collection(db.HotelsCollection),
		rooms:  database.Collection(db.RoomsCollection),
	}
}

func (r *mongoRepository) Create(ctx context.Context, h *Hotel) error {
	now := time.Now().UTC()
	h.ID = uuid.NewString()
	h.IsActive = true
	h.CreatedAt = now
	h.UpdatedAt = now

	if _, err := r.hotels.InsertOne(ctx, newHotelDocument(h)); err != nil {
		return fmt.Errorf("insert hotel failed: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Hotel, error) {
	var doc hotelDocument
	if err := r.hotels.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find hotel failed: %w", err)
	}
	return doc.toHotel(), nil
}

func containsInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (r *mongoRepository) List(ctx context.Context, filter Filter) ([]*Hotel, int, error) {
	query := bson.M{"is_active": true}
	if filter.Location != "" {
		query["location"] = containsInsensitive(filter.Location)
	}
	if filter.Name != "" {
		query["name"] = containsInsensitive(filter.Name)
	}
	if filter.Star > 0 {
		query["star_rating"] = filter.Star
	}

	total, err := r.hotels.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count hotels failed: %w", err)
	}

	p := filter.Params.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))

	cursor, err := r.hotels.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find hotels failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []hotelDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode hotels failed: %w", err)
	}

	hotels := make([]*Hotel, 0, len(docs))
	for _, d := range docs {
		hotels = append(hotels, d.toHotel())
	}
	return hotels, int(total), nil
}

func (r *mongoRepository) Update(ctx context.Context, h *Hotel) error {
	h.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":        h.Name,
		"description": h.Description,
		"location":    h.Location,
		"star_rating": h.StarRating,
		"amenities":   h.Amenities,
		"address":     h.Address,
		"phone":       h.Phone,
		"email":       h.Email,
		"updated_at":  h.UpdatedAt,
	}

	res, err := r.hotels.UpdateByID(ctx, h.ID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update hotel failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) ExistsByNameAndLocation(ctx context.Context, name, location, excludeID string) (bool, error) {
	query := bson.M{"name": name, "location": location}
	if excludeID != "" {
		query["_id"] = bson.M{"$ne": excludeID}
	}

	n, err := r.hotels.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check hotel exists failed: %w", err)
	}
	return n > 0, nil
}

func (r *mongoRepository) Deactivate(ctx context.Context, id string) error {
	return db.WithMongoTx(ctx, r.hotels.Database().Client(), func(ctx context.Context) error {
		now := time.Now().UTC()

		res, err := r.hotels.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_active": false, "updated_at": now}})
		if err != nil {
			return fmt.Errorf("deactivate hotel failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}

		if _, err := r.rooms.UpdateMany(ctx,
			bson.M{"hotel_id": id},
			bson.M{"$set": bson.M{"is_available": false, "updated_at": now}},
		); err != nil {
			return fmt.Errorf("mark hotel rooms unavailable failed: %w", err)
		}
		return nil
	})
}
