package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

type roomDocument struct {
	ID            string    `bson:"_id"`
	HotelID       string    `bson:"hotel_id"`
	RoomType      string    `bson:"room_type"`
	RoomNumber    string    `bson:"room_number"`
	PricePerNight float64   `bson:"price_per_night"`
	Amenities     []string  `bson:"amenities"`
	MaxGuests     int       `bson:"max_guests"`
	IsAvailable   bool      `bson:"is_available"`
	Description   string    `bson:"description"`
	BedType       string    `bson:"bed_type"`
	Size          *int      `bson:"size,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d roomDocument) toRoom() *Room {
	return &Room{
		ID:            d.ID,
		HotelID:       d.HotelID,
		RoomType:      d.RoomType,
		RoomNumber:    d.RoomNumber,
		PricePerNight: d.PricePerNight,
		Amenities:     d.Amenities,
		MaxGuests:     d.MaxGuests,
		IsAvailable:   d.IsAvailable,
		Description:   d.Description,
		BedType:       d.BedType,
		Size:          d.Size,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type hotelLabel struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Location string `bson:"location"`
}

type mongoRepository struct {
	rooms  *mongo.Collection
	hotels *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{
		rooms:  database.Collection(db.RoomsCollection),
		hotels: database.Collection(db.HotelsCollection),
	}
}

// withHotelLabels fills the hotel display fields with one extra query.
func (r *mongoRepository) withHotelLabels(ctx context.Context, docs []roomDocument) ([]*Room, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.HotelID)
	}

	labels := map[string]hotelLabel{}
	if len(ids) > 0 {
		cursor, err := r.hotels.Find(ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(bson.M{"name": 1, "location": 1}),
		)
		if err != nil {
			return nil, fmt.Errorf("find room hotels failed: %w", err)
		}
		var found []hotelLabel
		if err := cursor.All(ctx, &found); err != nil {
			return nil, fmt.Errorf("decode room hotels failed: %w", err)
		}
		for _, h := range found {
			labels[h.ID] = h
		}
	}

	rooms := make([]*Room, 0, len(docs))
	for _, d := range docs {
		rm := d.toRoom()
		rm.HotelName = labels[d.HotelID].Name
		rm.HotelLocation = labels[d.HotelID].Location
		rooms = append(rooms, rm)
	}
	return rooms, nil
}

func (r *mongoRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*Room, error) {
	cursor, err := r.rooms.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find rooms failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []roomDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rooms failed: %w", err)
	}
	return r.withHotelLabels(ctx, docs)
}

func (r *mongoRepository) Create(ctx context.Context, rm *Room) error {
	now := time.Now().UTC()
	rm.ID = uuid.NewString()
	rm.IsAvailable = true
	rm.CreatedAt = now
	rm.UpdatedAt = now

	amenities := rm.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	doc := roomDocument{
		ID:            rm.ID,
		HotelID:       rm.HotelID,
		RoomType:      rm.RoomType,
		RoomNumber:    rm.RoomNumber,
		PricePerNight: rm.PricePerNight,
		Amenities:     amenities,
		MaxGuests:     rm.MaxGuests,
		IsAvailable:   rm.IsAvailable,
		Description:   rm.Description,
		BedType:       rm.BedType,
		Size:          rm.Size,
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
	}

	if _, err := r.rooms.InsertOne(ctx, doc); err != nil {
		if db.IsDuplicateKey(err) {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("insert room failed: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	var doc roomDocument
	if err := r.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find room failed: %w", err)
	}

	rooms, err := r.withHotelLabels(ctx, []roomDocument{doc})
	if err != nil {
		return nil, err
	}
	return rooms[0], nil
}

func (r *mongoRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	query := bson.M{"is_available": true}
	if filter.HotelID != "" {
		query["hotel_id"] = filter.HotelID
	}
	if filter.RoomType != "" {
		query["room_type"] = filter.RoomType
	}
	if filter.PriceMin != nil || filter.PriceMax != nil {
		price := bson.M{}
		if filter.PriceMin != nil {
			price["$gte"] = *filter.PriceMin
		}
		if filter.PriceMax != nil {
			price["$lte"] = *filter.PriceMax
		}
		query["price_per_night"] = price
	}
	if len(filter.Amenities) > 0 {
		query["amenities"] = bson.M{"$in": filter.Amenities}
	}
	if filter.MinGuests > 0 {
		query["max_guests"] = bson.M{"$gte": filter.MinGuests}
	}

	total, err := r.rooms.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count rooms failed: %w", err)
	}

	p := filter.Params.Normalize()
	rooms, err := r.find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "price_per_night", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit)))
	if err != nil {
		return nil, 0, err
	}
	return rooms, int(total), nil
}

func (r *mongoRepository) ListAvailableByHotel(ctx context.Context, hotelID string) ([]*Room, error) {
	return r.find(ctx,
		bson.M{"hotel_id": hotelID, "is_available": true},
		options.Find().SetSort(bson.D{{Key: "room_number", Value: 1}}),
	)
}

func (r *mongoRepository) Update(ctx context.Context, rm *Room) error {
	rm.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"room_type":       rm.RoomType,
		"room_number":     rm.RoomNumber,
		"price_per_night": rm.PricePerNight,
		"amenities":       rm.Amenities,
		"max_guests":      rm.MaxGuests,
		"description":     rm.Description,
		"bed_type":        rm.BedType,
		"size":            rm.Size,
		"is_available":    rm.IsAvailable,
		"updated_at":      rm.UpdatedAt,
	}

	res, err := r.rooms.UpdateByID(ctx, rm.ID, bson.M{"$set": set})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) ExistsByNumber(ctx context.Context, hotelID, roomNumber, excludeID string) (bool, error) {
	query := bson.M{"hotel_id": hotelID, "room_number": roomNumber}
	if excludeID != "" {
		query["_id"] = bson.M{"$ne": excludeID}
	}

	n, err := r.rooms.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check room exists failed: %w", err)
	}
	return n > 0, nil
}

func (r *mongoRepository) MarkUnavailable(ctx context.Context, id string) error {
	res, err := r.rooms.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_available": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("mark room unavailable failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
