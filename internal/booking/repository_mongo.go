package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

type bookingDocument struct {
	ID               string    `bson:"_id"`
	UserID           string    `bson:"user_id"`
	RoomID           string    `bson:"room_id"`
	HotelID          string    `bson:"hotel_id"`
	StartDate        time.Time `bson:"start_date"`
	EndDate          time.Time `bson:"end_date"`
	Guests           int       `bson:"guests"`
	SpecialRequests  string    `bson:"special_requests"`
	Status           string    `bson:"status"`
	TotalPrice       float64   `bson:"total_price"`
	BookingReference string    `bson:"booking_reference"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func (d bookingDocument) toBooking() *Booking {
	return &Booking{
		ID:               d.ID,
		UserID:           d.UserID,
		RoomID:           d.RoomID,
		HotelID:          d.HotelID,
		StartDate:        d.StartDate,
		EndDate:          d.EndDate,
		Guests:           d.Guests,
		SpecialRequests:  d.SpecialRequests,
		Status:           Status(d.Status),
		TotalPrice:       d.TotalPrice,
		BookingReference: d.BookingReference,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// joinedDocument is a booking after the $lookup stages of the read pipeline.
type joinedDocument struct {
	bookingDocument `bson:",inline"`
	User            []struct {
		FullName string `bson:"full_name"`
		Email    string `bson:"email"`
	} `bson:"user"`
	Room []struct {
		RoomNumber string `bson:"room_number"`
		RoomType   string `bson:"room_type"`
	} `bson:"room"`
	Hotel []struct {
		Name     string `bson:"name"`
		Location string `bson:"location"`
	} `bson:"hotel"`
}

func (d joinedDocument) toBooking() *Booking {
	b := d.bookingDocument.toBooking()
	if len(d.User) > 0 {
		b.UserName = d.User[0].FullName
		b.UserEmail = d.User[0].Email
	}
	if len(d.Room) > 0 {
		b.RoomNumber = d.Room[0].RoomNumber
		b.RoomType = d.Room[0].RoomType
	}
	if len(d.Hotel) > 0 {
		b.HotelName = d.Hotel[0].Name
		b.HotelLocation = d.Hotel[0].Location
	}
	return b
}

var displayLookups = mongo.Pipeline{
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: db.UsersCollection},
		{Key: "localField", Value: "user_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "user"},
	}}},
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: db.RoomsCollection},
		{Key: "localField", Value: "room_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "room"},
	}}},
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: db.HotelsCollection},
		{Key: "localField", Value: "hotel_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "hotel"},
	}}},
}

type mongoRepository struct {
	client   *mongo.Client
	bookings *mongo.Collection
	rooms    *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{
		client:   database.Client(),
		bookings: database.Collection(db.BookingsCollection),
		rooms:    database.Collection(db.RoomsCollection),
	}
}

// WithRoomLock bumps lock_seq on the room document inside a transaction.
// A second transaction touching the same room hits a write conflict, and the
// driver retries it from the top, so fn always sees committed bookings.
func (r *mongoRepository) WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	return db.WithMongoTx(ctx, r.client, func(ctx context.Context) error {
		res, err := r.rooms.UpdateByID(ctx, roomID, bson.M{"$inc": bson.M{"lock_seq": 1}})
		if err != nil {
			return fmt.Errorf("lock room failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrRoomNotFound
		}
		return fn(ctx)
	})
}

func (r *mongoRepository) FindConfirmed(ctx context.Context, roomID string, since time.Time) ([]Interval, error) {
	cursor, err := r.bookings.Find(ctx,
		bson.M{"room_id": roomID, "status": string(StatusConfirmed), "end_date": bson.M{"$gt": since}},
		options.Find().
			SetProjection(bson.M{"start_date": 1, "end_date": 1}).
			SetSort(bson.D{{Key: "start_date", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find confirmed bookings failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		StartDate time.Time `bson:"start_date"`
		EndDate   time.Time `bson:"end_date"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode confirmed bookings failed: %w", err)
	}

	out := make([]Interval, 0, len(docs))
	for _, d := range docs {
		out = append(out, Interval{Start: d.StartDate, End: d.EndDate})
	}
	return out, nil
}

func (r *mongoRepository) Create(ctx context.Context, b *Booking) error {
	now := time.Now().UTC()
	doc := bookingDocument{
		ID:               uuid.NewString(),
		UserID:           b.UserID,
		RoomID:           b.RoomID,
		HotelID:          b.HotelID,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		Guests:           b.Guests,
		SpecialRequests:  b.SpecialRequests,
		Status:           string(b.Status),
		TotalPrice:       b.TotalPrice,
		BookingReference: b.BookingReference,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := r.bookings.InsertOne(ctx, doc); err != nil {
		if db.IsDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}

	b.ID = doc.ID
	b.CreatedAt = doc.CreatedAt
	b.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *mongoRepository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	res, err := r.bookings.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.bookings.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check booking exists failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func (r *mongoRepository) aggregate(ctx context.Context, match bson.M, skip, limit int64) ([]*Booking, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: skip}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, displayLookups...)

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate bookings failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []joinedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings failed: %w", err)
	}

	out := make([]*Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBooking())
	}
	return out, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	bookings, err := r.aggregate(ctx, bson.M{"_id": id}, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrNotFound
	}
	return bookings[0], nil
}

func (r *mongoRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	match := bson.M{}
	if filter.UserID != "" {
		match["user_id"] = filter.UserID
	}
	if filter.HotelID != "" {
		match["hotel_id"] = filter.HotelID
	}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}

	total, err := r.bookings.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings failed: %w", err)
	}

	p := filter.Params.Normalize()
	bookings, err := r.aggregate(ctx, match, int64(p.Offset()), int64(p.Limit))
	if err != nil {
		return nil, 0, err
	}
	return bookings, int(total), nil
}

func (r *mongoRepository) CompleteEnded(ctx context.Context, now time.Time) ([]*Booking, error) {
	var completed []*Booking

	err := db.WithMongoTx(ctx, r.client, func(ctx context.Context) error {
		completed = nil

		filter := bson.M{"status": string(StatusConfirmed), "end_date": bson.M{"$lte": now}}
		cursor, err := r.bookings.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("find ended bookings failed: %w", err)
		}
		var docs []bookingDocument
		if err := cursor.All(ctx, &docs); err != nil {
			return fmt.Errorf("decode ended bookings failed: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}

		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		if _, err := r.bookings.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": ids}, "status": string(StatusConfirmed)},
			bson.M{"$set": bson.M{"status": string(StatusCompleted), "updated_at": time.Now().UTC()}},
		); err != nil {
			return fmt.Errorf("complete ended bookings failed: %w", err)
		}

		for _, d := range docs {
			b := d.toBooking()
			b.Status = StatusCompleted
			completed = append(completed, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (r *mongoRepository) HasActiveBookings(ctx context.Context, roomID string, now time.Time) (bool, error) {
	n, err := r.bookings.CountDocuments(ctx,
		bson.M{"room_id": roomID, "status": string(StatusConfirmed), "end_date": bson.M{"$gte": now}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("check active bookings failed: %w", err)
	}
	return n > 0, nil
}

