package room

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
)

var (
	ErrNotFound             = apperror.NotFound("room not found")
	ErrUnavailable          = apperror.NotFound("room is not available")
	ErrHotelNotFound        = apperror.NotFound("hotel not found")
	ErrHotelInactive        = apperror.Conflict("cannot add rooms to inactive hotel")
	ErrDuplicateNumber      = apperror.Conflict("room number already exists in this hotel")
	ErrHasActiveBookings    = apperror.Conflict("cannot delete room with active bookings")
	ErrRestoreInactiveHotel = apperror.Conflict("cannot restore room of inactive hotel")
)

var (
	Types     = []string{"single", "double", "deluxe", "suite", "family"}
	BedTypes  = []string{"single", "double", "queen", "king"}
	Amenities = []string{"WiFi", "AC", "TV", "Minibar", "Balcony", "Room Service", "Bathtub", "Safe", "Coffee Maker", "Gym Access"}
)

// Room is a bookable unit of a hotel. IsAvailable tracks whether the room is
// offered at all; it is never flipped by bookings.
type Room struct {
	ID            string
	HotelID       string   `validate:"required"`
	RoomType      string   `validate:"required,oneof=single double deluxe suite family"`
	RoomNumber    string   `validate:"required,max=20"`
	PricePerNight float64  `validate:"gte=0"`
	Amenities     []string `validate:"dive,oneof=WiFi AC TV Minibar Balcony 'Room Service' Bathtub Safe 'Coffee Maker' 'Gym Access'"`
	MaxGuests     int      `validate:"gte=1,lte=10"`
	IsAvailable   bool
	Description   string `validate:"max=500"`
	BedType       string `validate:"required,oneof=single double queen king"`
	Size          *int   `validate:"omitempty,gte=10"` // square meters
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Display fields joined from the hotel on reads.
	HotelName     string
	HotelLocation string
}

// Filter narrows the public room list. Only available rooms are ever listed.
type Filter struct {
	HotelID   string
	RoomType  string
	PriceMin  *float64
	PriceMax  *float64
	Amenities []string // any-of
	MinGuests int      // room.MaxGuests >= MinGuests
	pagination.Params
}
