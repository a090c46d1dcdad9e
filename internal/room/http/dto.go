package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	HotelID   string   `form:"hotel_id" binding:"omitempty,uuid"`
	RoomType  string   `form:"room_type" binding:"omitempty,oneof=single double deluxe suite family"`
	PriceMin  *float64 `form:"price_min" binding:"omitempty,gte=0"`
	PriceMax  *float64 `form:"price_max" binding:"omitempty,gte=0"`
	Amenities string   `form:"amenities"` // comma separated, any-of
	MaxGuests int      `form:"max_guests" binding:"omitempty,min=1,max=10"`
}

func (r *ListRoomsRequest) AmenityList() []string {
	var out []string
	for _, a := range strings.Split(r.Amenities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// RoomTag is a brief representation of a room.
type RoomTag struct {
	ID         string `json:"id"`
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type"`
}

// HotelTag is the hotel summary embedded in room responses.
type HotelTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type RoomResponse struct {
	ID            string    `json:"id"`
	Hotel         HotelTag  `json:"hotel"`
	RoomType      string    `json:"room_type"`
	RoomNumber    string    `json:"room_number"`
	PricePerNight float64   `json:"price_per_night"`
	Amenities     []string  `json:"amenities"`
	MaxGuests     int       `json:"max_guests"`
	IsAvailable   bool      `json:"is_available"`
	Description   string    `json:"description"`
	BedType       string    `json:"bed_type"`
	Size          *int      `json:"size,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return RoomResponse{
		ID:            r.ID,
		Hotel:         HotelTag{ID: r.HotelID, Name: r.HotelName, Location: r.HotelLocation},
		RoomType:      r.RoomType,
		RoomNumber:    r.RoomNumber,
		PricePerNight: r.PricePerNight,
		Amenities:     amenities,
		MaxGuests:     r.MaxGuests,
		IsAvailable:   r.IsAvailable,
		Description:   r.Description,
		BedType:       r.BedType,
		Size:          r.Size,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Field rules are enforced by the service validator.
type CreateRoomRequest struct {
	HotelID       string   `json:"hotel_id" binding:"required,uuid"`
	RoomType      string   `json:"room_type" binding:"required"`
	RoomNumber    string   `json:"room_number" binding:"required"`
	PricePerNight *float64 `json:"price_per_night" binding:"required"`
	Amenities     []string `json:"amenities"`
	MaxGuests     int      `json:"max_guests" binding:"required"`
	Description   string   `json:"description"`
	BedType       string   `json:"bed_type" binding:"required"`
	Size          *int     `json:"size"`
}

type UpdateRoomRequest struct {
	RoomType      *string   `json:"room_type"`
	RoomNumber    *string   `json:"room_number"`
	PricePerNight *float64  `json:"price_per_night"`
	Amenities     *[]string `json:"amenities"`
	MaxGuests     *int      `json:"max_guests"`
	Description   *string   `json:"description"`
	BedType       *string   `json:"bed_type"`
	Size          *int      `json:"size"`
	IsAvailable   *bool     `json:"is_available"`
}
