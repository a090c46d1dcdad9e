package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
)

// ListHotelsRequest defines query parameters for listing hotels.
type ListHotelsRequest struct {
	request.ListParams
	Location string `form:"location"`
	Name     string `form:"name"`
	Star     int    `form:"star" binding:"omitempty,min=1,max=5"`
}

type HotelResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StarRating  int       `json:"star_rating"`
	Amenities   []string  `json:"amenities"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	CreatedBy   string    `json:"created_by,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewHotelResponse(h *hotel.Hotel) HotelResponse {
	amenities := h.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return HotelResponse{
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

// HotelDetailResponse is a hotel together with its bookable rooms.
type HotelDetailResponse struct {
	Hotel HotelResponse           `json:"hotel"`
	Rooms []roomHttp.RoomResponse `json:"rooms"`
}

// Field rules are enforced by the service validator.
type CreateHotelRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	StarRating  int      `json:"star_rating" binding:"required"`
	Amenities   []string `json:"amenities"`
	Address     string   `json:"address" binding:"required"`
	Phone       string   `json:"phone" binding:"required"`
	Email       string   `json:"email" binding:"required"`
}

type UpdateHotelRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	StarRating  *int      `json:"star_rating"`
	Amenities   *[]string `json:"amenities"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
}
