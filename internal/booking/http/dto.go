package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
)

// CreateBookingRequest carries dates as strings; the service accepts YYYY-MM-DD or RFC3339.
type CreateBookingRequest struct {
	RoomID          string `json:"room_id" binding:"required,uuid"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	Guests          int    `json:"guests" binding:"required,min=1"`
	SpecialRequests string `json:"special_requests" binding:"max=500"`
}

// ListBookingsRequest defines query parameters for listing bookings.
// UserID is only honored for admins.
type ListBookingsRequest struct {
	request.ListParams
	Status  string `form:"status" binding:"omitempty,oneof=confirmed cancelled completed"`
	HotelID string `form:"hotel_id" binding:"omitempty,uuid"`
	UserID  string `form:"user_id" binding:"omitempty,uuid"`
}

type UserTag struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

type RoomTag struct {
	ID         string `json:"id"`
	RoomNumber string `json:"room_number,omitempty"`
	RoomType   string `json:"room_type,omitempty"`
}

type HotelTag struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}

type BookingResponse struct {
	ID               string    `json:"id"`
	BookingReference string    `json:"booking_reference"`
	User             UserTag   `json:"user"`
	Room             RoomTag   `json:"room"`
	Hotel            HotelTag  `json:"hotel"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Nights           int       `json:"nights"`
	Guests           int       `json:"guests"`
	SpecialRequests  string    `json:"special_requests,omitempty"`
	Status           string    `json:"status"`
	TotalPrice       float64   `json:"total_price"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		User: UserTag{
			ID:       b.UserID,
			FullName: b.UserName,
			Email:    b.UserEmail,
		},
		Room: RoomTag{
			ID:         b.RoomID,
			RoomNumber: b.RoomNumber,
			RoomType:   b.RoomType,
		},
		Hotel: HotelTag{
			ID:       b.HotelID,
			Name:     b.HotelName,
			Location: b.HotelLocation,
		},
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Nights:          booking.Nights(b.StartDate, b.EndDate),
		Guests:          b.Guests,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		TotalPrice:      b.TotalPrice,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
