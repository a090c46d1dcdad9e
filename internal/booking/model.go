package booking

import (
	"errors"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
)

const maxSpecialRequests = 500

var (
	ErrNotFound            = apperror.NotFound("booking not found")
	ErrRoomNotFound        = apperror.NotFound("room not found")
	ErrMissingFields       = apperror.Validation("room id, start date, end date and guests are required")
	ErrSpecialRequestsLong = apperror.Validation("special requests cannot exceed 500 characters")
	ErrInvalidStatus       = apperror.Validation("invalid booking status")
	ErrRoomUnavailable     = apperror.Conflict("room is not available for booking")
	ErrCapacityExceeded    = apperror.Validation("number of guests exceeds room capacity")
	ErrInvalidDate         = apperror.Validation("dates must be YYYY-MM-DD or RFC3339")
	ErrStartInPast         = apperror.Validation("start date cannot be in the past")
	ErrInvalidDateRange    = apperror.Validation("end date must be after start date")
	ErrDateConflict        = apperror.Conflict("room is already booked for the selected dates")
	ErrAlreadyCancelled    = apperror.Conflict("booking is already cancelled")
	ErrAlreadyCompleted    = apperror.Conflict("booking is already completed")
	ErrAlreadyStarted      = apperror.Conflict("cannot cancel booking that has already started")
)

// Repository-level signals; the service translates them.
var (
	ErrDuplicateReference = errors.New("booking reference already exists")
	ErrStatusChanged      = errors.New("booking status changed concurrently")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal statuses never change again.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking is a reservation of one room over [StartDate, EndDate).
// TotalPrice and BookingReference are fixed at creation.
type Booking struct {
	ID               string
	UserID           string
	RoomID           string
	HotelID          string
	StartDate        time.Time
	EndDate          time.Time
	Guests           int
	SpecialRequests  string
	Status           Status
	TotalPrice       float64
	BookingReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Display fields joined on reads.
	UserName      string
	UserEmail     string
	RoomNumber    string
	RoomType      string
	HotelName     string
	HotelLocation string
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartDate, End: b.EndDate}
}

type Filter struct {
	UserID  string
	HotelID string
	Status  Status
	pagination.Params
}
