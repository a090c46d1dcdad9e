package hotel

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
)

var (
	ErrNotFound      = apperror.NotFound("hotel not found")
	ErrInactive      = apperror.NotFound("hotel is no longer available")
	ErrDuplicateName = apperror.Conflict("hotel with this name already exists in this location")
)

// Hotel is a property in the catalogue. Deleting a hotel only deactivates it.
type Hotel struct {
	ID          string
	Name        string   `validate:"required,max=100"`
	Description string   `validate:"required,max=1000"`
	Location    string   `validate:"required,max=100"`
	StarRating  int      `validate:"gte=1,lte=5"`
	Amenities   []string `validate:"dive,required"`
	Address     string   `validate:"required,max=200"`
	Phone       string   `validate:"required,phone"`
	Email       string   `validate:"required,email"`
	CreatedBy   string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter narrows the public hotel list. Only active hotels are ever listed.
type Filter struct {
	Location string // case-insensitive contains
	Name     string // case-insensitive contains
	Star     int
	pagination.Params
}
