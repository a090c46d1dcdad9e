package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/validation"
)

// HotelLookup resolves the hotel a room belongs to.
type HotelLookup interface {
	GetByID(ctx context.Context, id string) (*hotel.Hotel, error)
}

// BookingChecker reports whether a room still has confirmed bookings ending at or after now.
type BookingChecker interface {
	HasActiveBookings(ctx context.Context, roomID string, now time.Time) (bool, error)
}

type CreateRequest struct {
	HotelID       string
	RoomType      string
	RoomNumber    string
	PricePerNight float64
	Amenities     []string
	MaxGuests     int
	Description   string
	BedType       string
	Size          *int
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	RoomType      *string
	RoomNumber    *string
	PricePerNight *float64
	Amenities     *[]string
	MaxGuests     *int
	Description   *string
	BedType       *string
	Size          *int
	// IsAvailable withdraws or restores the room.
	IsAvailable *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	// GetByID returns the room whether or not it is available.
	GetByID(ctx context.Context, id string) (*Room, error)
	// GetAvailable hides withdrawn rooms behind ErrUnavailable.
	GetAvailable(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListAvailableByHotel(ctx context.Context, hotelID string) ([]*Room, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	hotels    HotelLookup
	bookings  BookingChecker
	validator *validation.Validator
	log       *logrus.Entry
	now       func() time.Time
}

func NewService(repo Repository, hotels HotelLookup, bookings BookingChecker, validator *validation.Validator, log *logrus.Entry) Service {
	return &service{
		repo:      repo,
		hotels:    hotels,
		bookings:  bookings,
		validator: validator,
		log:       log.WithField("component", "room"),
		now:       time.Now,
	}
}

func (s *service) ensureUniqueNumber(ctx context.Context, hotelID, number, excludeID string) error {
	exists, err := s.repo.ExistsByNumber(ctx, hotelID, number, excludeID)
	if err != nil {
		return apperror.AsStore(err, "failed to check room number")
	}
	if exists {
		return ErrDuplicateNumber
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	rm := &Room{
		HotelID:       req.HotelID,
		RoomType:      req.RoomType,
		RoomNumber:    strings.TrimSpace(req.RoomNumber),
		PricePerNight: req.PricePerNight,
		Amenities:     req.Amenities,
		MaxGuests:     req.MaxGuests,
		Description:   req.Description,
		BedType:       req.BedType,
		Size:          req.Size,
	}
	if rm.Amenities == nil {
		rm.Amenities = []string{}
	}

	if err := s.validator.Check(rm); err != nil {
		return nil, err
	}

	h, err := s.hotels.GetByID(ctx, rm.HotelID)
	if err != nil {
		if errors.Is(err, hotel.ErrNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, apperror.AsStore(err, "failed to get hotel")
	}
	if !h.IsActive {
		return nil, ErrHotelInactive
	}

	if err := s.ensureUniqueNumber(ctx, rm.HotelID, rm.RoomNumber, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, apperror.AsStore(err, "failed to create room")
	}
	rm.HotelName = h.Name
	rm.HotelLocation = h.Location

	s.log.WithFields(logrus.Fields{"room_id": rm.ID, "hotel_id": rm.HotelID}).Info("room created")
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.AsStore(err, "failed to get room")
	}
	return rm, nil
}

func (s *service) GetAvailable(ctx context.Context, id string) (*Room, error) {
	rm, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rm.IsAvailable {
		return nil, ErrUnavailable
	}
	return rm, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	filter.Params = filter.Params.Normalize()
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.AsStore(err, "failed to list rooms")
	}
	return rooms, total, nil
}

func (s *service) ListAvailableByHotel(ctx context.Context, hotelID string) ([]*Room, error) {
	rooms, err := s.repo.ListAvailableByHotel(ctx, hotelID)
	if err != nil {
		return nil, apperror.AsStore(err, "failed to list hotel rooms")
	}
	return rooms, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	rm, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renumbered := false
	if req.RoomNumber != nil {
		number := strings.TrimSpace(*req.RoomNumber)
		renumbered = number != rm.RoomNumber
		rm.RoomNumber = number
	}
	if req.RoomType != nil {
		rm.RoomType = *req.RoomType
	}
	if req.PricePerNight != nil {
		rm.PricePerNight = *req.PricePerNight
	}
	if req.Amenities != nil {
		rm.Amenities = *req.Amenities
	}
	if req.MaxGuests != nil {
		rm.MaxGuests = *req.MaxGuests
	}
	if req.Description != nil {
		rm.Description = *req.Description
	}
	if req.BedType != nil {
		rm.BedType = *req.BedType
	}
	if req.Size != nil {
		rm.Size = req.Size
	}

	if err := s.validator.Check(rm); err != nil {
		return nil, err
	}
	toggled := req.IsAvailable != nil && *req.IsAvailable != rm.IsAvailable
	if toggled {
		if err := s.checkAvailabilityChange(ctx, rm, *req.IsAvailable); err != nil {
			return nil, err
		}
		rm.IsAvailable = *req.IsAvailable
	}
	if renumbered {
		if err := s.ensureUniqueNumber(ctx, rm.HotelID, rm.RoomNumber, rm.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, apperror.AsStore(err, "failed to update room")
	}
	if toggled {
		s.log.WithFields(logrus.Fields{"room_id": rm.ID, "is_available": rm.IsAvailable}).Info("room availability changed")
	}
	return rm, nil
}

// checkAvailabilityChange applies the same rules as Delete when a room is
// withdrawn, and only lets a room back on sale while its hotel is active.
func (s *service) checkAvailabilityChange(ctx context.Context, rm *Room, available bool) error {
	if !available {
		active, err := s.bookings.HasActiveBookings(ctx, rm.ID, s.now().UTC())
		if err != nil {
			return apperror.AsStore(err, "failed to check room bookings")
		}
		if active {
			return ErrHasActiveBookings
		}
		return nil
	}

	h, err := s.hotels.GetByID(ctx, rm.HotelID)
	if err != nil {
		if errors.Is(err, hotel.ErrNotFound) {
			return ErrHotelNotFound
		}
		return apperror.AsStore(err, "failed to get hotel")
	}
	if !h.IsActive {
		return ErrRestoreInactiveHotel
	}
	return nil
}

// Delete withdraws the room from sale. Rooms with upcoming or ongoing
// confirmed bookings cannot be withdrawn.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.bookings.HasActiveBookings(ctx, id, s.now().UTC())
	if err != nil {
		return apperror.AsStore(err, "failed to check room bookings")
	}
	if active {
		return ErrHasActiveBookings
	}

	if err := s.repo.MarkUnavailable(ctx, id); err != nil {
		return apperror.AsStore(err, "failed to delete room")
	}
	s.log.WithField("room_id", id).Info("room withdrawn")
	return nil
}
