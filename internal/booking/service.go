package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/event"
	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// maxReferenceAttempts bounds how often a create is replayed after a reference collision.
const maxReferenceAttempts = 3

// RoomLookup resolves a room regardless of its availability.
type RoomLookup interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
}

// HotelLookup resolves a hotel regardless of whether it is active.
type HotelLookup interface {
	GetByID(ctx context.Context, id string) (*hotel.Hotel, error)
}

type CreateRequest struct {
	RoomID          string
	StartDate       string
	EndDate         string
	Guests          int
	SpecialRequests string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest, actor auth.Actor) (*Booking, error)
	Cancel(ctx context.Context, id string, actor auth.Actor) (*Booking, error)
	List(ctx context.Context, filter Filter, actor auth.Actor) ([]*Booking, pagination.Info, error)
	GetByID(ctx context.Context, id string, actor auth.Actor) (*Booking, error)
	// CompleteFinished moves every confirmed booking that has ended to completed.
	CompleteFinished(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	rooms     RoomLookup
	hotels    HotelLookup
	publisher event.Publisher
	log       *logrus.Entry
	now       func() time.Time
}

func NewService(repo Repository, rooms RoomLookup, hotels HotelLookup, publisher event.Publisher, log *logrus.Entry) Service {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &service{
		repo:      repo,
		rooms:     rooms,
		hotels:    hotels,
		publisher: publisher,
		log:       log.WithField("component", "booking"),
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest, actor auth.Actor) (*Booking, error) {
	if err := auth.Authorize(actor, "", ""); err != nil {
		return nil, err
	}

	req.RoomID = strings.TrimSpace(req.RoomID)
	if req.RoomID == "" || strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" || req.Guests < 1 {
		return nil, ErrMissingFields
	}
	if len([]rune(req.SpecialRequests)) > maxSpecialRequests {
		return nil, ErrSpecialRequestsLong
	}

	var (
		b   *Booking
		err error
	)
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		b, err = s.createLocked(ctx, req, actor)
		if !errors.Is(err, ErrDuplicateReference) {
			break
		}
		s.log.WithField("attempt", attempt).Warn("booking reference collision, retrying")
	}
	if err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			return nil, apperror.Store(err, "failed to allocate booking reference")
		}
		return nil, apperror.AsStore(err, "failed to create booking")
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"reference":  b.BookingReference,
		"room_id":    b.RoomID,
		"user_id":    b.UserID,
	}).Info("booking created")

	stored, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("failed to reload created booking")
	} else {
		b = stored
	}

	s.publish(ctx, event.BookingCreated, b)
	return b, nil
}

// createLocked runs every check that depends on stored state, and the insert,
// while holding the room lock.
func (s *service) createLocked(ctx context.Context, req CreateRequest, actor auth.Actor) (*Booking, error) {
	var b *Booking

	err := s.repo.WithRoomLock(ctx, req.RoomID, func(ctx context.Context) error {
		rm, err := s.rooms.GetByID(ctx, req.RoomID)
		if err != nil {
			if errors.Is(err, room.ErrNotFound) {
				return ErrRoomNotFound
			}
			return apperror.AsStore(err, "failed to get room")
		}

		h, err := s.hotels.GetByID(ctx, rm.HotelID)
		if err != nil {
			if errors.Is(err, hotel.ErrNotFound) {
				return ErrRoomUnavailable
			}
			return apperror.AsStore(err, "failed to get hotel")
		}
		if !rm.IsAvailable || !h.IsActive {
			return ErrRoomUnavailable
		}

		if req.Guests > rm.MaxGuests {
			return ErrCapacityExceeded
		}

		now := s.now()
		stay, err := s.parseStay(req.StartDate, req.EndDate, now)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindConfirmed(ctx, rm.ID, now)
		if err != nil {
			return apperror.AsStore(err, "failed to check room availability")
		}
		for _, other := range existing {
			if stay.Overlaps(other) {
				return ErrDateConflict
			}
		}

		b = &Booking{
			UserID:           actor.ID,
			RoomID:           rm.ID,
			HotelID:          rm.HotelID,
			StartDate:        stay.Start,
			EndDate:          stay.End,
			Guests:           req.Guests,
			SpecialRequests:  strings.TrimSpace(req.SpecialRequests),
			Status:           StatusConfirmed,
			TotalPrice:       TotalPrice(Nights(stay.Start, stay.End), rm.PricePerNight),
			BookingReference: NewReference(now),
		}
		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) parseStay(startStr, endStr string, now time.Time) (Interval, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return Interval{}, err
	}
	if start.Before(now) {
		return Interval{}, ErrStartInPast
	}
	if !end.After(start) {
		return Interval{}, ErrInvalidDateRange
	}
	return Interval{Start: start, End: end}, nil
}

func (s *service) Cancel(ctx context.Context, id string, actor auth.Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.AsStore(err, "failed to get booking")
	}
	if err := auth.Authorize(actor, b.UserID, ""); err != nil {
		return nil, err
	}
	if err := checkCancellable(b, s.now()); err != nil {
		return nil, err
	}

	err = s.repo.UpdateStatus(ctx, b.ID, StatusConfirmed, StatusCancelled)
	if errors.Is(err, ErrStatusChanged) {
		// Lost a race with another cancel or the completion job.
		current, getErr := s.repo.GetByID(ctx, b.ID)
		if getErr != nil {
			return nil, apperror.AsStore(getErr, "failed to get booking")
		}
		if err := checkCancellable(current, s.now()); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("booking status changed, please retry")
	}
	if err != nil {
		return nil, apperror.AsStore(err, "failed to cancel booking")
	}

	b.Status = StatusCancelled
	b.UpdatedAt = s.now().UTC()

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"reference":  b.BookingReference,
		"actor_id":   actor.ID,
	}).Info("booking cancelled")

	s.publish(ctx, event.BookingCancelled, b)
	return b, nil
}

func checkCancellable(b *Booking, now time.Time) error {
	switch b.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrAlreadyCompleted
	}
	if !b.StartDate.After(now) {
		return ErrAlreadyStarted
	}
	return nil
}

func (s *service) List(ctx context.Context, filter Filter, actor auth.Actor) ([]*Booking, pagination.Info, error) {
	if err := auth.Authorize(actor, "", ""); err != nil {
		return nil, pagination.Info{}, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, pagination.Info{}, ErrInvalidStatus
	}
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
	}
	filter.Params = filter.Params.Normalize()

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pagination.Info{}, apperror.AsStore(err, "failed to list bookings")
	}
	return bookings, pagination.NewInfo(filter.Params, total), nil
}

func (s *service) GetByID(ctx context.Context, id string, actor auth.Actor) (*Booking, error) {
	if err := auth.Authorize(actor, "", ""); err != nil {
		return nil, err
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.AsStore(err, "failed to get booking")
	}
	if err := auth.Authorize(actor, b.UserID, ""); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) CompleteFinished(ctx context.Context) (int, error) {
	completed, err := s.repo.CompleteEnded(ctx, s.now())
	if err != nil {
		return 0, apperror.AsStore(err, "failed to complete bookings")
	}
	for _, b := range completed {
		s.publish(ctx, event.BookingCompleted, b)
	}
	return len(completed), nil
}

// publish is best effort: the store change is already committed.
func (s *service) publish(ctx context.Context, t event.Type, b *Booking) {
	e := event.New(t)
	e.BookingID = b.ID
	e.BookingReference = b.BookingReference
	e.RoomID = b.RoomID
	e.HotelID = b.HotelID
	e.UserID = b.UserID
	e.Status = string(b.Status)

	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":      t,
			"booking_id": b.ID,
		}).Warn("failed to publish booking event")
	}
}
