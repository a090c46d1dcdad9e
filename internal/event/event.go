package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingCancelled Type = "booking.cancelled"
	BookingCompleted Type = "booking.completed"
)

// Event is a booking lifecycle notification. It is emitted after the store commit.
type Event struct {
	ID               string    `json:"id"`
	Type             Type      `json:"type"`
	BookingID        string    `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	RoomID           string    `json:"room_id"`
	HotelID          string    `json:"hotel_id"`
	UserID           string    `json:"user_id"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to some downstream channel.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi fans an event out to every publisher; one failing sink does not stop the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
