package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

// Repository is the storage port of the booking lifecycle. Adapters hold no
// business rules beyond the conditional status update and the uniqueness of
// booking references.
type Repository interface {
	// WithRoomLock runs fn while holding an exclusive write lock on the room,
	// inside a transaction carried by the context passed to fn.
	// It returns ErrRoomNotFound when the room does not exist.
	WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error

	// FindConfirmed lists confirmed stays on the room that end after since.
	FindConfirmed(ctx context.Context, roomID string, since time.Time) ([]Interval, error)

	// Create persists b and fills ID and timestamps.
	// It returns ErrDuplicateReference or ErrDateConflict.
	Create(ctx context.Context, b *Booking) error

	// UpdateStatus moves a booking from one status to another only if it is still in from.
	// It returns ErrNotFound or ErrStatusChanged.
	UpdateStatus(ctx context.Context, id string, from, to Status) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// CompleteEnded marks confirmed bookings with EndDate <= now as completed and returns them.
	CompleteEnded(ctx context.Context, now time.Time) ([]*Booking, error)

	// HasActiveBookings reports whether a confirmed booking on the room ends at or after now.
	HasActiveBookings(ctx context.Context, roomID string, now time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func isPgCode(err error, code string) bool {
	var e *pgconn.PgError
	return errors.As(err, &e) && e.Code == code
}

func (r *pgxRepository) WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		var id string
		err := db.Conn(ctx, r.pool).
			QueryRow(ctx, `SELECT id FROM public.rooms WHERE id = $1 FOR UPDATE`, roomID).
			Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || isPgCode(err, pgerrcode.InvalidTextRepresentation) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("lock room failed: %w", err)
		}
		return fn(ctx)
	})
}

func (r *pgxRepository) FindConfirmed(ctx context.Context, roomID string, since time.Time) ([]Interval, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("start_date", "end_date").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID, "status": StatusConfirmed}).
		Where(squirrel.Gt{"end_date": since}).
		OrderBy("start_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find confirmed query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find confirmed bookings failed: %w", err)
	}
	defer rows.Close()

	var out []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("scan interval failed: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"user_id", "room_id", "hotel_id", "start_date", "end_date", "guests",
			"special_requests", "status", "total_price", "booking_reference",
		).
		Values(
			b.UserID, b.RoomID, b.HotelID, b.StartDate, b.EndDate, b.Guests,
			b.SpecialRequests, b.Status, b.TotalPrice, b.BookingReference,
		).
		Suffix("ON CONFLICT (booking_reference) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrDuplicateReference
		case isPgCode(err, pgerrcode.ExclusionViolation):
			return ErrDateConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	conn := db.Conn(ctx, r.pool)

	ct, err := conn.Exec(ctx,
		`UPDATE public.bookings SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM public.bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check booking exists failed: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func selectBookings() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"b.id", "b.user_id", "b.room_id", "b.hotel_id", "b.start_date", "b.end_date",
			"b.guests", "b.special_requests", "b.status", "b.total_price", "b.booking_reference",
			"b.created_at", "b.updated_at",
			"u.full_name", "u.email", "r.room_number", "r.room_type", "h.name", "h.location",
		).
		From("public.bookings b").
		Join("public.users u ON b.user_id = u.id").
		Join("public.rooms r ON b.room_id = r.id").
		Join("public.hotels h ON b.hotel_id = h.id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.HotelID, &b.StartDate, &b.EndDate,
		&b.Guests, &b.SpecialRequests, &b.Status, &b.TotalPrice, &b.BookingReference,
		&b.CreatedAt, &b.UpdatedAt,
		&b.UserName, &b.UserEmail, &b.RoomNumber, &b.RoomType, &b.HotelName, &b.HotelLocation,
	)
	return &b, err
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgCode(err, pgerrcode.InvalidTextRepresentation) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	where := squirrel.And{}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.HotelID != "" {
		where = append(where, squirrel.Eq{"b.hotel_id": filter.HotelID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"b.status": filter.Status})
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	countSQL, countArgs, err := psql.Select("count(*)").From("public.bookings b").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	conn := db.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings failed: %w", err)
	}

	p := filter.Params.Normalize()
	query, args, err := selectBookings().
		Where(where).
		OrderBy("b.created_at DESC", "b.id DESC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) CompleteEnded(ctx context.Context, now time.Time) ([]*Booking, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		UPDATE public.bookings
		SET status = $1, updated_at = now()
		WHERE status = $2 AND end_date <= $3
		RETURNING id, user_id, room_id, hotel_id, booking_reference, start_date, end_date
	`, StatusCompleted, StatusConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("complete ended bookings failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b := &Booking{Status: StatusCompleted}
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &b.HotelID, &b.BookingReference, &b.StartDate, &b.EndDate); err != nil {
			return nil, fmt.Errorf("scan completed booking failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *pgxRepository) HasActiveBookings(ctx context.Context, roomID string, now time.Time) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID, "status": StatusConfirmed}).
		Where(squirrel.GtOrEq{"end_date": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build active bookings query failed: %w", err)
	}

	var exists bool
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active bookings failed: %w", err)
	}
	return exists, nil
}
