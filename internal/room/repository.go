package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListAvailableByHotel(ctx context.Context, hotelID string) ([]*Room, error)
	Update(ctx context.Context, r *Room) error
	ExistsByNumber(ctx context.Context, hotelID, roomNumber, excludeID string) (bool, error)
	MarkUnavailable(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) selectRooms() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"r.id", "r.hotel_id", "h.name", "h.location", "r.room_type", "r.room_number",
			"r.price_per_night", "r.amenities", "r.max_guests", "r.is_available", "r.description",
			"r.bed_type", "r.size", "r.created_at", "r.updated_at",
		).
		From("public.rooms r").
		Join("public.hotels h ON r.hotel_id = h.id")
}

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(
		&rm.ID, &rm.HotelID, &rm.HotelName, &rm.HotelLocation, &rm.RoomType, &rm.RoomNumber,
		&rm.PricePerNight, &rm.Amenities, &rm.MaxGuests, &rm.IsAvailable, &rm.Description,
		&rm.BedType, &rm.Size, &rm.CreatedAt, &rm.UpdatedAt,
	)
	return &rm, err
}

func (r *pgxRepository) queryRooms(ctx context.Context, q squirrel.SelectBuilder) ([]*Room, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

func mapWriteErr(err error) error {
	var e *pgconn.PgError
	if errors.As(err, &e) {
		switch e.Code {
		case pgerrcode.UniqueViolation:
			return ErrDuplicateNumber
		case pgerrcode.ForeignKeyViolation:
			return ErrHotelNotFound
		}
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.rooms").
		Columns("hotel_id", "room_type", "room_number", "price_per_night", "amenities", "max_guests", "description", "bed_type", "size").
		Values(rm.HotelID, rm.RoomType, rm.RoomNumber, rm.PricePerNight, rm.Amenities, rm.MaxGuests, rm.Description, rm.BedType, rm.Size).
		Suffix("RETURNING id, is_available, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&rm.ID, &rm.IsAvailable, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		if mapped := mapWriteErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	sql, args, err := r.selectRooms().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	rm, err := scanRoom(db.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return rm, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	where := squirrel.And{squirrel.Eq{"r.is_available": true}}
	if filter.HotelID != "" {
		where = append(where, squirrel.Eq{"r.hotel_id": filter.HotelID})
	}
	if filter.RoomType != "" {
		where = append(where, squirrel.Eq{"r.room_type": filter.RoomType})
	}
	if filter.PriceMin != nil {
		where = append(where, squirrel.GtOrEq{"r.price_per_night": *filter.PriceMin})
	}
	if filter.PriceMax != nil {
		where = append(where, squirrel.LtOrEq{"r.price_per_night": *filter.PriceMax})
	}
	if len(filter.Amenities) > 0 {
		where = append(where, squirrel.Expr("r.amenities && ?", filter.Amenities))
	}
	if filter.MinGuests > 0 {
		where = append(where, squirrel.GtOrEq{"r.max_guests": filter.MinGuests})
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	countSQL, countArgs, err := psql.Select("count(*)").From("public.rooms r").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count rooms query failed: %w", err)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rooms failed: %w", err)
	}

	p := filter.Params.Normalize()
	rooms, err := r.queryRooms(ctx, r.selectRooms().
		Where(where).
		OrderBy("r.price_per_night ASC", "r.id ASC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())))
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

func (r *pgxRepository) ListAvailableByHotel(ctx context.Context, hotelID string) ([]*Room, error) {
	return r.queryRooms(ctx, r.selectRooms().
		Where(squirrel.Eq{"r.hotel_id": hotelID, "r.is_available": true}).
		OrderBy("r.room_number ASC"))
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.rooms").
		Set("room_type", rm.RoomType).
		Set("room_number", rm.RoomNumber).
		Set("price_per_night", rm.PricePerNight).
		Set("amenities", rm.Amenities).
		Set("max_guests", rm.MaxGuests).
		Set("description", rm.Description).
		Set("bed_type", rm.BedType).
		Set("size", rm.Size).
		Set("is_available", rm.IsAvailable).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": rm.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&rm.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapWriteErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ExistsByNumber(ctx context.Context, hotelID, roomNumber, excludeID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.rooms").
		Where(squirrel.Eq{"hotel_id": hotelID, "room_number": roomNumber})
	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build room exists query failed: %w", err)
	}

	var exists bool
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check room exists failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) MarkUnavailable(ctx context.Context, id string) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE public.rooms SET is_available = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark room unavailable failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
