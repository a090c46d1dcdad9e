package hotel

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, h *Hotel) error
	GetByID(ctx context.Context, id string) (*Hotel, error)
	List(ctx context.Context, filter Filter) ([]*Hotel, int, error)
	Update(ctx context.Context, h *Hotel) error

	// ExistsByNameAndLocation ignores excludeID so updates do not collide with themselves.
	ExistsByNameAndLocation(ctx context.Context, name, location, excludeID string) (bool, error)

	// Deactivate soft-deletes the hotel and marks all of its rooms unavailable in one transaction.
	Deactivate(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var hotelColumns = []string{
	"id", "name", "description", "location", "star_rating", "amenities", "address",
	"phone", "email", "COALESCE(created_by::text, '')", "is_active", "created_at", "updated_at",
}

func scanHotel(row pgx.Row) (*Hotel, error) {
	var h Hotel
	err := row.Scan(
		&h.ID, &h.Name, &h.Description, &h.Location, &h.StarRating, &h.Amenities, &h.Address,
		&h.Phone, &h.Email, &h.CreatedBy, &h.IsActive, &h.CreatedAt, &h.UpdatedAt,
	)
	return &h, err
}

func (r *pgxRepository) Create(ctx context.Context, h *Hotel) error {
	var createdBy any
	if h.CreatedBy != "" {
		createdBy = h.CreatedBy
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.hotels").
		Columns("name", "description", "location", "star_rating", "amenities", "address", "phone", "email", "created_by").
		Values(h.Name, h.Description, h.Location, h.StarRating, h.Amenities, h.Address, h.Phone, h.Email, createdBy).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create hotel query failed: %w", err)
	}

	return db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&h.ID, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Hotel, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(hotelColumns...).
		From("public.hotels").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get hotel query failed: %w", err)
	}

	h, err := scanHotel(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hotel failed: %w", err)
	}
	return h, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Hotel, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	where := squirrel.And{squirrel.Eq{"is_active": true}}
	if filter.Location != "" {
		where = append(where, squirrel.ILike{"location": db.ContainsPattern(filter.Location)})
	}
	if filter.Name != "" {
		where = append(where, squirrel.ILike{"name": db.ContainsPattern(filter.Name)})
	}
	if filter.Star > 0 {
		where = append(where, squirrel.Eq{"star_rating": filter.Star})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("public.hotels").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count hotels query failed: %w", err)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count hotels failed: %w", err)
	}

	p := filter.Params.Normalize()
	query, args, err := psql.Select(hotelColumns...).
		From("public.hotels").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list hotels query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list hotels failed: %w", err)
	}
	defer rows.Close()

	var hotels []*Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan hotel failed: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate hotels failed: %w", err)
	}

	return hotels, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, h *Hotel) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.hotels").
		Set("name", h.Name).
		Set("description", h.Description).
		Set("location", h.Location).
		Set("star_rating", h.StarRating).
		Set("amenities", h.Amenities).
		Set("address", h.Address).
		Set("phone", h.Phone).
		Set("email", h.Email).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": h.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update hotel query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update hotel failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ExistsByNameAndLocation(ctx context.Context, name, location, excludeID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.hotels").
		Where(squirrel.Eq{"name": name, "location": location})
	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build hotel exists query failed: %w", err)
	}

	var exists bool
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check hotel exists failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) Deactivate(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)

		ct, err := conn.Exec(ctx, `UPDATE public.hotels SET is_active = false, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deactivate hotel failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := conn.Exec(ctx, `UPDATE public.rooms SET is_available = false, updated_at = now() WHERE hotel_id = $1`, id); err != nil {
			return fmt.Errorf("mark hotel rooms unavailable failed: %w", err)
		}
		return nil
	})
}
