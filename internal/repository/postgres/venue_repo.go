package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventease/internal/domain"
)

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{
		DB: db,
	}
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, location, capacity, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, v.Name, v.Location, v.Capacity, nullable(v.ImageURL), v.CreatedAt, v.UpdatedAt).Scan(&v.ID)
	if hasCode(err, codeCheckViolation) {
		return fmt.Errorf("%w: venue capacity must be positive", domain.ErrInvalidInput)
	}
	return err
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `
		SELECT id, name, location, capacity, image_url, created_at, updated_at
		FROM venues
		WHERE id = $1
	`
	v, err := scanVenue(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *venueRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, name, location, capacity, image_url, created_at, updated_at
		FROM venues
		ORDER BY name, id
		LIMIT NULLIF($1, 0) OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		venues = append(venues, v)
	}
	return venues, total, rows.Err()
}

func (r *venueRepository) Update(ctx context.Context, v *domain.Venue) error {
	query := `
		UPDATE venues
		SET name = $1, location = $2, capacity = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, v.Name, v.Location, v.Capacity, v.UpdatedAt, v.ID)
	if err != nil {
		if hasCode(err, codeCheckViolation) {
			return fmt.Errorf("%w: venue capacity must be positive", domain.ErrInvalidInput)
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *venueRepository) SetImageURL(ctx context.Context, id, imageURL string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE venues SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *venueRepository) CountDependents(ctx context.Context, id string) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events WHERE venue_id = $1) +
			(SELECT COUNT(*) FROM bookings WHERE venue_id = $1)
	`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *venueRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return &domain.DeletionBlockedError{Entity: "venue", ID: id}
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*domain.Venue, error) {
	v := &domain.Venue{}
	var imageNull sql.NullString
	if err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &imageNull, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.ImageURL = ptr(imageNull)
	return v, nil
}
