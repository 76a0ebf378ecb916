package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventease/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `
	e.id, e.name, e.start_time, e.end_time, e.description, e.venue_id, e.image_url, e.created_at, e.updated_at,
	v.name, v.location, v.capacity, v.image_url
`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, start_time, end_time, description, venue_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Name, e.StartTime, e.EndTime, nullable(e.Description), nullable(e.VenueID), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapEventWriteErr(err, e)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		WHERE e.id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := ""
	args := []any{}
	if filter.VenueID != "" {
		where = "WHERE e.venue_id = $1"
		args = append(args, filter.VenueID)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		%s
		ORDER BY e.start_time, e.id
		LIMIT NULLIF($%d, 0) OFFSET $%d
	`, eventColumns, where, n+1, n+2)
	args = append(args, params.Limit(), params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, start_time = $2, end_time = $3, description = $4, venue_id = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Name, e.StartTime, e.EndTime, nullable(e.Description), nullable(e.VenueID), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapEventWriteErr(err, e)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SetImageURL(ctx context.Context, id, imageURL string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE events SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) CountBookings(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return &domain.DeletionBlockedError{Entity: "event", ID: id}
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapEventWriteErr(err error, e *domain.Event) error {
	switch {
	case err == nil:
		return nil
	case hasCode(err, codeForeignKeyViolation):
		id := ""
		if e.VenueID != nil {
			id = *e.VenueID
		}
		return &domain.InvalidReferenceError{Entity: "venue", ID: id, Reason: "venue does not exist"}
	case hasCode(err, codeCheckViolation):
		return fmt.Errorf("%w: event end time must be after start time", domain.ErrInvalidInput)
	}
	return err
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, venueNull, imageNull sql.NullString
	var venueName, venueLocation, venueImage sql.NullString
	var venueCapacity sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &e.StartTime, &e.EndTime, &descNull, &venueNull, &imageNull, &e.CreatedAt, &e.UpdatedAt,
		&venueName, &venueLocation, &venueCapacity, &venueImage,
	)
	if err != nil {
		return nil, err
	}
	e.Description = ptr(descNull)
	e.VenueID = ptr(venueNull)
	e.ImageURL = ptr(imageNull)
	if venueNull.Valid && venueName.Valid {
		e.Venue = &domain.Venue{
			ID:       venueNull.String,
			Name:     venueName.String,
			Location: venueLocation.String,
			Capacity: int(venueCapacity.Int64),
			ImageURL: ptr(venueImage),
		}
	}
	return e, nil
}
