package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventease/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

const bookingColumns = `
	b.id, b.event_id, b.venue_id, b.user_id, b.booking_date, b.created_at, b.updated_at,
	e.name, e.start_time, e.end_time, e.venue_id,
	v.name, v.location, v.capacity
`

const bookingJoins = `
	FROM bookings b
	INNER JOIN events e ON e.id = b.event_id
	LEFT JOIN venues v ON v.id = b.venue_id
`

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + bookingJoins + ` WHERE b.id = $1`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter, params domain.PaginationParams) ([]*domain.Booking, int, error) {
	conds := []string{}
	args := []any{}
	n := 1
	if filter.EventID != "" {
		conds = append(conds, fmt.Sprintf("b.event_id = $%d", n))
		args = append(args, filter.EventID)
		n++
	}
	if filter.VenueID != "" {
		conds = append(conds, fmt.Sprintf("b.venue_id = $%d", n))
		args = append(args, filter.VenueID)
		n++
	}
	if filter.UserID != "" {
		conds = append(conds, fmt.Sprintf("b.user_id = $%d", n))
		args = append(args, filter.UserID)
		n++
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s %s %s
		ORDER BY b.booking_date DESC, b.id
		LIMIT NULLIF($%d, 0) OFFSET $%d
	`, bookingColumns, bookingJoins, where, n, n+1)
	args = append(args, params.Limit(), params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

func (r *bookingRepository) CreateChecked(ctx context.Context, b *domain.Booking, guard domain.ConflictGuard) error {
	return r.inSerializableTx(ctx, func(tx *sql.Tx) error {
		if err := r.checkConflicts(ctx, tx, guard); err != nil {
			return err
		}
		query := `
			INSERT INTO bookings (event_id, venue_id, user_id, booking_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			b.EventID, nullable(b.VenueID), nullable(b.UserID), b.BookingDate, b.CreatedAt, b.UpdatedAt,
		).Scan(&b.ID)
		return mapBookingWriteErr(err, b)
	})
}

func (r *bookingRepository) UpdateChecked(ctx context.Context, b *domain.Booking, guard domain.ConflictGuard) error {
	return r.inSerializableTx(ctx, func(tx *sql.Tx) error {
		if err := r.checkConflicts(ctx, tx, guard); err != nil {
			return err
		}
		query := `
			UPDATE bookings
			SET event_id = $1, venue_id = $2, user_id = $3, booking_date = $4, updated_at = $5
			WHERE id = $6
		`
		result, err := tx.ExecContext(ctx, query,
			b.EventID, nullable(b.VenueID), nullable(b.UserID), b.BookingDate, b.UpdatedAt, b.ID,
		)
		if err != nil {
			return mapBookingWriteErr(err, b)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// inSerializableTx runs fn in a SERIALIZABLE transaction and commits when fn succeeds.
// A serialization failure from Postgres is reported as a booking conflict.
func (r *bookingRepository) inSerializableTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return mapTxErr(err)
	}
	if err := tx.Commit(); err != nil {
		return mapTxErr(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// checkConflicts locks the scoping row (venue or event), loads the candidate
// bookings that could clash and runs the guard over them.
func (r *bookingRepository) checkConflicts(ctx context.Context, tx *sql.Tx, guard domain.ConflictGuard) error {
	p := guard.Proposed
	var (
		candidates []domain.BookingSlot
		err        error
	)
	if guard.Policy == domain.PolicyVenueOverlap && p.VenueID != "" {
		if err := lockRow(ctx, tx, `SELECT id FROM venues WHERE id = $1 FOR UPDATE`, "venue", p.VenueID); err != nil {
			return err
		}
		candidates, err = loadSlots(ctx, tx, `
			SELECT b.id, b.event_id, b.venue_id, b.booking_date, e.start_time, e.end_time
			FROM bookings b
			INNER JOIN events e ON e.id = b.event_id
			WHERE b.venue_id = $1 AND e.start_time < $2 AND e.end_time > $3
		`, p.VenueID, p.Window.End, p.Window.Start)
	} else {
		if err := lockRow(ctx, tx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, "event", p.EventID); err != nil {
			return err
		}
		candidates, err = loadSlots(ctx, tx, `
			SELECT b.id, b.event_id, b.venue_id, b.booking_date, e.start_time, e.end_time
			FROM bookings b
			INNER JOIN events e ON e.id = b.event_id
			WHERE b.event_id = $1 AND b.booking_date = $2
		`, p.EventID, p.BookingDate)
	}
	if err != nil {
		return fmt.Errorf("load candidate bookings: %w", err)
	}
	return guard.Check(candidates).Err()
}

func lockRow(ctx context.Context, tx *sql.Tx, query, entity, id string) error {
	var locked string
	if err := tx.QueryRowContext(ctx, query, id).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.InvalidReferenceError{Entity: entity, ID: id, Reason: entity + " does not exist"}
		}
		return fmt.Errorf("lock %s: %w", entity, err)
	}
	return nil
}

func loadSlots(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]domain.BookingSlot, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []domain.BookingSlot
	for rows.Next() {
		var s domain.BookingSlot
		var venueNull sql.NullString
		if err := rows.Scan(&s.BookingID, &s.EventID, &venueNull, &s.BookingDate, &s.Window.Start, &s.Window.End); err != nil {
			return nil, err
		}
		s.VenueID = venueNull.String
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func mapTxErr(err error) error {
	if hasCode(err, codeSerializationFailure) {
		return &domain.ConflictError{Reason: "booking was changed concurrently, please retry"}
	}
	return err
}

func mapBookingWriteErr(err error, b *domain.Booking) error {
	switch {
	case err == nil:
		return nil
	case hasCode(err, codeForeignKeyViolation):
		entity := referencedEntity(err)
		id := b.EventID
		switch entity {
		case "venue":
			id = deref(b.VenueID)
		case "user":
			id = deref(b.UserID)
		case "":
			entity = "event"
		}
		return &domain.InvalidReferenceError{Entity: entity, ID: id, Reason: entity + " does not exist"}
	case hasCode(err, codeUniqueViolation), hasCode(err, codeExclusionViolation):
		return &domain.ConflictError{Reason: "booking conflicts with an existing booking"}
	case hasCode(err, codeCheckViolation):
		if pqErr, _ := pqError(err); pqErr.Constraint == bookingsOwnerCheck {
			return fmt.Errorf("%w: booking needs a venue or a user", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%w: booking violates a data constraint", domain.ErrInvalidInput)
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var venueNull, userNull, eventVenueNull sql.NullString
	var venueName, venueLocation sql.NullString
	var venueCapacity sql.NullInt64
	ev := &domain.Event{}
	err := row.Scan(
		&b.ID, &b.EventID, &venueNull, &userNull, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt,
		&ev.Name, &ev.StartTime, &ev.EndTime, &eventVenueNull,
		&venueName, &venueLocation, &venueCapacity,
	)
	if err != nil {
		return nil, err
	}
	b.VenueID = ptr(venueNull)
	b.UserID = ptr(userNull)
	ev.ID = b.EventID
	ev.VenueID = ptr(eventVenueNull)
	b.Event = ev
	if venueNull.Valid && venueName.Valid {
		b.Venue = &domain.Venue{
			ID:       venueNull.String,
			Name:     venueName.String,
			Location: venueLocation.String,
			Capacity: int(venueCapacity.Int64),
		}
	}
	return b, nil
}
