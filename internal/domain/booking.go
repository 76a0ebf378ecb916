package domain

import (
	"context"
	"time"
)

// Booking reserves an event, either for a venue (venue-scoped) or for a user.
// Both references may be set; at least one is.
// swagger:model Booking
type Booking struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	VenueID     *string   `json:"venue_id"`
	UserID      *string   `json:"user_id"`
	BookingDate time.Time `json:"booking_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Event *Event `json:"event,omitempty"`
	Venue *Venue `json:"venue,omitempty"`
}

// NewBooking returns a new Booking with the given fields. ID is typically set by the repository on create.
func NewBooking(eventID string, venueID, userID *string, bookingDate, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		EventID:     eventID,
		VenueID:     venueID,
		UserID:      userID,
		BookingDate: bookingDate,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsVenueScoped reports whether the booking carries a venue reference.
func (b *Booking) IsVenueScoped() bool {
	return b.VenueID != nil && *b.VenueID != ""
}

// OwnedBy reports whether the booking was made by userID.
func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID != nil && *b.UserID == userID
}

// Slot builds the conflict-check view of the booking for the given event.
func (b *Booking) Slot(event *Event) BookingSlot {
	slot := BookingSlot{
		BookingID:   b.ID,
		EventID:     b.EventID,
		BookingDate: b.BookingDate,
	}
	if b.IsVenueScoped() {
		slot.VenueID = *b.VenueID
	}
	if event != nil {
		slot.Window = event.Window()
	}
	return slot
}

// BookingFilter narrows booking listings. Empty fields are ignored.
type BookingFilter struct {
	EventID string
	VenueID string
	UserID  string
}

// ConflictGuard is evaluated by the repository inside the write transaction,
// after the candidate set has been locked and loaded.
type ConflictGuard struct {
	Proposed BookingSlot
	// Policy is already resolved (never PolicyAuto).
	Policy ConflictPolicy
}

// NewConflictGuard resolves policy against proposed.
func NewConflictGuard(proposed BookingSlot, policy ConflictPolicy) ConflictGuard {
	return ConflictGuard{Proposed: proposed, Policy: policy.Resolve(proposed)}
}

// Check runs CheckConflict against candidates.
func (g ConflictGuard) Check(candidates []BookingSlot) ConflictResult {
	return CheckConflict(g.Proposed, candidates, g.Policy)
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter BookingFilter, params PaginationParams) ([]*Booking, int, error)
	// CreateChecked inserts booking only if guard accepts the current candidate set.
	// The read and the write happen in one serializable transaction.
	CreateChecked(ctx context.Context, booking *Booking, guard ConflictGuard) error
	// UpdateChecked is CreateChecked for an existing booking.
	UpdateChecked(ctx context.Context, booking *Booking, guard ConflictGuard) error
	Delete(ctx context.Context, id string) error
}

// BookingInput is what a caller supplies to create or edit a booking.
type BookingInput struct {
	EventID     string
	VenueID     *string
	BookingDate time.Time
}

// BookingService is the booking workflow.
type BookingService interface {
	CreateBooking(ctx context.Context, actor Actor, in BookingInput) (*Booking, error)
	UpdateBooking(ctx context.Context, actor Actor, id string, in BookingInput) (*Booking, error)
	DeleteBooking(ctx context.Context, actor Actor, id string) error
	GetBooking(ctx context.Context, actor Actor, id string) (*Booking, error)
	ListBookings(ctx context.Context, actor Actor, filter BookingFilter, params PaginationParams) ([]*Booking, int, error)
}
