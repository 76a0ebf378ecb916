package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Event is a scheduled happening, optionally assigned to a venue.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description *string   `json:"description"`
	VenueID     *string   `json:"venue_id"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Venue *Venue `json:"venue,omitempty"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name string, startTime, endTime time.Time, description, venueID *string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:        name,
		StartTime:   startTime,
		EndTime:     endTime,
		Description: description,
		VenueID:     venueID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Window returns the event's [start, end) interval.
func (e *Event) Window() Interval {
	return Interval{Start: e.StartTime, End: e.EndTime}
}

// HasVenue reports whether the event has been assigned a venue.
func (e *Event) HasVenue() bool {
	return e.VenueID != nil && *e.VenueID != ""
}

// SameSchedule reports whether e and o share the venue and the [start, end) window.
func (e *Event) SameSchedule(o *Event) bool {
	return e.venueKey() == o.venueKey() && e.StartTime.Equal(o.StartTime) && e.EndTime.Equal(o.EndTime)
}

func (e *Event) venueKey() string {
	if !e.HasVenue() {
		return ""
	}
	return *e.VenueID
}

// Validate checks the event invariants.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	if len(e.Name) > 100 {
		return fmt.Errorf("%w: event name cannot exceed 100 characters", ErrInvalidInput)
	}
	if !e.Window().Valid() {
		return fmt.Errorf("%w: event end time must be after start time", ErrInvalidInput)
	}
	return nil
}

// EventUpdate carries optional event fields; nil fields are left unchanged.
// ClearVenue unassigns the venue.
type EventUpdate struct {
	Name        *string
	StartTime   *time.Time
	EndTime     *time.Time
	Description *string
	VenueID     *string
	ClearVenue  bool
}

// EventFilter narrows event listings.
type EventFilter struct {
	VenueID string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, event *Event) error
	SetImageURL(ctx context.Context, id, imageURL string) error
	// CountBookings returns the number of bookings that reference the event.
	CountBookings(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines admin operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	UploadEventImage(ctx context.Context, id string, img ImageUpload) (*Event, error)
}
