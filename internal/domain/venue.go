package domain

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultVenueImageURL is stored when a venue is created without an image.
const DefaultVenueImageURL = "https://via.placeholder.com/150"

// Venue is a physical place events are scheduled at.
// swagger:model Venue
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVenue returns a new Venue with the given fields. ID is typically set by the repository on create.
func NewVenue(name, location string, capacity int, imageURL *string, createdAt, updatedAt time.Time) *Venue {
	return &Venue{
		Name:      name,
		Location:  location,
		Capacity:  capacity,
		ImageURL:  imageURL,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Validate checks the venue invariants.
func (v *Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: venue name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(v.Location) == "" {
		return fmt.Errorf("%w: venue location is required", ErrInvalidInput)
	}
	if v.Capacity <= 0 {
		return fmt.Errorf("%w: venue capacity must be positive", ErrInvalidInput)
	}
	return nil
}

// VenueUpdate carries optional venue fields; nil fields are left unchanged.
type VenueUpdate struct {
	Name     *string
	Location *string
	Capacity *int
}

// VenueRepository defines the interface for venue storage.
type VenueRepository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, params PaginationParams) ([]*Venue, int, error)
	Update(ctx context.Context, venue *Venue) error
	SetImageURL(ctx context.Context, id, imageURL string) error
	// CountDependents returns the number of events and bookings that reference the venue.
	CountDependents(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// ImageUpload is an uploaded image file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// VenueService defines admin operations on venues.
type VenueService interface {
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenue(ctx context.Context, id string) (*Venue, error)
	ListVenues(ctx context.Context, params PaginationParams) ([]*Venue, int, error)
	UpdateVenue(ctx context.Context, id string, upd VenueUpdate) (*Venue, error)
	DeleteVenue(ctx context.Context, id string) error
	UploadVenueImage(ctx context.Context, id string, img ImageUpload) (*Venue, error)
}
