package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventease/internal/delivery/http/helpers"
	"eventease/internal/delivery/http/middleware"
	"eventease/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	venueUUID   = "0b6f2a4e-4c1e-4d8a-9a57-1f1d7b9c0a01"
	eventUUID   = "7e1d3c55-2f0a-4f6b-8c3d-5a9b1e2c3d02"
	bookingUUID = "c4a8e6f2-9b3d-4e1a-b7c5-3d2f1a0e9b03"
	userUUID    = "5f9e8d7c-6b5a-4c3d-9e2f-1a0b9c8d7e04"
)

var (
	attendee = domain.Actor{UserID: userUUID, Email: "alice@example.com", Roles: []string{domain.RoleAttendee}}
	admin    = domain.Actor{UserID: "admin-1", Email: "admin@example.com", Roles: []string{domain.RoleAdmin}}
)

// newRequest builds a JSON request with optional actor and path values ("name", "value" pairs).
func newRequest(method, target, body string, actor *domain.Actor, path ...string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(middleware.SetActor(req.Context(), *actor))
	}
	for i := 0; i+1 < len(path); i += 2 {
		req.SetPathValue(path[i], path[i+1])
	}
	return req
}

// decodeEnvelope decodes the response envelope and, when out is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, out any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if out != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return envelope
}

type fakeAuthService struct {
	signUpErr   error
	loginErr    error
	lastEmail   string
	lastRole    string
	createdUser *domain.User
}

func (f *fakeAuthService) SignUp(_ context.Context, email, _, name, role string) (*domain.User, error) {
	f.lastEmail = email
	f.lastRole = role
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.createdUser = &domain.User{ID: userUUID, Email: email, Name: name, PasswordHash: "secret-hash", Salt: "secret-salt"}
	return f.createdUser, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "jwt-token", &domain.User{ID: userUUID, Email: email}, nil
}

type fakeVenueService struct {
	err        error
	venue      *domain.Venue
	venues     []*domain.Venue
	total      int
	lastID     string
	lastUpdate domain.VenueUpdate
	lastParams domain.PaginationParams
	lastImage  domain.ImageUpload
	imageBytes []byte
}

func (f *fakeVenueService) CreateVenue(_ context.Context, v *domain.Venue) error {
	if f.err != nil {
		return f.err
	}
	v.ID = venueUUID
	if v.ImageURL == nil {
		def := domain.DefaultVenueImageURL
		v.ImageURL = &def
	}
	return nil
}

func (f *fakeVenueService) GetVenue(_ context.Context, id string) (*domain.Venue, error) {
	f.lastID = id
	return f.venue, f.err
}

func (f *fakeVenueService) ListVenues(_ context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	f.lastParams = params
	return f.venues, f.total, f.err
}

func (f *fakeVenueService) UpdateVenue(_ context.Context, id string, upd domain.VenueUpdate) (*domain.Venue, error) {
	f.lastID = id
	f.lastUpdate = upd
	return f.venue, f.err
}

func (f *fakeVenueService) DeleteVenue(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeVenueService) UploadVenueImage(_ context.Context, id string, img domain.ImageUpload) (*domain.Venue, error) {
	f.lastID = id
	f.lastImage = img
	f.imageBytes, _ = io.ReadAll(img.Body)
	return f.venue, f.err
}

type fakeEventService struct {
	err        error
	event      *domain.Event
	events     []*domain.Event
	total      int
	created    *domain.Event
	lastID     string
	lastFilter domain.EventFilter
	lastUpdate domain.EventUpdate
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	f.created = e
	if f.err != nil {
		return f.err
	}
	e.ID = eventUUID
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	return f.events, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastID = id
	f.lastUpdate = upd
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeEventService) UploadEventImage(_ context.Context, id string, _ domain.ImageUpload) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

type fakeBookingService struct {
	err        error
	booking    *domain.Booking
	bookings   []*domain.Booking
	total      int
	lastActor  domain.Actor
	lastID     string
	lastInput  domain.BookingInput
	lastFilter domain.BookingFilter
}

func (f *fakeBookingService) CreateBooking(_ context.Context, actor domain.Actor, in domain.BookingInput) (*domain.Booking, error) {
	f.lastActor = actor
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	uid := actor.UserID
	return &domain.Booking{ID: bookingUUID, EventID: in.EventID, VenueID: in.VenueID, UserID: &uid, BookingDate: in.BookingDate}, nil
}

func (f *fakeBookingService) UpdateBooking(_ context.Context, actor domain.Actor, id string, in domain.BookingInput) (*domain.Booking, error) {
	f.lastActor = actor
	f.lastID = id
	f.lastInput = in
	return f.booking, f.err
}

func (f *fakeBookingService) DeleteBooking(_ context.Context, actor domain.Actor, id string) error {
	f.lastActor = actor
	f.lastID = id
	return f.err
}

func (f *fakeBookingService) GetBooking(_ context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	f.lastActor = actor
	f.lastID = id
	return f.booking, f.err
}

func (f *fakeBookingService) ListBookings(_ context.Context, actor domain.Actor, filter domain.BookingFilter, _ domain.PaginationParams) ([]*domain.Booking, int, error) {
	f.lastActor = actor
	f.lastFilter = filter
	return f.bookings, f.total, f.err
}
