package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"eventease/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

func strPtr(s string) *string { return &s }

// fakeVenueRepo is an in-memory VenueRepository for tests.
type fakeVenueRepo struct {
	byID     map[string]*domain.Venue
	events   *fakeEventRepo
	bookings *fakeBookingRepo
	nextID   int
	err      error // if set, Create returns this error
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{byID: make(map[string]*domain.Venue), nextID: 1}
}

func (f *fakeVenueRepo) Create(_ context.Context, v *domain.Venue) error {
	if f.err != nil {
		return f.err
	}
	v.ID = fmt.Sprintf("venue-%d", f.nextID)
	f.nextID++
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVenueRepo) GetByID(_ context.Context, id string) (*domain.Venue, error) {
	if v, ok := f.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) List(_ context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	out := make([]*domain.Venue, 0, len(f.byID))
	for _, v := range f.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, params), len(out), nil
}

func (f *fakeVenueRepo) Update(_ context.Context, v *domain.Venue) error {
	if _, ok := f.byID[v.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVenueRepo) SetImageURL(_ context.Context, id, url string) error {
	v, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.ImageURL = &url
	return nil
}

func (f *fakeVenueRepo) CountDependents(_ context.Context, id string) (int, error) {
	n := 0
	if f.events != nil {
		for _, e := range f.events.byID {
			if e.VenueID != nil && *e.VenueID == id {
				n++
			}
		}
	}
	if f.bookings != nil {
		for _, b := range f.bookings.byID {
			if b.VenueID != nil && *b.VenueID == id {
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeVenueRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID     map[string]*domain.Event
	bookings *fakeBookingRepo
	nextID   int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(_ context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if filter.VenueID != "" && (e.VenueID == nil || *e.VenueID != filter.VenueID) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return page(out, params), len(out), nil
}

func (f *fakeEventRepo) Update(_ context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) SetImageURL(_ context.Context, id, url string) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.ImageURL = &url
	return nil
}

func (f *fakeEventRepo) CountBookings(_ context.Context, id string) (int, error) {
	n := 0
	if f.bookings != nil {
		for _, b := range f.bookings.byID {
			if b.EventID == id {
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeBookingRepo runs the guard over every stored booking, the way the
// Postgres repository does over its locked candidate set.
type fakeBookingRepo struct {
	byID   map[string]*domain.Booking
	events *fakeEventRepo
	nextID int
	err    error
}

func newFakeBookingRepo(events *fakeEventRepo) *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[string]*domain.Booking), events: events, nextID: 1}
}

func (f *fakeBookingRepo) slots() []domain.BookingSlot {
	out := make([]domain.BookingSlot, 0, len(f.byID))
	for _, b := range f.byID {
		out = append(out, b.Slot(f.events.byID[b.EventID]))
	}
	return out
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	if b, ok := f.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) List(_ context.Context, filter domain.BookingFilter, params domain.PaginationParams) ([]*domain.Booking, int, error) {
	var out []*domain.Booking
	for _, b := range f.byID {
		if filter.EventID != "" && b.EventID != filter.EventID {
			continue
		}
		if filter.VenueID != "" && (b.VenueID == nil || *b.VenueID != filter.VenueID) {
			continue
		}
		if filter.UserID != "" && !b.OwnedBy(filter.UserID) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, params), len(out), nil
}

func (f *fakeBookingRepo) CreateChecked(_ context.Context, b *domain.Booking, guard domain.ConflictGuard) error {
	if f.err != nil {
		return f.err
	}
	if err := guard.Check(f.slots()).Err(); err != nil {
		return err
	}
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	f.nextID++
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) UpdateChecked(_ context.Context, b *domain.Booking, guard domain.ConflictGuard) error {
	if _, ok := f.byID[b.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := guard.Check(f.slots()).Err(); err != nil {
		return err
	}
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	roles   map[string][]string
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		roles:   make(map[string][]string),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) AssignRole(_ context.Context, userID, roleID string) error {
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

// fakeRoleRepo resolves role codes to ids "role-<code>" and reads assignments from users.
type fakeRoleRepo struct {
	users *fakeUserRepo
}

func (f *fakeRoleRepo) GetByCode(_ context.Context, code string) (*domain.Role, error) {
	if code != domain.RoleAdmin && code != domain.RoleAttendee {
		return nil, domain.ErrNotFound
	}
	return &domain.Role{ID: "role-" + code, Code: code}, nil
}

func (f *fakeRoleRepo) ListByUserID(_ context.Context, userID string) ([]*domain.Role, error) {
	var out []*domain.Role
	for _, id := range f.users.roles[userID] {
		out = append(out, &domain.Role{ID: id, Code: id[len("role-"):]})
	}
	return out, nil
}

// fakeHasher "hashes" by concatenation.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeIssuer struct {
	gotRoles []string
}

func (f *fakeIssuer) Issue(userID, _ string, roles []string, _ time.Duration) (string, error) {
	f.gotRoles = roles
	return "token-" + userID, nil
}

// fakeImageStore records uploads.
type fakeImageStore struct {
	keys    []string
	deleted []string
	err     error
}

func (f *fakeImageStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeImageStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeEmailService struct {
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(_ context.Context, data *domain.BookingConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

func page[T any](items []T, params domain.PaginationParams) []T {
	start := params.Offset()
	if start > len(items) {
		return []T{}
	}
	end := len(items)
	if l := params.Limit(); l > 0 && start+l < end {
		end = start + l
	}
	return items[start:end]
}
