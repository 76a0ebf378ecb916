package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventease/internal/domain"
)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	policy         domain.ConflictPolicy
	logger         *slog.Logger
	contextTimeout time.Duration
}

// BookingDeps groups the collaborators of the booking workflow.
type BookingDeps struct {
	Bookings domain.BookingRepository
	Events   domain.EventRepository
	Venues   domain.VenueRepository
	Users    domain.UserRepository
	// Email is optional; confirmations are skipped when nil.
	Email domain.EmailService
}

// NewBookingService returns the booking workflow. Every write runs the conflict
// check for policy inside the repository's serializable transaction.
func NewBookingService(deps BookingDeps, policy domain.ConflictPolicy, logger *slog.Logger, timeout time.Duration) domain.BookingService {
	return &bookingService{
		bookingRepo:    deps.Bookings,
		eventRepo:      deps.Events,
		venueRepo:      deps.Venues,
		userRepo:       deps.Users,
		emailService:   deps.Email,
		policy:         policy,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, in domain.BookingInput) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor.UserID == "" {
		return nil, domain.ErrForbidden
	}
	ev, venueID, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	userID := actor.UserID
	b := domain.NewBooking(ev.ID, venueID, &userID, in.BookingDate, now, now)
	guard, err := s.conflictGuard(b, ev)
	if err != nil {
		return nil, err
	}
	if err := s.bookingRepo.CreateChecked(ctx, b, guard); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	attach(b, ev)
	s.sendConfirmation(ctx, b, ev)
	return b, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id string, in domain.BookingInput) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.getAuthorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ev, venueID, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	b := domain.NewBooking(ev.ID, venueID, existing.UserID, in.BookingDate, existing.CreatedAt, time.Now())
	b.ID = existing.ID
	guard, err := s.conflictGuard(b, ev)
	if err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateChecked(ctx, b, guard); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	attach(b, ev)
	return b, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, actor domain.Actor, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getAuthorized(ctx, actor, id); err != nil {
		return err
	}
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getAuthorized(ctx, actor, id)
}

// ListBookings lists bookings matching filter. Non-admins only ever see their own.
func (s *bookingService) ListBookings(ctx context.Context, actor domain.Actor, filter domain.BookingFilter, params domain.PaginationParams) ([]*domain.Booking, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsAdmin() {
		if actor.UserID == "" {
			return nil, 0, domain.ErrForbidden
		}
		filter.UserID = actor.UserID
	}
	return s.bookingRepo.List(ctx, filter, params)
}

func (s *bookingService) getAuthorized(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.OwnedBy(actor.UserID) {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

// resolve loads the booked event and decides the booking's venue reference.
// An omitted venue defaults to the event's venue; an explicit one must match it.
func (s *bookingService) resolve(ctx context.Context, in domain.BookingInput) (*domain.Event, *string, error) {
	if in.EventID == "" {
		return nil, nil, fmt.Errorf("%w: event_id is required", domain.ErrInvalidInput)
	}
	if in.BookingDate.IsZero() {
		return nil, nil, fmt.Errorf("%w: booking_date is required", domain.ErrInvalidInput)
	}
	ev, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.InvalidReferenceError{Entity: "event", ID: in.EventID, Reason: "event does not exist"}
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}

	if in.VenueID == nil || *in.VenueID == "" {
		if ev.HasVenue() {
			id := *ev.VenueID
			return ev, &id, nil
		}
		return ev, nil, nil
	}

	venueID := *in.VenueID
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.InvalidReferenceError{Entity: "venue", ID: venueID, Reason: "venue does not exist"}
		}
		return nil, nil, fmt.Errorf("get venue: %w", err)
	}
	if !ev.HasVenue() {
		return nil, nil, &domain.InvalidReferenceError{Entity: "venue", ID: venueID, Reason: "event has no venue assigned"}
	}
	if *ev.VenueID != venueID {
		return nil, nil, &domain.InvalidReferenceError{Entity: "venue", ID: venueID, Reason: "event is scheduled at a different venue"}
	}
	if ev.Venue == nil {
		ev.Venue = venue
	}
	return ev, &venueID, nil
}

// conflictGuard resolves the configured policy for b. A venue-overlap check
// needs a venue, so an unscheduled event cannot be booked under that policy.
func (s *bookingService) conflictGuard(b *domain.Booking, ev *domain.Event) (domain.ConflictGuard, error) {
	guard := domain.NewConflictGuard(b.Slot(ev), s.policy)
	if guard.Policy == domain.PolicyVenueOverlap && guard.Proposed.VenueID == "" {
		return domain.ConflictGuard{}, &domain.InvalidReferenceError{Entity: "venue", ID: ev.ID, Reason: "event has no venue assigned"}
	}
	return guard, nil
}

func attach(b *domain.Booking, ev *domain.Event) {
	b.Event = ev
	if b.IsVenueScoped() {
		b.Venue = ev.Venue
	}
}

// sendConfirmation emails the booking's user. Failures are logged, never returned.
func (s *bookingService) sendConfirmation(ctx context.Context, b *domain.Booking, ev *domain.Event) {
	if s.emailService == nil || b.UserID == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, *b.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "booking confirmation skipped", "booking_id", b.ID, "err", err)
		return
	}
	data := &domain.BookingConfirmationEmailData{
		Email:       user.Email,
		Name:        user.Name,
		BookingID:   b.ID,
		EventName:   ev.Name,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		BookingDate: b.BookingDate,
	}
	if b.Venue != nil {
		data.VenueName = b.Venue.Name
	}
	if err := s.emailService.SendBookingConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "booking confirmation failed", "booking_id", b.ID, "err", err)
	}
}
