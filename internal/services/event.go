package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventease/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	images         domain.ImageStore
	contextTimeout time.Duration
}

// NewEventService returns the admin event workflow.
func NewEventService(eventRepo domain.EventRepository, venueRepo domain.VenueRepository, images domain.ImageStore, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		images:         images,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Name = strings.TrimSpace(event.Name)
	if err := event.Validate(); err != nil {
		return err
	}
	venue, err := s.resolveVenue(ctx, event)
	if err != nil {
		return err
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	event.Venue = venue
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.GetByID(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.List(ctx, filter, params)
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *e
	if upd.Name != nil {
		e.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	if upd.Description != nil {
		e.Description = upd.Description
	}
	switch {
	case upd.ClearVenue:
		e.VenueID = nil
	case upd.VenueID != nil:
		e.VenueID = upd.VenueID
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if !e.SameSchedule(&before) {
		if err := s.guardReschedule(ctx, id); err != nil {
			return nil, err
		}
	}
	venue, err := s.resolveVenue(ctx, e)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	e.Venue = venue
	return e, nil
}

// guardReschedule rejects venue or window changes of an event that has bookings.
// Existing bookings carry the event's venue and were checked against its window.
func (s *eventService) guardReschedule(ctx context.Context, id string) error {
	n, err := s.eventRepo.CountBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("count event bookings: %w", err)
	}
	if n > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("event has %d booking(s); its venue and time cannot change", n)}
	}
	return nil
}

// DeleteEvent removes an event that has no bookings.
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.eventRepo.CountBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("count event bookings: %w", err)
	}
	if err := domain.GuardDelete("event", id, n); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) UploadEventImage(ctx context.Context, id string, img domain.ImageUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.images, "events", id, img, func(ctx context.Context, url string) error {
		return s.eventRepo.SetImageURL(ctx, id, url)
	})
	if err != nil {
		return nil, err
	}
	e.ImageURL = &url
	return e, nil
}

// resolveVenue loads the event's venue, if any. A missing venue is an invalid reference.
func (s *eventService) resolveVenue(ctx context.Context, e *domain.Event) (*domain.Venue, error) {
	if !e.HasVenue() {
		e.VenueID = nil
		return nil, nil
	}
	v, err := s.venueRepo.GetByID(ctx, *e.VenueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.InvalidReferenceError{Entity: "venue", ID: *e.VenueID, Reason: "venue does not exist"}
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return v, nil
}
