package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventease/internal/domain"
)

type venueService struct {
	venueRepo      domain.VenueRepository
	images         domain.ImageStore
	contextTimeout time.Duration
}

// NewVenueService returns the admin venue workflow.
func NewVenueService(venueRepo domain.VenueRepository, images domain.ImageStore, timeout time.Duration) domain.VenueService {
	return &venueService{
		venueRepo:      venueRepo,
		images:         images,
		contextTimeout: timeout,
	}
}

func (s *venueService) CreateVenue(ctx context.Context, v *domain.Venue) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v.Name = strings.TrimSpace(v.Name)
	v.Location = strings.TrimSpace(v.Location)
	if v.ImageURL == nil || strings.TrimSpace(*v.ImageURL) == "" {
		def := domain.DefaultVenueImageURL
		v.ImageURL = &def
	}
	if err := v.Validate(); err != nil {
		return err
	}
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.venueRepo.Create(ctx, v); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

func (s *venueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.venueRepo.GetByID(ctx, id)
}

func (s *venueService) ListVenues(ctx context.Context, params domain.PaginationParams) ([]*domain.Venue, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.venueRepo.List(ctx, params)
}

func (s *venueService) UpdateVenue(ctx context.Context, id string, upd domain.VenueUpdate) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		v.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Location != nil {
		v.Location = strings.TrimSpace(*upd.Location)
	}
	if upd.Capacity != nil {
		v.Capacity = *upd.Capacity
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now()
	if err := s.venueRepo.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return v, nil
}

// DeleteVenue removes a venue that no event or booking references.
func (s *venueService) DeleteVenue(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.venueRepo.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.venueRepo.CountDependents(ctx, id)
	if err != nil {
		return fmt.Errorf("count venue dependents: %w", err)
	}
	if err := domain.GuardDelete("venue", id, n); err != nil {
		return err
	}
	if err := s.venueRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}

func (s *venueService) UploadVenueImage(ctx context.Context, id string, img domain.ImageUpload) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.images, "venues", id, img, func(ctx context.Context, url string) error {
		return s.venueRepo.SetImageURL(ctx, id, url)
	})
	if err != nil {
		return nil, err
	}
	v.ImageURL = &url
	return v, nil
}
