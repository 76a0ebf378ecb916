package controllers

import (
	"log/slog"
	"net/http"
	"time"

	h "eventease/internal/delivery/http/helpers"
	"eventease/internal/domain"
)

// CreateVenueRequest is the request body for POST /venues.
type CreateVenueRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Location string  `json:"location" validate:"required,max=200"`
	Capacity int     `json:"capacity" validate:"required,gt=0"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// UpdateVenueRequest is the request body for PATCH /venues/{venueID}. Omitted fields are unchanged.
type UpdateVenueRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Location *string `json:"location" validate:"omitempty,min=1,max=200"`
	Capacity *int    `json:"capacity" validate:"omitempty,gt=0"`
}

// VenueSuccessResponse is the success envelope for single-venue endpoints.
type VenueSuccessResponse struct {
	Data  *domain.Venue `json:"data"`
	Error *h.APIError   `json:"error"`
}

// VenueListSuccessResponse is the success envelope for GET /venues.
type VenueListSuccessResponse struct {
	Data  h.ListResponse[*domain.Venue] `json:"data"`
	Error *h.APIError                   `json:"error"`
}

type VenueController struct {
	Logger  *slog.Logger
	Service domain.VenueService
}

func NewVenueController(logger *slog.Logger, svc domain.VenueService) *VenueController {
	return &VenueController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateVenue godoc
// @Summary Create a venue
// @Description Admin only. A placeholder image is stored when image_url is omitted.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venue body CreateVenueRequest true "Venue data"
// @Success 201 {object} controllers.VenueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues [post]
func (c *VenueController) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req CreateVenueRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	venue := domain.NewVenue(req.Name, req.Location, req.Capacity, req.ImageURL, now, now)
	if err := c.Service.CreateVenue(r.Context(), venue); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// ListVenues godoc
// @Summary List venues
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.VenueListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues [get]
func (c *VenueController) ListVenues(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	venues, total, err := c.Service.ListVenues(r.Context(), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewListResponse(venues, params, total))
}

// GetVenue godoc
// @Summary Get a venue
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Success 200 {object} controllers.VenueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{venueID} [get]
func (c *VenueController) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	venue, err := c.Service.GetVenue(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, venue)
}

// UpdateVenue godoc
// @Summary Update a venue
// @Description Admin only. Omitted fields are unchanged.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Param body body UpdateVenueRequest true "Fields to update"
// @Success 200 {object} controllers.VenueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{venueID} [patch]
func (c *VenueController) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	var req UpdateVenueRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	venue, err := c.Service.UpdateVenue(r.Context(), id, domain.VenueUpdate{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, venue)
}

// DeleteVenue godoc
// @Summary Delete a venue
// @Description Admin only. Refused with 409 deletion_blocked while events or bookings reference the venue.
// @Tags venues
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: deletion_blocked"
// @Router /venues/{venueID} [delete]
func (c *VenueController) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	if err := c.Service.DeleteVenue(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadVenueImage godoc
// @Summary Upload a venue image
// @Description Admin only. Accepts JPEG, PNG, GIF or WebP up to 5 MiB.
// @Tags venues
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Param image formData file true "Image file"
// @Success 200 {object} controllers.VenueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 413 {object} helpers.APIResponse "error.code: bad_request"
// @Router /venues/{venueID}/image [put]
func (c *VenueController) UploadVenueImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "venueID")
	if !ok {
		return
	}
	file, img, ok := readImage(w, r)
	if !ok {
		return
	}
	defer file.Close()
	venue, err := c.Service.UploadVenueImage(r.Context(), id, img)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, venue)
}
