package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	h "eventease/internal/delivery/http/helpers"
	"eventease/internal/delivery/http/middleware"
	"eventease/internal/domain"
)

// BookingRequest is the request body for POST /bookings and PUT /bookings/{bookingID}.
// When venue_id is omitted the booking takes the event's venue, if it has one.
type BookingRequest struct {
	EventID     string    `json:"event_id" validate:"required,uuid"`
	VenueID     *string   `json:"venue_id" validate:"omitempty,uuid"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
}

func (b BookingRequest) input() domain.BookingInput {
	return domain.BookingInput{EventID: b.EventID, VenueID: b.VenueID, BookingDate: b.BookingDate}
}

// BookingSuccessResponse is the success envelope for single-booking endpoints.
type BookingSuccessResponse struct {
	Data  *domain.Booking `json:"data"`
	Error *h.APIError     `json:"error"`
}

// BookingListSuccessResponse is the success envelope for GET /bookings.
type BookingListSuccessResponse struct {
	Data  h.ListResponse[*domain.Booking] `json:"data"`
	Error *h.APIError                     `json:"error"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *BookingController) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
	}
	return actor, ok
}

// CreateBooking godoc
// @Summary Book an event
// @Description Creates a booking for the authenticated user. Rejected with 409 conflict when the venue is already booked for an overlapping event, or the event is already booked at the same instant.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param booking body BookingRequest true "Booking data"
// @Success 201 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_reference"
// @Router /bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actor(w, r)
	if !ok {
		return
	}
	var req BookingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Service.CreateBooking(r.Context(), actor, req.input())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// ListBookings godoc
// @Summary List bookings
// @Description Attendees only see their own bookings; admins see all and may filter by user_id.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param event_id query string false "Event ID (UUID)"
// @Param venue_id query string false "Venue ID (UUID)"
// @Param user_id query string false "User ID (UUID), admin only"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.BookingListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /bookings [get]
func (c *BookingController) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var filter domain.BookingFilter
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"event_id", &filter.EventID},
		{"venue_id", &filter.VenueID},
		{"user_id", &filter.UserID},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, f.name+" must be a valid UUID")
			return
		}
		*f.dst = v
	}
	params := h.ParsePagination(r)
	bookings, total, err := c.Service.ListBookings(r.Context(), actor, filter, params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewListResponse(bookings, params, total))
}

// GetBooking godoc
// @Summary Get a booking with its event and venue
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.BookingSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /bookings/{bookingID} [get]
func (c *BookingController) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathUUID(w, r, "bookingID")
	if !ok {
		return
	}
	booking, err := c.Service.GetBooking(r.Context(), actor, id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, booking)
}

// UpdateBooking godoc
// @Summary Edit a booking
// @Description Re-runs the conflict check; the booking being edited never conflicts with itself.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Param booking body BookingRequest true "Booking data"
// @Success 200 {object} controllers.BookingSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_reference"
// @Router /bookings/{bookingID} [put]
func (c *BookingController) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathUUID(w, r, "bookingID")
	if !ok {
		return
	}
	var req BookingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Service.UpdateBooking(r.Context(), actor, id, req.input())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, booking)
}

// DeleteBooking godoc
// @Summary Cancel a booking
// @Tags bookings
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathUUID(w, r, "bookingID")
	if !ok {
		return
	}
	if err := c.Service.DeleteBooking(r.Context(), actor, id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
