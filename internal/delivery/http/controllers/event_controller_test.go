package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventease/internal/delivery/http/helpers"
	"eventease/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantCode   string
		wantSubstr string
		check      func(t *testing.T, created *domain.Event)
	}{
		{
			name:       "with venue",
			body:       `{"name":"Jazz Night","start_time":"2025-03-01T18:00:00Z","end_time":"2025-03-01T20:00:00Z","venue_id":"` + venueUUID + `"}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, created *domain.Event) {
				assert.Equal(t, "Jazz Night", created.Name)
				require.NotNil(t, created.VenueID)
				assert.Equal(t, venueUUID, *created.VenueID)
				assert.Equal(t, 2*time.Hour, created.EndTime.Sub(created.StartTime))
			},
		},
		{
			name:       "without venue",
			body:       `{"name":"TBA","start_time":"2025-03-01T18:00:00Z","end_time":"2025-03-01T19:00:00Z","description":"Soon"}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, created *domain.Event) {
				assert.Nil(t, created.VenueID)
				assert.Equal(t, "Soon", *created.Description)
			},
		},
		{
			name:       "end before start",
			body:       `{"name":"Backwards","start_time":"2025-03-01T18:00:00Z","end_time":"2025-03-01T17:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeValidation,
			wantSubstr: "end_time must be after start_time",
		},
		{
			name:       "missing times",
			body:       `{"name":"Timeless"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeValidation,
			wantSubstr: "start_time is required",
		},
		{
			name:       "malformed venue id",
			body:       `{"name":"X","start_time":"2025-03-01T18:00:00Z","end_time":"2025-03-01T19:00:00Z","venue_id":"42"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeValidation,
			wantSubstr: "venue_id must be a valid UUID",
		},
		{
			name:       "unknown venue",
			body:       `{"name":"X","start_time":"2025-03-01T18:00:00Z","end_time":"2025-03-01T19:00:00Z","venue_id":"` + venueUUID + `"}`,
			fakeErr:    &domain.InvalidReferenceError{Entity: "venue", ID: venueUUID, Reason: "venue does not exist"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   helpers.ErrCodeInvalidReference,
			wantSubstr: "venue does not exist",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{err: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, newRequest(http.MethodPost, "/events", tt.body, &admin))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.check != nil {
				var event domain.Event
				decodeEnvelope(t, rr, &event)
				assert.Equal(t, eventUUID, event.ID)
				tt.check(t, fake.created)
				return
			}
			envelope := decodeEnvelope(t, rr, nil)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Contains(t, envelope.Error.Message, tt.wantSubstr)
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	t.Run("venue filter", func(t *testing.T) {
		fake := &fakeEventService{events: []*domain.Event{{ID: eventUUID, Name: "Jazz"}}, total: 1}
		ctrl := NewEventController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, newRequest(http.MethodGet, "/events?venue_id="+venueUUID, "", &attendee))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, venueUUID, fake.lastFilter.VenueID)
		var list helpers.ListResponse[domain.Event]
		decodeEnvelope(t, rr, &list)
		require.Len(t, list.Items, 1)
		assert.Equal(t, 1, list.Pagination.Total)
	})

	t.Run("malformed venue filter", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, newRequest(http.MethodGet, "/events?venue_id=abc", "", &attendee))

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventController_UpdateEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, upd domain.EventUpdate)
	}{
		{
			name:       "clear venue",
			body:       `{"clear_venue":true}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, upd domain.EventUpdate) {
				assert.True(t, upd.ClearVenue)
				assert.Nil(t, upd.VenueID)
			},
		},
		{
			name:       "reschedule",
			body:       `{"start_time":"2025-03-02T18:00:00Z","end_time":"2025-03-02T21:00:00Z"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, upd domain.EventUpdate) {
				require.NotNil(t, upd.StartTime)
				require.NotNil(t, upd.EndTime)
				assert.Equal(t, 3*time.Hour, upd.EndTime.Sub(*upd.StartTime))
			},
		},
		{name: "venue and clear", body: `{"clear_venue":true,"venue_id":"` + venueUUID + `"}`, wantStatus: http.StatusBadRequest},
		{name: "backwards window", body: `{"start_time":"2025-03-02T18:00:00Z","end_time":"2025-03-02T18:00:00Z"}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{event: &domain.Event{ID: eventUUID}}
			ctrl := NewEventController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.UpdateEvent(rr, newRequest(http.MethodPatch, "/events/"+eventUUID, tt.body, &admin, "eventID", eventUUID))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.check != nil {
				assert.Equal(t, eventUUID, fake.lastID)
				tt.check(t, fake.lastUpdate)
			}
		})
	}
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"has bookings", &domain.DeletionBlockedError{Entity: "event", ID: eventUUID, Dependents: 2}, http.StatusConflict},
		{"store failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger, &fakeEventService{err: tt.fakeErr})
			rr := httptest.NewRecorder()

			ctrl.DeleteEvent(rr, newRequest(http.MethodDelete, "/events/"+eventUUID, "", &admin, "eventID", eventUUID))

			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestEventController_GetEvent(t *testing.T) {
	venue := &domain.Venue{ID: venueUUID, Name: "Hall A"}
	fake := &fakeEventService{event: &domain.Event{ID: eventUUID, Name: "Jazz", VenueID: &venue.ID, Venue: venue}}
	ctrl := NewEventController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.GetEvent(rr, newRequest(http.MethodGet, "/events/"+eventUUID, "", &attendee, "eventID", eventUUID))

	require.Equal(t, http.StatusOK, rr.Code)
	var event domain.Event
	decodeEnvelope(t, rr, &event)
	require.NotNil(t, event.Venue)
	assert.Equal(t, "Hall A", event.Venue.Name)
}
