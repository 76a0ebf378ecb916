package controllers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"eventease/internal/delivery/http/helpers"
	"eventease/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenueController_CreateVenue(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantSubstr string
	}{
		{name: "success", body: `{"name":"Hall A","location":"Cape Town","capacity":100}`, wantStatus: http.StatusCreated},
		{name: "zero capacity", body: `{"name":"Hall A","location":"Cape Town","capacity":0}`, wantStatus: http.StatusBadRequest, wantSubstr: "capacity is required"},
		{name: "negative capacity", body: `{"name":"Hall A","location":"Cape Town","capacity":-5}`, wantStatus: http.StatusBadRequest, wantSubstr: "capacity must be greater than 0"},
		{name: "missing location", body: `{"name":"Hall A","capacity":10}`, wantStatus: http.StatusBadRequest, wantSubstr: "location is required"},
		{name: "bad image url", body: `{"name":"Hall A","location":"X","capacity":10,"image_url":"not a url"}`, wantStatus: http.StatusBadRequest, wantSubstr: "image_url is invalid"},
		{name: "unknown field", body: `{"name":"Hall A","location":"X","capacity":10,"id":"x"}`, wantStatus: http.StatusBadRequest, wantSubstr: "unknown field"},
		{name: "service error", body: `{"name":"Hall A","location":"X","capacity":10}`, fakeErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantSubstr: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewVenueController(testLogger, &fakeVenueService{err: tt.fakeErr})
			rr := httptest.NewRecorder()

			ctrl.CreateVenue(rr, newRequest(http.MethodPost, "/venues", tt.body, &admin))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var venue domain.Venue
				decodeEnvelope(t, rr, &venue)
				assert.Equal(t, venueUUID, venue.ID)
				assert.Equal(t, 100, venue.Capacity)
				require.NotNil(t, venue.ImageURL)
				assert.Equal(t, domain.DefaultVenueImageURL, *venue.ImageURL)
				return
			}
			envelope := decodeEnvelope(t, rr, nil)
			require.NotNil(t, envelope.Error)
			assert.Contains(t, envelope.Error.Message, tt.wantSubstr)
		})
	}
}

func TestVenueController_ListVenues(t *testing.T) {
	fake := &fakeVenueService{venues: []*domain.Venue{{ID: venueUUID, Name: "Hall A"}}, total: 41}
	ctrl := NewVenueController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.ListVenues(rr, newRequest(http.MethodGet, "/venues?page=2&page_size=20", "", &attendee))

	require.Equal(t, http.StatusOK, rr.Code)
	var list helpers.ListResponse[domain.Venue]
	decodeEnvelope(t, rr, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Hall A", list.Items[0].Name)
	assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 20, Total: 41, TotalPages: 3}, list.Pagination)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 20}, fake.lastParams)
}

func TestVenueController_ListVenues_Empty(t *testing.T) {
	ctrl := NewVenueController(testLogger, &fakeVenueService{})
	rr := httptest.NewRecorder()

	ctrl.ListVenues(rr, newRequest(http.MethodGet, "/venues", "", &attendee))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"items":[]`)
}

func TestVenueController_GetVenue(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		fake       *fakeVenueService
		wantStatus int
		wantCode   string
	}{
		{"found", venueUUID, &fakeVenueService{venue: &domain.Venue{ID: venueUUID, Name: "Hall A"}}, http.StatusOK, ""},
		{"not found", venueUUID, &fakeVenueService{err: domain.ErrNotFound}, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"malformed id", "not-a-uuid", &fakeVenueService{}, http.StatusBadRequest, helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewVenueController(testLogger, tt.fake)
			rr := httptest.NewRecorder()

			ctrl.GetVenue(rr, newRequest(http.MethodGet, "/venues/"+tt.id, "", &attendee, "venueID", tt.id))

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr, nil)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			} else {
				assert.Equal(t, venueUUID, tt.fake.lastID)
			}
		})
	}
}

func TestVenueController_UpdateVenue(t *testing.T) {
	fake := &fakeVenueService{venue: &domain.Venue{ID: venueUUID, Capacity: 250}}
	ctrl := NewVenueController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.UpdateVenue(rr, newRequest(http.MethodPatch, "/venues/"+venueUUID, `{"capacity":250}`, &admin, "venueID", venueUUID))

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fake.lastUpdate.Capacity)
	assert.Equal(t, 250, *fake.lastUpdate.Capacity)
	assert.Nil(t, fake.lastUpdate.Name)

	rr = httptest.NewRecorder()
	ctrl.UpdateVenue(rr, newRequest(http.MethodPatch, "/venues/"+venueUUID, `{"name":""}`, &admin, "venueID", venueUUID))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVenueController_DeleteVenue(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{"deleted", nil, http.StatusNoContent, ""},
		{"blocked by events", &domain.DeletionBlockedError{Entity: "venue", ID: venueUUID, Dependents: 1}, http.StatusConflict, helpers.ErrCodeDeletionBlocked},
		{"not found", domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVenueService{err: tt.fakeErr}
			ctrl := NewVenueController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.DeleteVenue(rr, newRequest(http.MethodDelete, "/venues/"+venueUUID, "", &admin, "venueID", venueUUID))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, venueUUID, fake.lastID)
			if tt.wantCode != "" {
				envelope := decodeEnvelope(t, rr, nil)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			} else {
				assert.Empty(t, rr.Body.String())
			}
		})
	}
}

func multipartImage(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="hall.png"`)
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestVenueController_UploadVenueImage(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000")
	url := "https://cdn.test/venues/hall.png"

	t.Run("success", func(t *testing.T) {
		fake := &fakeVenueService{venue: &domain.Venue{ID: venueUUID, ImageURL: &url}}
		ctrl := NewVenueController(testLogger, fake)
		body, ct := multipartImage(t, "image", "image/png", pngHeader)
		req := httptest.NewRequest(http.MethodPut, "/venues/"+venueUUID+"/image", body)
		req.Header.Set("Content-Type", ct)
		req.SetPathValue("venueID", venueUUID)
		rr := httptest.NewRecorder()

		ctrl.UploadVenueImage(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", fake.lastImage.ContentType)
		assert.Equal(t, "hall.png", fake.lastImage.Filename)
		assert.Equal(t, pngHeader, fake.imageBytes)
		var venue domain.Venue
		decodeEnvelope(t, rr, &venue)
		assert.Equal(t, url, *venue.ImageURL)
	})

	t.Run("content type is sniffed", func(t *testing.T) {
		fake := &fakeVenueService{venue: &domain.Venue{ID: venueUUID}}
		ctrl := NewVenueController(testLogger, fake)
		body, ct := multipartImage(t, "image", "", pngHeader)
		req := httptest.NewRequest(http.MethodPut, "/venues/"+venueUUID+"/image", body)
		req.Header.Set("Content-Type", ct)
		req.SetPathValue("venueID", venueUUID)
		rr := httptest.NewRecorder()

		ctrl.UploadVenueImage(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", fake.lastImage.ContentType)
		assert.Equal(t, pngHeader, fake.imageBytes)
	})

	t.Run("wrong field", func(t *testing.T) {
		ctrl := NewVenueController(testLogger, &fakeVenueService{})
		body, ct := multipartImage(t, "file", "image/png", pngHeader)
		req := httptest.NewRequest(http.MethodPut, "/venues/"+venueUUID+"/image", body)
		req.Header.Set("Content-Type", ct)
		req.SetPathValue("venueID", venueUUID)
		rr := httptest.NewRecorder()

		ctrl.UploadVenueImage(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		envelope := decodeEnvelope(t, rr, nil)
		assert.Equal(t, "image is required", envelope.Error.Message)
	})

	t.Run("not multipart", func(t *testing.T) {
		ctrl := NewVenueController(testLogger, &fakeVenueService{})
		rr := httptest.NewRecorder()

		ctrl.UploadVenueImage(rr, newRequest(http.MethodPut, "/venues/"+venueUUID+"/image", `{}`, &admin, "venueID", venueUUID))

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		fake := &fakeVenueService{err: errors.Join(domain.ErrInvalidInput, errors.New("unsupported image type"))}
		ctrl := NewVenueController(testLogger, fake)
		body, ct := multipartImage(t, "image", "application/pdf", []byte("%PDF-1.4"))
		req := httptest.NewRequest(http.MethodPut, "/venues/"+venueUUID+"/image", body)
		req.Header.Set("Content-Type", ct)
		req.SetPathValue("venueID", venueUUID)
		rr := httptest.NewRecorder()

		ctrl.UploadVenueImage(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
