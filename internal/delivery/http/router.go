package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventease/internal/delivery/http/controllers"
	"eventease/internal/delivery/http/middleware"
	"eventease/internal/domain"
)

// RouterDeps holds everything NewRouter wires into the mux.
type RouterDeps struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier

	Auth     *controllers.AuthController
	Venues   *controllers.VenueController
	Events   *controllers.EventController
	Bookings *controllers.BookingController
	Health   *controllers.HealthController

	// UploadsDir, when set, is served read-only under UploadsPath (local image store).
	UploadsDir  string
	UploadsPath string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(d.Verifier, d.Logger)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)
	admin := func(next http.HandlerFunc) http.HandlerFunc { return authed(requireAdmin(next)) }

	// Auth
	mux.HandleFunc("POST /auth/signup", d.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", d.Auth.Login)

	// Venues
	mux.HandleFunc("GET /venues", authed(d.Venues.ListVenues))
	mux.HandleFunc("POST /venues", admin(d.Venues.CreateVenue))
	mux.HandleFunc("GET /venues/{venueID}", authed(d.Venues.GetVenue))
	mux.HandleFunc("PATCH /venues/{venueID}", admin(d.Venues.UpdateVenue))
	mux.HandleFunc("DELETE /venues/{venueID}", admin(d.Venues.DeleteVenue))
	mux.HandleFunc("PUT /venues/{venueID}/image", admin(d.Venues.UploadVenueImage))

	// Events
	mux.HandleFunc("GET /events", authed(d.Events.ListEvents))
	mux.HandleFunc("POST /events", admin(d.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", authed(d.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", admin(d.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", admin(d.Events.DeleteEvent))
	mux.HandleFunc("PUT /events/{eventID}/image", admin(d.Events.UploadEventImage))

	// Bookings
	mux.HandleFunc("GET /bookings", authed(d.Bookings.ListBookings))
	mux.HandleFunc("POST /bookings", authed(d.Bookings.CreateBooking))
	mux.HandleFunc("GET /bookings/{bookingID}", authed(d.Bookings.GetBooking))
	mux.HandleFunc("PUT /bookings/{bookingID}", authed(d.Bookings.UpdateBooking))
	mux.HandleFunc("DELETE /bookings/{bookingID}", authed(d.Bookings.DeleteBooking))

	if d.Health != nil {
		mux.HandleFunc("GET /healthz", d.Health.Health)
	}

	if d.UploadsDir != "" {
		prefix := "/" + strings.Trim(d.UploadsPath, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(noListingFS{http.Dir(d.UploadsDir)})))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// noListingFS hides directory listings from http.FileServer.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
