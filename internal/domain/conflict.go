package domain

import (
	"fmt"
	"strings"
	"time"
)

// ConflictPolicy selects how a proposed booking is compared against existing bookings.
type ConflictPolicy string

const (
	// PolicyAuto uses venue overlap for venue-scoped bookings and exact timestamps otherwise.
	PolicyAuto ConflictPolicy = "auto"
	// PolicyVenueOverlap rejects a booking whose event window overlaps another event booked at the same venue.
	PolicyVenueOverlap ConflictPolicy = "venue_overlap"
	// PolicyEventTimestamp rejects a second booking of the same event at the same instant.
	PolicyEventTimestamp ConflictPolicy = "event_timestamp"
)

// ParseConflictPolicy parses a policy name. An empty string means PolicyAuto.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAuto, nil
	case PolicyAuto, PolicyVenueOverlap, PolicyEventTimestamp:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown conflict policy %q", ErrInvalidInput, s)
	}
}

// Resolve returns the concrete policy used for the given proposed slot.
func (p ConflictPolicy) Resolve(proposed BookingSlot) ConflictPolicy {
	if p != PolicyAuto && p != "" {
		return p
	}
	if proposed.VenueID != "" {
		return PolicyVenueOverlap
	}
	return PolicyEventTimestamp
}

// Interval is the half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two half-open intervals share at least one instant.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// BookingSlot is the part of a booking the conflict check looks at.
// Window is the booked event's [start, end) range.
type BookingSlot struct {
	BookingID   string
	EventID     string
	VenueID     string
	Window      Interval
	BookingDate time.Time
}

// ConflictResult is the outcome of CheckConflict.
type ConflictResult struct {
	Conflict bool
	Reason   string
	// ConflictingBookingID is the first existing booking that clashed.
	ConflictingBookingID string
}

// NoConflict is the accepting result.
func NoConflict() ConflictResult {
	return ConflictResult{}
}

// Conflict builds a rejecting result.
func Conflict(reason, conflictingBookingID string) ConflictResult {
	return ConflictResult{Conflict: true, Reason: reason, ConflictingBookingID: conflictingBookingID}
}

// Err converts a rejecting result into a *ConflictError; it returns nil for NoConflict.
func (r ConflictResult) Err() error {
	if !r.Conflict {
		return nil
	}
	return &ConflictError{Reason: r.Reason, BookingID: r.ConflictingBookingID}
}

// CheckConflict decides whether proposed may be committed given the existing
// bookings of the same venue or event. The slot with proposed.BookingID is
// skipped so an edited booking never clashes with itself. It performs no I/O.
func CheckConflict(proposed BookingSlot, existing []BookingSlot, policy ConflictPolicy) ConflictResult {
	policy = policy.Resolve(proposed)
	for _, b := range existing {
		if proposed.BookingID != "" && b.BookingID == proposed.BookingID {
			continue
		}
		switch policy {
		case PolicyVenueOverlap:
			if proposed.VenueID == "" || b.VenueID != proposed.VenueID || b.EventID == proposed.EventID {
				continue
			}
			if Overlaps(proposed.Window, b.Window) {
				return Conflict(fmt.Sprintf(
					"venue is already booked from %s to %s",
					b.Window.Start.Format(time.RFC3339),
					b.Window.End.Format(time.RFC3339),
				), b.BookingID)
			}
		case PolicyEventTimestamp:
			if b.EventID != proposed.EventID {
				continue
			}
			if b.BookingDate.Equal(proposed.BookingDate) {
				return Conflict(fmt.Sprintf(
					"event is already booked at %s",
					b.BookingDate.Format(time.RFC3339),
				), b.BookingID)
			}
		}
	}
	return NoConflict()
}

// CanDelete reports whether a record with the given number of dependents may be deleted.
// Deletion is restricted, never cascaded.
func CanDelete(dependents int) bool {
	return dependents == 0
}

// GuardDelete returns a *DeletionBlockedError when CanDelete is false.
func GuardDelete(entity, id string, dependents int) error {
	if CanDelete(dependents) {
		return nil
	}
	return &DeletionBlockedError{Entity: entity, ID: id, Dependents: dependents}
}
