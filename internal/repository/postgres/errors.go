package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the repositories translate into domain errors.
const (
	codeForeignKeyViolation  pq.ErrorCode = "23503"
	codeUniqueViolation      pq.ErrorCode = "23505"
	codeCheckViolation       pq.ErrorCode = "23514"
	codeExclusionViolation   pq.ErrorCode = "23P01"
	codeSerializationFailure pq.ErrorCode = "40001"
)

// Named constraints from the migrations.
const bookingsOwnerCheck = "bookings_owner_check"

// pqError returns the driver error wrapped in err, if any.
func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func hasCode(err error, code pq.ErrorCode) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == code
}

// referencedEntity guesses the referenced table from a default FK constraint name
// such as "bookings_venue_id_fkey".
func referencedEntity(err error) string {
	pqErr, ok := pqError(err)
	if !ok {
		return ""
	}
	switch c := pqErr.Constraint; {
	case strings.Contains(c, "venue_id"):
		return "venue"
	case strings.Contains(c, "event_id"):
		return "event"
	case strings.Contains(c, "user_id"):
		return "user"
	}
	return ""
}

// nullable turns an optional string into a driver value.
func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// ptr returns a pointer to the string held by ns, or nil.
func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
