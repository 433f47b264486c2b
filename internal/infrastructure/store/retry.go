package store

import (
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/lib/pq"
)

// IsTransient reports whether an infrastructure error is worth a bounded
// retry. Only connection-level faults qualify; constraint violations,
// concurrency conflicts and anything business-shaped are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrDocumentExists) ||
		errors.Is(err, ErrDocumentNotFound) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Class 08 covers postgres connection exceptions.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return strings.HasPrefix(string(pqErr.Code), "08")
	}
	return false
}
