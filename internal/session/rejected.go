package session

import (
	"errors"

	"github.com/joss/storefront/internal/catalog"
)

// isRejected separates a non-success API answer from transport trouble.
func isRejected(err error) bool {
	return errors.Is(err, catalog.ErrUnexpectedStatus) || errors.Is(err, catalog.ErrNoToken)
}
