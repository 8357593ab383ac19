package store

import (
	domainerrors "github.com/storefrontapp/storefront-server/internal/errors"
)

// unavailable wraps a database-level failure as a store-unavailable error so
// callers can distinguish infrastructure faults from domain outcomes.
func unavailable(op string, err error) error {
	return domainerrors.Unavailable(op).WithCause(err)
}
