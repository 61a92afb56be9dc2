package service

import (
	"errors"
	"fmt"

	"github.com/msomdec/storefront/internal/domain"
)

// storeErr passes domain errors through and wraps anything else from a
// repository or blob store as ErrStoreUnavailable. The original error stays
// in the chain for logging.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrDuplicateKey,
		domain.ErrConstraintViolation,
		domain.ErrInvalidField,
		domain.ErrInvalidTransition,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
