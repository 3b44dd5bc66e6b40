package utils

import "errors"

// Common application errors used across services. The string value doubles
// as the API error code in the response envelope.
var (
	ErrMissingToken       = errors.New("MISSING_TOKEN")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrWrongRole          = errors.New("WRONG_ROLE")
	ErrInvalidAdminKey    = errors.New("INVALID_ADMIN_KEY")
	ErrPhaseViolation     = errors.New("PHASE_VIOLATION")
	ErrUnknownVariant     = errors.New("UNKNOWN_VARIANT")
	ErrPriceBelowFloor    = errors.New("PRICE_BELOW_FLOOR")
	ErrDuplicateProductID = errors.New("DUPLICATE_PRODUCT_ID")
	ErrNotFound           = errors.New("NOT_FOUND")
	ErrNotOwner           = errors.New("NOT_OWNER")
)

// ErrorStatus maps an application error to an HTTP status code and the API
// error code for the envelope. Unknown errors map to a 500.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrWrongRole),
		errors.Is(err, ErrInvalidAdminKey):
		return 401, sentinelCode(err)
	case errors.Is(err, ErrPhaseViolation), errors.Is(err, ErrNotOwner):
		return 403, sentinelCode(err)
	case errors.Is(err, ErrNotFound):
		return 404, sentinelCode(err)
	case errors.Is(err, ErrUnknownVariant),
		errors.Is(err, ErrPriceBelowFloor),
		errors.Is(err, ErrDuplicateProductID):
		return 400, sentinelCode(err)
	default:
		return 500, "INTERNAL_ERROR"
	}
}

// sentinelCode walks to the sentinel at the bottom of a wrap chain so that
// wrapped errors still produce the bare code string.
func sentinelCode(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
