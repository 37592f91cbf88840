package service

import "errors"

// Workflow failures surfaced to clients. Handlers map these to HTTP statuses
// and short stable message strings; anything else becomes a 500.
var (
	ErrMissingOrderDetails = errors.New("missing order details")
	ErrAddressNotFound     = errors.New("address not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponIneligible    = errors.New("coupon valid for new users only")
	ErrCouponMemberOnly    = errors.New("coupon valid for members only")

	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyRated  = errors.New("product already rated")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrNotDelivered  = errors.New("order not delivered yet")

	ErrMissingStoreInfo  = errors.New("missing store info")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrStoreNotFound     = errors.New("store not found")
	ErrNotSeller         = errors.New("not authorized")

	ErrMissingProductDetails = errors.New("missing product details")

	ErrAssistantUnavailable       = errors.New("listing assistant unavailable")
	ErrMalformedAssistantResponse = errors.New("listing assistant returned malformed response")
	ErrUpstreamTimeout            = errors.New("upstream request timed out")
)
