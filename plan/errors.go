package plan

import "errors"

var (
	ErrNotFound         = errors.New("plan not found")
	ErrMissingPriceRef  = errors.New("plan has no billing price reference")
	ErrBasicNotSeeded   = errors.New("basic plan is not configured")
	ErrPriceMintFailed  = errors.New("failed to create billing price for plan")
	ErrPriceRotateStale = errors.New("failed to deactivate previous billing price")
)
