package billing

import "errors"

var (
	// ErrSignatureVerification indicates the webhook payload could not be
	// authenticated. The request must be rejected without acknowledgment
	// so the provider retries.
	ErrSignatureVerification = errors.New("billing: webhook signature verification failed")

	// ErrUpstream wraps provider API call failures in synchronous flows.
	ErrUpstream = errors.New("billing: provider request failed")

	ErrMissingAPIKey        = errors.New("billing: provider API key is required")
	ErrMissingWebhookSecret = errors.New("billing: webhook secret is required")
)
