// Package fetcher provides the rate-limited, retrying HTTP client used
// by the source collectors.
package fetcher

import "context"

// Fetcher is the outbound fetch contract. Implementations enforce the
// provider's inter-request delay and retry transient failures; after
// retries are exhausted the error is returned to the caller untouched.
type Fetcher interface {
	// Get fetches the URL and returns the response body.
	Get(ctx context.Context, url string) ([]byte, error)

	// GetJSON fetches the URL and unmarshals the JSON response into v.
	GetJSON(ctx context.Context, url string, v any) error
}
